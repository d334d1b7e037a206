package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Sinanalungal/Image-Generator-Backend/shared/errs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/validation"
)

// MemoryAccountRepository keeps accounts in process memory. Every write holds
// the lock across its uniqueness check, so two concurrent registrations can
// never both claim the same email or phone number.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	nextID   int64
	accounts map[int64]*models.Account
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: map[int64]*models.Account{}}
}

func (r *MemoryAccountRepository) Create(_ context.Context, a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v := r.conflicts(a, 0); v.HasErrors() {
		return v
	}
	r.nextID++
	now := time.Now().UTC()
	a.ID = r.nextID
	a.CreatedAt = now
	a.UpdatedAt = now
	r.accounts[a.ID] = a.Clone()
	return nil
}

func (r *MemoryAccountRepository) GetByID(_ context.Context, id int64) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return a.Clone(), nil
}

func (r *MemoryAccountRepository) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a := r.findByEmail(email); a != nil {
		return a.Clone(), nil
	}
	return nil, errs.ErrNotFound
}

func (r *MemoryAccountRepository) Update(_ context.Context, a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accounts[a.ID]
	if !ok {
		return errs.ErrNotFound
	}
	if v := r.conflicts(a, a.ID); v.HasErrors() {
		return v
	}
	a.CreatedAt = stored.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	r.accounts[a.ID] = a.Clone()
	return nil
}

func (r *MemoryAccountRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *MemoryAccountRepository) ListNonSuperusers(_ context.Context) ([]*models.Account, error) {
	return r.filter(func(*models.Account) bool { return true }), nil
}

func (r *MemoryAccountRepository) Search(_ context.Context, query string) ([]*models.Account, error) {
	q := strings.ToLower(query)
	return r.filter(func(a *models.Account) bool {
		return strings.Contains(strings.ToLower(a.Username), q) ||
			strings.Contains(strings.ToLower(a.Email), q) ||
			strings.Contains(strings.ToLower(a.PhoneNumber), q)
	}), nil
}

func (r *MemoryAccountRepository) EmailTaken(_ context.Context, email string, excludeID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a := r.findByEmail(email)
	return a != nil && a.ID != excludeID, nil
}

func (r *MemoryAccountRepository) PhoneTaken(_ context.Context, phone string, excludeID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if a.PhoneNumber == phone && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// filter returns non-superusers matching keep, ordered by id.
func (r *MemoryAccountRepository) filter(keep func(*models.Account) bool) []*models.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		if a.IsSuperuser || !keep(a) {
			continue
		}
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryAccountRepository) findByEmail(email string) *models.Account {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range r.accounts {
		if strings.ToLower(a.Email) == email {
			return a
		}
	}
	return nil
}

// conflicts must be called with the write lock held.
func (r *MemoryAccountRepository) conflicts(a *models.Account, excludeID int64) *errs.ValidationError {
	v := errs.NewValidationError()
	if other := r.findByEmail(a.Email); other != nil && other.ID != excludeID {
		v.Add(validation.FieldEmail, validation.MsgEmailTaken)
	}
	for _, other := range r.accounts {
		if other.PhoneNumber == a.PhoneNumber && other.ID != excludeID {
			v.Add(validation.FieldPhoneNumber, validation.MsgPhoneTaken)
			break
		}
	}
	return v
}
