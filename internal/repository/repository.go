package repository

import (
	"context"

	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
)

// AccountRepository is the persistence collaborator of the account store.
//
// Implementations enforce email (case-insensitive) and phone_number uniqueness
// atomically with the write and report a violation as *errs.ValidationError.
// Missing rows are reported as errs.ErrNotFound. Listings exclude superusers
// and are ordered by ascending id.
type AccountRepository interface {
	Create(ctx context.Context, a *models.Account) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Update(ctx context.Context, a *models.Account) error
	Delete(ctx context.Context, id int64) error
	ListNonSuperusers(ctx context.Context) ([]*models.Account, error)
	Search(ctx context.Context, query string) ([]*models.Account, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	PhoneTaken(ctx context.Context, phone string, excludeID int64) (bool, error)
}

var (
	_ AccountRepository = (*AccountWriteRepository)(nil)
	_ AccountRepository = (*MemoryAccountRepository)(nil)
)
