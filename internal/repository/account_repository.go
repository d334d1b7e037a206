package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sinanalungal/Image-Generator-Backend/shared/errs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/validation"
	"github.com/lib/pq"
)

const (
	emailUniqueIndex = "user_accounts_email_key"
	phoneUniqueIndex = "user_accounts_phone_number_key"

	accountColumns = `id, username, email, phone_number, password_hash,
		is_active, is_staff, is_superuser, is_listed, profile_image,
		created_at, updated_at`
)

// AccountWriteRepository stores accounts in PostgreSQL, the source of truth.
type AccountWriteRepository struct {
	db *sql.DB
}

func NewAccountWriteRepository(db *sql.DB) *AccountWriteRepository {
	return &AccountWriteRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	var profile sql.NullString
	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.PhoneNumber, &a.PasswordHash,
		&a.IsActive, &a.IsStaff, &a.IsSuperuser, &a.IsListed, &profile,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if profile.Valid {
		a.ProfileImage = profile.String
	}
	return &a, nil
}

func (r *AccountWriteRepository) Create(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO user_accounts (username, email, phone_number, password_hash,
			is_active, is_staff, is_superuser, is_listed, profile_image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		a.Username, a.Email, a.PhoneNumber, a.PasswordHash,
		a.IsActive, a.IsStaff, a.IsSuperuser, a.IsListed, nullString(a.ProfileImage),
		now, now,
	).Scan(&a.ID)
	if err != nil {
		if v := uniqueViolation(err); v != nil {
			return v
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

func (r *AccountWriteRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM user_accounts WHERE id = $1`
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

func (r *AccountWriteRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM user_accounts WHERE lower(email) = lower($1)`
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

// Update writes every mutable column in one statement, so a concurrent reader
// never observes a half-applied patch.
func (r *AccountWriteRepository) Update(ctx context.Context, a *models.Account) error {
	query := `
		UPDATE user_accounts
		SET username = $2, email = $3, phone_number = $4, password_hash = $5,
			is_active = $6, is_staff = $7, is_superuser = $8, is_listed = $9,
			profile_image = $10, updated_at = $11
		WHERE id = $1
	`
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		a.ID, a.Username, a.Email, a.PhoneNumber, a.PasswordHash,
		a.IsActive, a.IsStaff, a.IsSuperuser, a.IsListed,
		nullString(a.ProfileImage), now,
	)
	if err != nil {
		if v := uniqueViolation(err); v != nil {
			return v
		}
		return fmt.Errorf("failed to update account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return errs.ErrNotFound
	}
	a.UpdatedAt = now
	return nil
}

func (r *AccountWriteRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *AccountWriteRepository) ListNonSuperusers(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM user_accounts WHERE is_superuser = FALSE ORDER BY id`
	return r.queryAccounts(ctx, query)
}

// Search matches q as a literal, case-insensitive substring of username,
// email or phone_number.
func (r *AccountWriteRepository) Search(ctx context.Context, q string) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM user_accounts
		WHERE is_superuser = FALSE
		  AND (username ILIKE $1 OR email ILIKE $1 OR phone_number ILIKE $1)
		ORDER BY id`
	return r.queryAccounts(ctx, query, "%"+escapeLike(q)+"%")
}

func (r *AccountWriteRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM user_accounts WHERE lower(email) = lower($1) AND id <> $2)`, email, excludeID)
}

func (r *AccountWriteRepository) PhoneTaken(ctx context.Context, phone string, excludeID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM user_accounts WHERE phone_number = $1 AND id <> $2)`, phone, excludeID)
}

func (r *AccountWriteRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to check uniqueness: %w", err)
	}
	return found, nil
}

func (r *AccountWriteRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]*models.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*models.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// uniqueViolation maps a 23505 error on one of the unique indexes to a
// field-level validation error.
func uniqueViolation(err error) *errs.ValidationError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	switch pqErr.Constraint {
	case emailUniqueIndex:
		return errs.FieldError(validation.FieldEmail, validation.MsgEmailTaken)
	case phoneUniqueIndex:
		return errs.FieldError(validation.FieldPhoneNumber, validation.MsgPhoneTaken)
	default:
		return errs.FieldError("non_field_errors", "account already exists.")
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
