package models

import (
	"time"

	"github.com/Sinanalungal/Image-Generator-Backend/shared/errs"
)

// Role is the closed set of privilege levels an account can hold.
type Role string

const (
	RoleStandard      Role = "standard"
	RoleAdministrator Role = "administrator"
)

// RequireAdministrator is the first check of every admin-only operation.
func RequireAdministrator(role Role) error {
	if role != RoleAdministrator {
		return errs.ErrForbidden
	}
	return nil
}

// Account is the write model of a registered user.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	IsListed     bool      `json:"is_listed"`
	ProfileImage string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Role derives the account's privilege level from its superuser flag.
func (a *Account) Role() Role {
	if a.IsSuperuser {
		return RoleAdministrator
	}
	return RoleStandard
}

// Clone returns a detached copy so callers can stage changes without touching
// the stored record.
func (a *Account) Clone() *Account {
	c := *a
	return &c
}

// AccountPatch is a sparse update. Nil fields, and string fields that are
// blank after trimming, leave the stored value unchanged.
type AccountPatch struct {
	Username    *string
	Email       *string
	PhoneNumber *string
	Password    *string
	IsListed    *bool
}

// GeneratedImage is the result of a text-to-image request.
type GeneratedImage struct {
	URL string `json:"image"`
}
