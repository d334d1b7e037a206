package cqrs

import (
	"io"

	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
)

type CreateAccountCommand struct {
	Username    string
	Email       string
	PhoneNumber string
	Password    string
}

// PromoteAccountCommand is only issued by the createsuperuser bootstrap.
type PromoteAccountCommand struct {
	AccountID int64
}

// SelfUpdateCommand patches the caller's own account.
type SelfUpdateCommand struct {
	AccountID int64
	Patch     models.AccountPatch
}

type AdminEditCommand struct {
	RequestingRole models.Role
	AccountID      int64
	Patch          models.AccountPatch
}

type DeleteAccountCommand struct {
	RequestingRole models.Role
	AccountID      int64
}

// ImageAsset is an uploaded file as received from the request layer.
type ImageAsset struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UpdateProfileImageCommand targets AccountID when set, otherwise the account
// registered under Email.
type UpdateProfileImageCommand struct {
	AccountID int64
	Email     string
	Image     *ImageAsset
}

type LoginCommand struct {
	Email    string
	Password string
}

type RefreshTokenCommand struct {
	Token string
}
