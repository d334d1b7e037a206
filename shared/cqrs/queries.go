package cqrs

import "github.com/Sinanalungal/Image-Generator-Backend/shared/models"

// GetAccountQuery fetches a single account by ID.
type GetAccountQuery struct {
	AccountID int64
}

// GetAccountByEmailQuery fetches a single account by (normalized) email.
type GetAccountByEmailQuery struct {
	Email string
}

// ListAccountsQuery returns the administrative listing.
type ListAccountsQuery struct {
	RequestingRole models.Role
}

// SearchAccountsQuery filters the administrative listing.
type SearchAccountsQuery struct {
	RequestingRole models.Role
	Query          string
}
