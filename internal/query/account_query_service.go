package query

import (
	"context"
	"strings"

	"github.com/Sinanalungal/Image-Generator-Backend/internal/repository"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/cqrs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
)

// AccountViews is the projection side used by the admin surfaces.
type AccountViews interface {
	Listing(ctx context.Context) ([]models.AccountView, error)
	Search(ctx context.Context, query string) ([]models.AccountView, error)
	View(a *models.Account) models.AccountView
}

type AccountQueryService struct {
	repo  repository.AccountRepository
	views AccountViews
}

func NewAccountQueryService(repo repository.AccountRepository, views AccountViews) *AccountQueryService {
	return &AccountQueryService{repo: repo, views: views}
}

func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.Account, error) {
	return s.repo.GetByID(ctx, q.AccountID)
}

// GetAccountByEmail matches email case-insensitively.
func (s *AccountQueryService) GetAccountByEmail(ctx context.Context, q cqrs.GetAccountByEmailQuery) (*models.Account, error) {
	return s.repo.GetByEmail(ctx, q.Email)
}

// AuthenticateLookup finds the account a login attempt refers to. Password
// verification is left to the caller.
func (s *AccountQueryService) AuthenticateLookup(ctx context.Context, email string) (*models.Account, error) {
	return s.repo.GetByEmail(ctx, email)
}

// View renders the admin-shape record of a single account.
func (s *AccountQueryService) View(a *models.Account) models.AccountView {
	return s.views.View(a)
}

func (s *AccountQueryService) ListAccounts(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error) {
	if err := models.RequireAdministrator(q.RequestingRole); err != nil {
		return nil, err
	}
	return s.views.Listing(ctx)
}

// SearchAccounts falls back to the full listing when the query is blank.
func (s *AccountQueryService) SearchAccounts(ctx context.Context, q cqrs.SearchAccountsQuery) ([]models.AccountView, error) {
	if err := models.RequireAdministrator(q.RequestingRole); err != nil {
		return nil, err
	}
	term := strings.TrimSpace(q.Query)
	if term == "" {
		return s.views.Listing(ctx)
	}
	return s.views.Search(ctx, term)
}
