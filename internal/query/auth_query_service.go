package query

import (
	"context"
	"errors"

	"github.com/Sinanalungal/Image-Generator-Backend/internal/repository"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/cqrs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/errs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/tokens"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/utils"
)

// TokenIssuer is satisfied by *tokens.Issuer.
type TokenIssuer interface {
	Issue(a *models.Account, profileURL string) (*models.TokenPair, error)
	Parse(token, wantType string) (*tokens.Claims, error)
}

// AuthQueryService exchanges credentials, or a refresh token, for a token pair.
type AuthQueryService struct {
	repo   repository.AccountRepository
	issuer TokenIssuer
	urlFor func(key string) string
}

func NewAuthQueryService(repo repository.AccountRepository, issuer TokenIssuer, urlFor func(string) string) *AuthQueryService {
	return &AuthQueryService{repo: repo, issuer: issuer, urlFor: urlFor}
}

// Login fails with ErrInvalidCredentials for an unknown email, a wrong
// password and an inactive account alike.
func (s *AuthQueryService) Login(ctx context.Context, cmd cqrs.LoginCommand) (*models.TokenPair, error) {
	account, err := s.repo.GetByEmail(ctx, cmd.Email)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(cmd.Password, account.PasswordHash) || !account.IsActive {
		return nil, errs.ErrInvalidCredentials
	}
	return s.issuer.Issue(account, s.profileURL(account))
}

// Refresh issues a new pair carrying the account's current claims.
func (s *AuthQueryService) Refresh(ctx context.Context, cmd cqrs.RefreshTokenCommand) (*models.TokenPair, error) {
	claims, err := s.issuer.Parse(cmd.Token, tokens.TypeRefresh)
	if err != nil {
		return nil, errs.ErrInvalidToken
	}
	id, err := claims.AccountID()
	if err != nil {
		return nil, errs.ErrInvalidToken
	}
	account, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, errs.ErrInvalidToken
	}
	return s.issuer.Issue(account, s.profileURL(account))
}

func (s *AuthQueryService) profileURL(a *models.Account) string {
	if a.ProfileImage == "" || s.urlFor == nil {
		return a.ProfileImage
	}
	return s.urlFor(a.ProfileImage)
}
