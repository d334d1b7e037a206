// Package tokens issues and verifies the HS256 access/refresh tokens handed out
// at login.
package tokens

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Sinanalungal/Image-Generator-Backend/shared/errs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the JWT payload.
type Claims struct {
	Username    string `json:"username"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
	ProfileURL  string `json:"profile_url"`
	TokenType   string `json:"token_type"`
	jwt.RegisteredClaims
}

// Role returns the privilege level carried by the token.
func (c *Claims) Role() models.Role {
	if c.IsSuperuser {
		return models.RoleAdministrator
	}
	return models.RoleStandard
}

// AccountID returns the numeric subject.
func (c *Claims) AccountID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue signs a fresh access/refresh pair. profileURL is the public URL of the
// account's profile image, empty when none is set.
func (i *Issuer) Issue(a *models.Account, profileURL string) (*models.TokenPair, error) {
	access, err := i.sign(a, profileURL, TypeAccess, i.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := i.sign(a, profileURL, TypeRefresh, i.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (i *Issuer) sign(a *models.Account, profileURL, tokenType string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		Username:    a.Username,
		PhoneNumber: a.PhoneNumber,
		Email:       a.Email,
		IsSuperuser: a.IsSuperuser,
		ProfileURL:  profileURL,
		TokenType:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(a.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, expiry and token type.
func (i *Issuer) Parse(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return nil, errs.ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, errs.ErrInvalidToken
	}
	return claims, nil
}
