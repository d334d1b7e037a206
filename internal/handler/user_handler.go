package handler

import (
	"context"
	"net/http"

	"github.com/Sinanalungal/Image-Generator-Backend/shared/cqrs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/middleware"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/utils"
	"github.com/gin-gonic/gin"
)

// AccountCommander defines the write-side operations used by the handlers.
type AccountCommander interface {
	CreateAccount(context.Context, cqrs.CreateAccountCommand) (*models.Account, error)
	UpdateProfileImage(context.Context, cqrs.UpdateProfileImageCommand) (*models.Account, error)
	SelfUpdate(context.Context, cqrs.SelfUpdateCommand) (*models.Account, error)
	AdminEdit(context.Context, cqrs.AdminEditCommand) ([]models.AccountView, error)
	DeleteAccount(context.Context, cqrs.DeleteAccountCommand) ([]models.AccountView, error)
}

// AccountQuerier defines the read-side operations used by the handlers.
type AccountQuerier interface {
	GetAccount(context.Context, cqrs.GetAccountQuery) (*models.Account, error)
	GetAccountByEmail(context.Context, cqrs.GetAccountByEmailQuery) (*models.Account, error)
	View(*models.Account) models.AccountView
	ListAccounts(context.Context, cqrs.ListAccountsQuery) ([]models.AccountView, error)
	SearchAccounts(context.Context, cqrs.SearchAccountsQuery) ([]models.AccountView, error)
}

// UserHandler serves registration and the caller's own account.
type UserHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type FetchDataRequest struct {
	Email string `json:"email"`
}

// PatchRequest is a sparse update; omitted or blank fields are left alone.
type PatchRequest struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	Password    *string `json:"password"`
	IsListed    *bool   `json:"is_listed"`
}

func (r PatchRequest) toPatch() models.AccountPatch {
	return models.AccountPatch{
		Username:    r.Username,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Password:    r.Password,
		IsListed:    r.IsListed,
	}
}

func NewUserHandler(commands AccountCommander, queries AccountQuerier) *UserHandler {
	return &UserHandler{commands: commands, queries: queries}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		respondWithServiceError(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusCreated, models.ToPublic(account))
}

func (h *UserHandler) Me(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		return
	}

	account, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{AccountID: id})
	if err != nil {
		respondWithServiceError(c, err, http.StatusUnauthorized)
		return
	}

	c.JSON(http.StatusOK, models.ToPublic(account))
}

// FetchData returns the admin-shape record for email. Standard users may
// only fetch their own.
func (h *UserHandler) FetchData(c *gin.Context) {
	var req FetchDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	target, ok := resolveTarget(c, req.Email)
	if !ok {
		return
	}

	var account *models.Account
	var err error
	if target.accountID != 0 {
		account, err = h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{AccountID: target.accountID})
	} else {
		account, err = h.queries.GetAccountByEmail(c.Request.Context(), cqrs.GetAccountByEmailQuery{Email: target.email})
	}
	if err != nil {
		respondWithServiceError(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, h.queries.View(account))
}

// EditDetails patches the caller's own account.
func (h *UserHandler) EditDetails(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		return
	}
	var req PatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.commands.SelfUpdate(c.Request.Context(), cqrs.SelfUpdateCommand{
		AccountID: id,
		Patch:     req.toPatch(),
	})
	if err != nil {
		respondWithServiceError(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, models.ToPublic(account))
}

// UpdateProfile takes a multipart form with "email" and the "profile" file.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	target, ok := resolveTarget(c, c.PostForm("email"))
	if !ok {
		return
	}

	var image *cqrs.ImageAsset
	if fh, err := c.FormFile("profile"); err == nil {
		f, err := fh.Open()
		if err != nil {
			middleware.RespondWithError(c, http.StatusBadRequest, "Could not read uploaded file")
			return
		}
		defer f.Close()
		image = &cqrs.ImageAsset{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		}
	}

	account, err := h.commands.UpdateProfileImage(c.Request.Context(), cqrs.UpdateProfileImageCommand{
		AccountID: target.accountID,
		Email:     target.email,
		Image:     image,
	})
	if err != nil {
		respondWithServiceError(c, err, http.StatusNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": h.queries.View(account).Profile})
}

// callerID returns the account id carried by the bearer token.
func callerID(c *gin.Context) (int64, bool) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Authentication credentials were not provided")
		return 0, false
	}
	id, err := claims.AccountID()
	if err != nil || id <= 0 {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Token is invalid or expired")
		return 0, false
	}
	return id, true
}

// accountTarget names an account either by id or, for administrators, by email.
type accountTarget struct {
	accountID int64
	email     string
}

// resolveTarget resolves the account a self-service request addresses. A
// blank email, or a standard user's own email, means the caller's account.
// Naming any other account is reserved for administrators.
func resolveTarget(c *gin.Context, requested string) (accountTarget, bool) {
	id, ok := callerID(c)
	if !ok {
		return accountTarget{}, false
	}
	if utils.IsBlank(requested) {
		return accountTarget{accountID: id}, true
	}

	claims, _ := middleware.GetClaims(c)
	email := utils.NormalizeEmail(requested)
	if claims.Role() == models.RoleAdministrator {
		return accountTarget{email: email}, true
	}
	if email != utils.NormalizeEmail(claims.Email) {
		middleware.RespondWithError(c, http.StatusForbidden, "You do not have permission to perform this action")
		return accountTarget{}, false
	}
	return accountTarget{accountID: id}, true
}
