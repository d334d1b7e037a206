package handler

import (
	"context"
	"net/http"

	"github.com/Sinanalungal/Image-Generator-Backend/shared/cqrs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/middleware"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
	"github.com/gin-gonic/gin"
)

// Authenticator issues token pairs.
type Authenticator interface {
	Login(context.Context, cqrs.LoginCommand) (*models.TokenPair, error)
	Refresh(context.Context, cqrs.RefreshTokenCommand) (*models.TokenPair, error)
}

type AuthHandler struct {
	auth Authenticator
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Token(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), cqrs.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondWithServiceError(c, err, http.StatusUnauthorized)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), cqrs.RefreshTokenCommand{Token: req.Refresh})
	if err != nil {
		respondWithServiceError(c, err, http.StatusUnauthorized)
		return
	}
	c.JSON(http.StatusOK, pair)
}
