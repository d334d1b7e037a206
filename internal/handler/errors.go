package handler

import (
	"errors"
	"net/http"

	"github.com/Sinanalungal/Image-Generator-Backend/shared/errs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/middleware"
	"github.com/gin-gonic/gin"
)

// respondWithServiceError maps a store error to a response. notFoundStatus
// lets each route pick how a missing account is reported.
func respondWithServiceError(c *gin.Context, err error, notFoundStatus int) {
	var v *errs.ValidationError
	var upstream *errs.UpstreamError
	switch {
	case errors.As(err, &v):
		middleware.RespondWithFieldErrors(c, v)
	case errors.Is(err, errs.ErrNotFound):
		middleware.RespondWithError(c, notFoundStatus, "User not found")
	case errors.Is(err, errs.ErrForbidden):
		middleware.RespondWithError(c, http.StatusForbidden, "You do not have permission to perform this action")
	case errors.Is(err, errs.ErrInvalidCredentials):
		middleware.RespondWithError(c, http.StatusUnauthorized, "No active account found with the given credentials")
	case errors.Is(err, errs.ErrInvalidToken):
		middleware.RespondWithError(c, http.StatusUnauthorized, "Token is invalid or expired")
	case errors.As(err, &upstream):
		_ = c.Error(err)
		middleware.RespondWithError(c, http.StatusBadGateway, upstreamMessage(upstream.Service))
	default:
		_ = c.Error(err)
		middleware.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// upstreamMessage hides provider error text from clients; the cause is kept
// on the context for the request log.
func upstreamMessage(service string) string {
	if service == "s3" {
		return "Image storage unavailable"
	}
	return "Image provider unavailable"
}
