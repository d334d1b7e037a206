package handler

import (
	"net/http"
	"strconv"

	"github.com/Sinanalungal/Image-Generator-Backend/shared/cqrs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/middleware"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves the administrator-only account surfaces. Routes are
// mounted behind RequireRole; the services check the role again.
type AdminHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

type SearchRequest struct {
	Query string `json:"query"`
}

func NewAdminHandler(commands AccountCommander, queries AccountQuerier) *AdminHandler {
	return &AdminHandler{commands: commands, queries: queries}
}

func (h *AdminHandler) UsersData(c *gin.Context) {
	views, err := h.queries.ListAccounts(c.Request.Context(), cqrs.ListAccountsQuery{
		RequestingRole: middleware.GetRole(c),
	})
	if err != nil {
		respondWithServiceError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *AdminHandler) EditUser(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	var req PatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	views, err := h.commands.AdminEdit(c.Request.Context(), cqrs.AdminEditCommand{
		RequestingRole: middleware.GetRole(c),
		AccountID:      id,
		Patch:          req.toPatch(),
	})
	if err != nil {
		respondWithServiceError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	views, err := h.commands.DeleteAccount(c.Request.Context(), cqrs.DeleteAccountCommand{
		RequestingRole: middleware.GetRole(c),
		AccountID:      id,
	})
	if err != nil {
		respondWithServiceError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, views)
}

// Search accepts an empty body as the empty query.
func (h *AdminHandler) Search(c *gin.Context) {
	var req SearchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	views, err := h.queries.SearchAccounts(c.Request.Context(), cqrs.SearchAccountsQuery{
		RequestingRole: middleware.GetRole(c),
		Query:          req.Query,
	})
	if err != nil {
		respondWithServiceError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, views)
}

func accountID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid user id")
		return 0, false
	}
	return id, true
}
