package handler

import (
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/Sinanalungal/Image-Generator-Backend/internal/imagegen"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/errs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/middleware"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
	"github.com/gin-gonic/gin"
)

type ImageHandler struct {
	generator imagegen.Generator
}

type GenerateImageRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

func NewImageHandler(generator imagegen.Generator) *ImageHandler {
	return &ImageHandler{generator: generator}
}

func (h *ImageHandler) GenerateImage(c *gin.Context) {
	var req GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if utf8.RuneCountInString(req.Prompt) > imagegen.MaxPromptLength {
		middleware.RespondWithFieldErrors(c, errs.FieldError("prompt",
			fmt.Sprintf("Ensure this field has no more than %d characters.", imagegen.MaxPromptLength)))
		return
	}

	url, err := h.generator.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		respondWithServiceError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, models.GeneratedImage{URL: url})
}
