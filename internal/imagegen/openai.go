// Package imagegen forwards text prompts to a hosted text-to-image model.
package imagegen

import (
	"context"
	"errors"

	"github.com/Sinanalungal/Image-Generator-Backend/internal/config"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/errs"
	openai "github.com/sashabaranov/go-openai"
)

// MaxPromptLength is the longest prompt, in characters, accepted for generation.
const MaxPromptLength = 300

var errNoImage = errors.New("provider returned no image")

// Generator turns a prompt into the URL of one generated image.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	size    string
	quality string
}

func NewOpenAIGenerator(cfg config.OpenAI) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		size:    cfg.Size,
		quality: cfg.Quality,
	}
}

// Generate makes a single request; failures are not retried.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          g.model,
		N:              1,
		Size:           g.size,
		Quality:        g.quality,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", errs.Upstream("openai", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errs.Upstream("openai", errNoImage)
	}
	return resp.Data[0].URL, nil
}
