package imagegen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/SleepTheGod/Cryptozoo/internal/config"
	"github.com/SleepTheGod/Cryptozoo/internal/domain/models"
)

const placeholderURL = "https://picsum.photos/400/400?random=%d"

// Client produces a visual reference for a creature. It never fails: any
// error yields a placeholder reference.
type Client interface {
	GenerateAnimalImage(ctx context.Context, visualPrompt string, rarity models.Rarity) string
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	enabled    bool
	logger     *zap.Logger
	seed       func() int
}

// NewClient builds an image client. Without a base URL every call returns a
// placeholder.
func NewClient(cfg config.ImageConfig, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(60 * time.Second)
	if cfg.APIKey != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey))
	}

	return &APIClient{
		httpClient: restyClient,
		enabled:    cfg.BaseURL != "",
		logger:     logger,
		seed:       func() int { return rand.IntN(1_000_000) },
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// generateResponse accepts either a hosted URL or inline image data.
type generateResponse struct {
	URL      string `json:"url"`
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// GenerateAnimalImage renders the creature, falling back to a placeholder.
func (c *APIClient) GenerateAnimalImage(ctx context.Context, visualPrompt string, rarity models.Rarity) string {
	if !c.enabled {
		return c.placeholder()
	}

	ref, err := c.generate(ctx, StylePrompt(visualPrompt, rarity))
	if err != nil {
		c.logger.Warn("image generation failed, using placeholder", zap.Error(err))
		return c.placeholder()
	}
	return ref
}

func (c *APIClient) generate(ctx context.Context, prompt string) (string, error) {
	result := new(generateResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(generateRequest{Prompt: prompt}).
		SetResult(result).
		SetError(apiErr).
		Post("/images")
	if err != nil {
		return "", fmt.Errorf("image api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("image api error: code=%d, message=%s", resp.StatusCode(), apiErr.Error.Message)
	}

	switch {
	case result.Data != "":
		mimeType := result.MimeType
		if mimeType == "" {
			mimeType = "image/png"
		}
		return fmt.Sprintf("data:%s;base64,%s", mimeType, result.Data), nil
	case result.URL != "":
		return result.URL, nil
	default:
		return "", fmt.Errorf("image api returned no image")
	}
}

func (c *APIClient) placeholder() string {
	return fmt.Sprintf(placeholderURL, c.seed())
}

// StylePrompt adds the rarity styling to a creature's visual prompt.
func StylePrompt(visualPrompt string, rarity models.Rarity) string {
	return fmt.Sprintf("A high-quality %s tier crypto collectible NFT sticker of: %s. Glossy finish, vibrant colors, white background, vector art style, highly detailed.", rarity, visualPrompt)
}
