package anthropic

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

const (
	apiVersion = "2023-06-01"
	maxTokens  = 1024
)

var baseAnimals = []string{"Lion", "Panda", "Penguin", "Gorilla", "Shark", "Eagle", "Turtle", "Elephant", "Tiger", "Frog", "Axolotl", "Capybara", "Dragon"}

// Client generates creature metadata.
type Client interface {
	GenerateAnimalMetadata(ctx context.Context, req models.MetadataRequest) (models.AnimalMetadata, error)
}

type anthropicClient struct {
	httpClient *resty.Client
	apiURL     string
	model      string
	logger     *zap.Logger
	pick       func(n int) int
}

// NewClient creates a configured Anthropic client.
func NewClient(cfg config.AIConfig, logger *zap.Logger) Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetHeader("x-api-key", cfg.AnthropicKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(30 * time.Second)

	return &anthropicClient{
		httpClient: client,
		apiURL:     cfg.AnthropicURL,
		model:      cfg.Model,
		logger:     logger,
		pick:       rand.IntN,
	}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []Message `json:"messages"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

const systemPrompt = `You design creatures for a collectible crypto zoo game.
Reply with ONLY a JSON object with exactly these fields:
{
  "name": string,
  "description": string,
  "rarity": one of "Common", "Rare", "Epic", "Legendary", "Mythical",
  "dailyYield": number ($ZOO per day, not negative),
  "marketValue": number (USD, not negative),
  "visualPrompt": string,
  "traits": [{"name": string, "value": number between 0 and 100}] with exactly 4 entries
}
Do not wrap the JSON in markdown. Escape newlines inside strings.`

// GenerateAnimalMetadata asks the model for a new creature and validates the reply.
func (c *anthropicClient) GenerateAnimalMetadata(ctx context.Context, req models.MetadataRequest) (models.AnimalMetadata, error) {
	prompt, err := c.buildPrompt(req)
	if err != nil {
		return models.AnimalMetadata{}, fmt.Errorf("%w: %w", models.ErrGenerationFailure, err)
	}

	// Prefill the assistant response to force JSON
	messages := []Message{
		{Role: "user", Content: prompt},
		{Role: "assistant", Content: "{"},
	}

	reqBody := messageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  messages,
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(c.apiURL)

	if err != nil {
		return models.AnimalMetadata{}, fmt.Errorf("%w: anthropic api call: %w", models.ErrGenerationFailure, err)
	}
	if resp.IsError() {
		return models.AnimalMetadata{}, fmt.Errorf("%w: anthropic api error: %s", models.ErrGenerationFailure, resp.String())
	}
	if len(respBody.Content) == 0 || strings.TrimSpace(respBody.Content[0].Text) == "" {
		return models.AnimalMetadata{}, fmt.Errorf("%w: empty response from ai", models.ErrGenerationFailure)
	}

	// Reconstruct the full JSON since we prefilled the opening brace
	responseText := cleanJSON("{" + respBody.Content[0].Text)
	c.logger.Debug("metadata response received", zap.Int("bytes", len(responseText)), zap.Bool("hybrid", req.IsHybrid()))

	meta, err := models.ParseAnimalMetadata([]byte(responseText))
	if err != nil {
		return models.AnimalMetadata{}, fmt.Errorf("parse ai response: %w", err)
	}
	return meta, nil
}

func (c *anthropicClient) buildPrompt(req models.MetadataRequest) (string, error) {
	if req.IsHybrid() {
		return fmt.Sprintf(`Create a unique HYBRID crypto-animal NFT by combining a %s and a %s.
Invent a cool, edgy name. Write a hype-filled 1-sentence description.
Assign it a rarity (Epic, Legendary, or Mythical) and a daily yield value ($ZOO/day) between 2000 and 10000.
Estimate a 'market value' in USD (high variance).
Generate 4 RPG-style traits (e.g., Aggression, Cuteness, Hype, Aura) with values 0-100.
Provide a visual prompt to generate an image of this creature.`, req.Parent1Name, req.Parent2Name), nil
	}

	eggType, err := models.LookupEggType(req.Tier)
	if err != nil {
		return "", err
	}

	base := baseAnimals[c.pick(len(baseAnimals))]
	return fmt.Sprintf(`Create a unique variation of a %s for a crypto game. Context: %s
Invent a cool name. Write a 1-sentence description.
Assign it a rarity based on the context.
Assign a daily yield value ($ZOO/day).
Estimate a 'market value' in USD.
Generate 4 RPG-style traits (e.g., Strength, Speed, Memeability) with values 0-100.
Provide a visual prompt to generate an image of this creature.`, base, eggType.Bias), nil
}

// cleanJSON strips markdown code fences the model sometimes adds.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
