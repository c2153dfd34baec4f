package responder

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/xaenox/marketwatch/internal/models"
	"go.uber.org/zap"
)

// OpenAIGenerator generates replies with the OpenAI chat completion API.
// The caller bounds the call with its context; a dead network must never
// hang a monitoring cycle.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewOpenAIGenerator(apiKey string, model string, maxTokens int, temperature float64, logger *zap.Logger) *OpenAIGenerator {
	return &OpenAIGenerator{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, msg *models.Message, product *models.Product, history []*models.Message) (string, error) {
	prompt := buildPrompt(msg, product, history)

	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleSystem,
					Content: "You are a friendly marketplace seller assistant. " +
						"Answer the buyer briefly and politely. Do not invent details " +
						"that are not in the listing.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   g.maxTokens,
			Temperature: float32(g.temperature),
		},
	)
	if err != nil {
		g.logger.Error("Failed to get AI response",
			zap.Error(err),
			zap.String("conversation_id", msg.ConversationID))
		return "", fmt.Errorf("ai generation failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildPrompt(msg *models.Message, product *models.Product, history []*models.Message) string {
	var b strings.Builder

	if product != nil {
		fmt.Fprintf(&b, "Listing: %s ($%.2f, %s)\n", product.Title, product.Price, product.Condition)
		if product.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", product.Description)
		}
		b.WriteString("\n")
	}

	if len(history) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, prev := range history {
			role := "Buyer"
			if prev.Type == models.TypeAIResponse || prev.Type == models.TypeHumanResponse {
				role = "Seller"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, prev.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Buyer %s says: %s\n\nReply as the seller:", msg.SenderName, msg.Content)
	return b.String()
}
