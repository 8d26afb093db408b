package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"ai-pr-reviewer/models"
)

// Invocation policy is fixed per hunk and not caller-configurable: low
// randomness, bounded output, one system message, no conversation history.
const (
	reviewTemperature      = 0.2
	reviewMaxTokens        = 700
	reviewTopP             = 1
	reviewFrequencyPenalty = 0
	reviewPresencePenalty  = 0
)

// AIService defines the interface for the inference collaborator
type AIService interface {
	// ReviewHunk sends a review prompt and returns the model's suggestions.
	// Each call is independent; no state is carried between hunks.
	ReviewHunk(ctx context.Context, prompt string) ([]models.ReviewSuggestion, error)
}

// OpenAIServiceImpl implements the AIService interface using the OpenAI
// chat completion API
type OpenAIServiceImpl struct {
	client *openai.Client
	config *models.Config
	logger *zap.Logger
}

// NewOpenAIService creates a new AIService backed by OpenAI
func NewOpenAIService(config *models.Config, logger *zap.Logger) AIService {
	clientConfig := openai.DefaultConfig(config.OpenAI.APIKey)
	if config.OpenAI.BaseURL != "" {
		clientConfig.BaseURL = config.OpenAI.BaseURL
	}

	return &OpenAIServiceImpl{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logger,
	}
}

// ReviewHunk sends a review prompt and parses the response into suggestions
func (s *OpenAIServiceImpl) ReviewHunk(ctx context.Context, prompt string) ([]models.ReviewSuggestion, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:            s.config.OpenAI.Model,
		Temperature:      reviewTemperature,
		MaxTokens:        reviewMaxTokens,
		TopP:             reviewTopP,
		FrequencyPenalty: reviewFrequencyPenalty,
		PresencePenalty:  reviewPresencePenalty,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}

	var content string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	suggestions, err := ParseSuggestions(content)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Model returned suggestions", zap.Int("count", len(suggestions)))
	return suggestions, nil
}

// ParseSuggestions decodes a model answer into typed suggestions. The
// answer is trimmed and an absent answer is treated as the empty array;
// anything that does not decode into the expected array shape is an error.
func ParseSuggestions(content string) ([]models.ReviewSuggestion, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		content = "[]"
	}

	var suggestions []models.ReviewSuggestion
	if err := json.Unmarshal([]byte(content), &suggestions); err != nil {
		return nil, fmt.Errorf("model response is not a suggestion array: %w", err)
	}
	return suggestions, nil
}
