package mocks

import (
	"context"

	"ai-pr-reviewer/models"
)

// MockAIService is a mock implementation of the AIService interface
type MockAIService struct {
	ReviewHunkFunc func(ctx context.Context, prompt string) ([]models.ReviewSuggestion, error)
}

// ReviewHunk is the mock implementation of AIService's ReviewHunk method
func (m *MockAIService) ReviewHunk(ctx context.Context, prompt string) ([]models.ReviewSuggestion, error) {
	if m.ReviewHunkFunc != nil {
		return m.ReviewHunkFunc(ctx, prompt)
	}
	return nil, nil
}
