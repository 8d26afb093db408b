package mocks

import (
	"context"

	"ai-pr-reviewer/models"
)

// MockGitHubService is a mock implementation of the GitHubService interface
type MockGitHubService struct {
	GetPullRequestFunc     func(ctx context.Context, owner, repo string, number int) (*models.GitHubPullRequest, error)
	GetPullRequestDiffFunc func(ctx context.Context, owner, repo string, number int) (string, error)
	CompareRevisionsFunc   func(ctx context.Context, owner, repo, base, head string) ([]models.ComparedFile, error)
	CreateReviewFunc       func(ctx context.Context, owner, repo string, number int, comments []models.ReviewComment) error
}

// GetPullRequest is the mock implementation of GitHubService's GetPullRequest method
func (m *MockGitHubService) GetPullRequest(ctx context.Context, owner, repo string, number int) (*models.GitHubPullRequest, error) {
	if m.GetPullRequestFunc != nil {
		return m.GetPullRequestFunc(ctx, owner, repo, number)
	}
	return &models.GitHubPullRequest{Number: number}, nil
}

// GetPullRequestDiff is the mock implementation of GitHubService's GetPullRequestDiff method
func (m *MockGitHubService) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	if m.GetPullRequestDiffFunc != nil {
		return m.GetPullRequestDiffFunc(ctx, owner, repo, number)
	}
	return "", nil
}

// CompareRevisions is the mock implementation of GitHubService's CompareRevisions method
func (m *MockGitHubService) CompareRevisions(ctx context.Context, owner, repo, base, head string) ([]models.ComparedFile, error) {
	if m.CompareRevisionsFunc != nil {
		return m.CompareRevisionsFunc(ctx, owner, repo, base, head)
	}
	return nil, nil
}

// CreateReview is the mock implementation of GitHubService's CreateReview method
func (m *MockGitHubService) CreateReview(ctx context.Context, owner, repo string, number int, comments []models.ReviewComment) error {
	if m.CreateReviewFunc != nil {
		return m.CreateReviewFunc(ctx, owner, repo, number, comments)
	}
	return nil
}
