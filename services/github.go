package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"
	"go.uber.org/zap"

	"ai-pr-reviewer/models"
)

// GitHubService defines the interface for interacting with GitHub
type GitHubService interface {
	// GetPullRequest fetches the pull request's current title and description
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*models.GitHubPullRequest, error)

	// GetPullRequestDiff fetches the complete unified diff for a pull request
	GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error)

	// CompareRevisions compares two revisions and returns the changed files
	// with their patch fragments
	CompareRevisions(ctx context.Context, owner, repo, base, head string) ([]models.ComparedFile, error)

	// CreateReview posts all comments to the pull request in one batched review
	CreateReview(ctx context.Context, owner, repo string, number int, comments []models.ReviewComment) error
}

// GitHubServiceImpl implements the GitHubService interface
type GitHubServiceImpl struct {
	client *gh.Client
	config *models.Config
	logger *zap.Logger
}

// NewGitHubService creates a new GitHubService with the following transport
// stack: httpcache (conditional request caching) wrapped by the secondary
// rate limit middleware, feeding the go-github client.
func NewGitHubService(config *models.Config, logger *zap.Logger) GitHubService {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(config.GitHub.Token)

	return &GitHubServiceImpl{
		client: client,
		config: config,
		logger: logger,
	}
}

// NewGitHubServiceWithClient creates a GitHubService backed by a custom
// http.Client and API base URL so tests can point it at an httptest server.
func NewGitHubServiceWithClient(config *models.Config, logger *zap.Logger, httpClient *http.Client, baseURL string) (GitHubService, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	client := gh.NewClient(httpClient)
	client.BaseURL = u

	return &GitHubServiceImpl{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// GetPullRequest fetches the pull request's current title and description
func (s *GitHubServiceImpl) GetPullRequest(ctx context.Context, owner, repo string, number int) (*models.GitHubPullRequest, error) {
	pr, _, err := s.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request %s/%s#%d: %w", owner, repo, number, err)
	}

	return &models.GitHubPullRequest{
		ID:      pr.GetID(),
		Number:  pr.GetNumber(),
		State:   pr.GetState(),
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		HTMLURL: pr.GetHTMLURL(),
	}, nil
}

// GetPullRequestDiff fetches the complete unified diff for a pull request
func (s *GitHubServiceImpl) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	diff, _, err := s.client.PullRequests.GetRaw(ctx, owner, repo, number, gh.RawOptions{Type: gh.Diff})
	if err != nil {
		return "", fmt.Errorf("failed to get diff for %s/%s#%d: %w", owner, repo, number, err)
	}
	return diff, nil
}

// CompareRevisions compares two revisions and returns the changed files
func (s *GitHubServiceImpl) CompareRevisions(ctx context.Context, owner, repo, base, head string) ([]models.ComparedFile, error) {
	comparison, _, err := s.client.Repositories.CompareCommits(ctx, owner, repo, base, head, &gh.ListOptions{PerPage: 100})
	if err != nil {
		return nil, fmt.Errorf("failed to compare %s...%s in %s/%s: %w", base, head, owner, repo, err)
	}

	files := make([]models.ComparedFile, 0, len(comparison.Files))
	for _, f := range comparison.Files {
		files = append(files, models.ComparedFile{
			Filename: f.GetFilename(),
			Status:   f.GetStatus(),
			Patch:    f.GetPatch(),
		})
	}
	return files, nil
}

// CreateReview posts all comments to the pull request in one batched review
func (s *GitHubServiceImpl) CreateReview(ctx context.Context, owner, repo string, number int, comments []models.ReviewComment) error {
	drafts := make([]*gh.DraftReviewComment, 0, len(comments))
	for _, c := range comments {
		drafts = append(drafts, &gh.DraftReviewComment{
			Path: gh.Ptr(c.Path),
			Line: gh.Ptr(c.Line),
			Body: gh.Ptr(c.Body),
		})
	}

	review := &gh.PullRequestReviewRequest{
		Event:    gh.Ptr("COMMENT"),
		Comments: drafts,
	}

	_, _, err := s.client.PullRequests.CreateReview(ctx, owner, repo, number, review)
	if err != nil {
		return fmt.Errorf("failed to create review on %s/%s#%d: %w", owner, repo, number, err)
	}

	s.logger.Debug("Created review",
		zap.String("owner", owner),
		zap.String("repo", repo),
		zap.Int("number", number),
		zap.Int("comments", len(drafts)))
	return nil
}
