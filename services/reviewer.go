package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ai-pr-reviewer/models"
)

// PRReviewService defines the interface for running one review pass
type PRReviewService interface {
	// Run executes the review pipeline for the triggering pull-request
	// event: acquire the diff, review every hunk, post the aggregated
	// comments in one batch. A non-nil error means the run failed; all
	// recoverable failures degrade to producing nothing instead.
	Run(ctx context.Context) error
}

// PRReviewServiceImpl implements the PRReviewService interface
type PRReviewServiceImpl struct {
	githubService GitHubService
	aiService     AIService
	config        *models.Config
	logger        *zap.Logger
}

// NewPRReviewService creates a new PRReviewService
func NewPRReviewService(
	githubService GitHubService,
	aiService AIService,
	config *models.Config,
	logger *zap.Logger,
) PRReviewService {
	return &PRReviewServiceImpl{
		githubService: githubService,
		aiService:     aiService,
		config:        config,
		logger:        logger,
	}
}

// Run executes one review pass for the triggering pull-request event
func (s *PRReviewServiceImpl) Run(ctx context.Context) error {
	event, err := models.LoadTriggerEvent(s.config.GitHub.EventPath)
	if err != nil {
		return fmt.Errorf("failed to load trigger event: %w", err)
	}

	rc := s.resolveContext(ctx, event)
	s.logger.Info("Reviewing pull request",
		zap.String("owner", rc.Owner),
		zap.String("repo", rc.Repo),
		zap.Int("number", rc.Number),
		zap.String("event", event.Kind().String()))

	diffText := s.acquireDiff(ctx, event, rc)
	if diffText == "" {
		s.logger.Warn("No diff available, nothing to review",
			zap.String("event", event.Kind().String()))
	}

	files := models.ParseDiff(diffText)
	comments := s.reviewFiles(ctx, rc, files)

	if len(comments) == 0 {
		s.logger.Info("No review comments produced, skipping submission")
		return nil
	}

	if err := s.githubService.CreateReview(ctx, rc.Owner, rc.Repo, rc.Number, comments); err != nil {
		return fmt.Errorf("failed to submit review: %w", err)
	}

	s.logger.Info("Submitted review", zap.Int("comments", len(comments)))
	return nil
}

// resolveContext builds the revision context for the run. Title and
// description come from the pulls endpoint so edits made after the event
// was emitted are reflected; the event payload is the fallback.
func (s *PRReviewServiceImpl) resolveContext(ctx context.Context, event *models.TriggerEvent) *models.RevisionContext {
	rc := &models.RevisionContext{
		Owner:       event.Repository.Owner.Login,
		Repo:        event.Repository.Name,
		Number:      event.PullRequest.Number,
		Title:       event.PullRequest.Title,
		Description: event.PullRequest.Body,
	}

	pr, err := s.githubService.GetPullRequest(ctx, rc.Owner, rc.Repo, rc.Number)
	if err != nil {
		s.logger.Warn("Failed to fetch pull request details, using event payload",
			zap.Int("number", rc.Number), zap.Error(err))
		return rc
	}
	rc.Title = pr.Title
	rc.Description = pr.Body
	return rc
}

// acquireDiff obtains the diff text for the revision using the strategy
// selected by the event kind. Network failures are logged and degrade to
// an empty diff; the run continues to a graceful no-op.
func (s *PRReviewServiceImpl) acquireDiff(ctx context.Context, event *models.TriggerEvent, rc *models.RevisionContext) string {
	switch event.Kind() {
	case models.EventOpened:
		diff, err := s.githubService.GetPullRequestDiff(ctx, rc.Owner, rc.Repo, rc.Number)
		if err != nil {
			s.logger.Warn("Failed to fetch pull request diff", zap.Error(err))
			return ""
		}
		return diff

	case models.EventSynchronized:
		files, err := s.githubService.CompareRevisions(ctx, rc.Owner, rc.Repo, event.Before, event.After)
		if err != nil {
			s.logger.Warn("Failed to compare revisions",
				zap.String("before", event.Before),
				zap.String("after", event.After),
				zap.Error(err))
			return ""
		}
		return assembleComparedDiff(files)

	default:
		s.logger.Warn("Unsupported event action, skipping review", zap.String("action", event.Action))
		return ""
	}
}

// assembleComparedDiff rebuilds parseable diff text from compare-API patch
// fragments. The fragments carry no file headers, so ---/+++ headers are
// synthesized from each entry's filename; removed files get a /dev/null
// target so deletion exclusion still applies. Entries without a patch
// (binary files) contribute nothing.
func assembleComparedDiff(files []models.ComparedFile) string {
	var sb strings.Builder
	for _, file := range files {
		if file.Patch == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		target := "b/" + file.Filename
		if file.Status == "removed" {
			target = "/dev/null"
		}
		fmt.Fprintf(&sb, "--- a/%s\n+++ %s\n", file.Filename, target)
		sb.WriteString(file.Patch)
	}
	return sb.String()
}

type hunkTask struct {
	file *models.DiffFile
	hunk *models.DiffHunk
}

// reviewFiles runs the per-hunk review loop over the parsed diff and
// returns the aggregated comments. Hunks are mutually independent, so
// they are fanned out through a bounded errgroup; results land in
// per-hunk slots, keeping the aggregate content independent of
// completion order.
func (s *PRReviewServiceImpl) reviewFiles(ctx context.Context, rc *models.RevisionContext, files []models.DiffFile) []models.ReviewComment {
	var tasks []hunkTask
	for i := range files {
		file := &files[i]
		path := file.EffectivePath()
		if path == "" {
			s.logger.Debug("Skipping diff entry without a usable path")
			continue
		}
		if file.IsDeletion() {
			s.logger.Debug("Skipping deleted file", zap.String("path", file.OldPath))
			continue
		}
		if s.isExcluded(path) {
			s.logger.Info("Skipping excluded file", zap.String("path", path))
			continue
		}
		for j := range file.Hunks {
			tasks = append(tasks, hunkTask{file: file, hunk: &file.Hunks[j]})
		}
	}
	if len(tasks) == 0 {
		return nil
	}

	results := make([][]models.ReviewComment, len(tasks))
	group := new(errgroup.Group)
	group.SetLimit(s.config.Review.Concurrency)

	for i, task := range tasks {
		if ctx.Err() != nil {
			s.logger.Warn("Run cancelled, abandoning remaining hunks",
				zap.Int("remaining", len(tasks)-i))
			break
		}
		group.Go(func() error {
			results[i] = s.reviewHunk(ctx, rc, task.file, task.hunk)
			return nil
		})
	}
	_ = group.Wait()

	var comments []models.ReviewComment
	for _, r := range results {
		comments = append(comments, r...)
	}

	if max := s.config.Review.MaxComments; max > 0 && len(comments) > max {
		s.logger.Warn("Truncating review comments",
			zap.Int("produced", len(comments)),
			zap.Int("max", max))
		comments = comments[:max]
	}
	return comments
}

// reviewHunk builds the prompt, asks the model, and maps its suggestions
// to comments. Any failure contributes zero comments for this hunk and
// never aborts the run.
func (s *PRReviewServiceImpl) reviewHunk(ctx context.Context, rc *models.RevisionContext, file *models.DiffFile, hunk *models.DiffHunk) []models.ReviewComment {
	if ctx.Err() != nil {
		return nil
	}

	prompt, err := BuildReviewPrompt(file, hunk, rc)
	if err != nil {
		s.logger.Warn("Failed to build review prompt",
			zap.String("path", file.EffectivePath()), zap.Error(err))
		return nil
	}

	suggestions, err := s.aiService.ReviewHunk(ctx, prompt)
	if err != nil {
		s.logger.Warn("Hunk review failed, skipping its comments",
			zap.String("path", file.EffectivePath()),
			zap.String("hunk", hunk.Header),
			zap.Error(err))
		return nil
	}

	return s.mapSuggestions(file, hunk, suggestions)
}

// mapSuggestions converts a hunk's suggestions into positioned comments.
// Suggestions whose line number is not numeric cannot be addressed and
// are dropped; lines outside the hunk's changed set are forwarded as-is
// (the hosting API ultimately decides), but logged so drift is visible.
func (s *PRReviewServiceImpl) mapSuggestions(file *models.DiffFile, hunk *models.DiffHunk, suggestions []models.ReviewSuggestion) []models.ReviewComment {
	path := file.EffectivePath()

	var comments []models.ReviewComment
	for _, suggestion := range suggestions {
		line, err := strconv.Atoi(strings.TrimSpace(suggestion.LineNumber))
		if err != nil {
			s.logger.Warn("Dropping suggestion with non-numeric line number",
				zap.String("path", path),
				zap.String("lineNumber", suggestion.LineNumber))
			continue
		}
		if !hunkHasLine(hunk, line) {
			s.logger.Debug("Suggested line is not part of the hunk",
				zap.String("path", path),
				zap.Int("line", line),
				zap.String("hunk", hunk.Header))
		}
		comments = append(comments, models.ReviewComment{
			Body: suggestion.ReviewComment,
			Path: path,
			Line: line,
		})
	}
	return comments
}

// hunkHasLine reports whether any change in the hunk carries the given
// effective line number
func hunkHasLine(hunk *models.DiffHunk, line int) bool {
	for i := range hunk.Changes {
		if hunk.Changes[i].EffectiveLine() == line {
			return true
		}
	}
	return false
}

// isExcluded reports whether the path matches a configured exclude glob
func (s *PRReviewServiceImpl) isExcluded(path string) bool {
	for _, pattern := range s.config.Review.Exclude {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
