package services

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"ai-pr-reviewer/models"
)

//go:embed templates/review_prompt.tmpl
var reviewPromptTemplate string

var reviewPromptTmpl *template.Template

func init() {
	var err error
	reviewPromptTmpl, err = template.New("review_prompt").Parse(reviewPromptTemplate)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse review prompt template: %v", err))
	}
}

type reviewPromptData struct {
	FilePath    string
	Title       string
	Description string
	HunkHeader  string
	Changes     string
}

// BuildReviewPrompt renders the review prompt for one hunk. It is a pure
// function of its inputs: the file's effective path, the pull request
// title and description, the hunk header, and every change line prefixed
// with its effective line number. That prefixed number is the coordinate
// the model is asked to answer with, so its answers map directly onto
// comment positions.
func BuildReviewPrompt(file *models.DiffFile, hunk *models.DiffHunk, rc *models.RevisionContext) (string, error) {
	var changes strings.Builder
	for i := range hunk.Changes {
		change := &hunk.Changes[i]
		if i > 0 {
			changes.WriteByte('\n')
		}
		changes.WriteString(strconv.Itoa(change.EffectiveLine()))
		changes.WriteByte(' ')
		changes.WriteString(change.Content)
	}

	data := reviewPromptData{
		FilePath:    file.EffectivePath(),
		Title:       rc.Title,
		Description: rc.Description,
		HunkHeader:  hunk.Header,
		Changes:     changes.String(),
	}

	var buf bytes.Buffer
	if err := reviewPromptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute review prompt template: %w", err)
	}
	return buf.String(), nil
}
