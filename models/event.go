package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// EventKind identifies the pull-request action that triggered the run.
// It is a closed set: anything that is not an explicitly supported action
// maps to EventUnsupported and produces no diff.
type EventKind int

const (
	EventUnsupported EventKind = iota
	EventOpened
	EventSynchronized
)

// ParseEventKind maps a GitHub action string onto the closed event set
func ParseEventKind(action string) EventKind {
	switch action {
	case "opened":
		return EventOpened
	case "synchronize":
		return EventSynchronized
	default:
		return EventUnsupported
	}
}

// String returns the string representation of EventKind
func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventSynchronized:
		return "synchronize"
	default:
		return "unsupported"
	}
}

// GitHubUser represents a GitHub user
type GitHubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// GitHubRepository represents a GitHub repository
type GitHubRepository struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	FullName string     `json:"full_name"`
	Owner    GitHubUser `json:"owner"`
}

// GitHubPullRequest represents a GitHub pull request
type GitHubPullRequest struct {
	ID      int64  `json:"id"`
	Number  int    `json:"number"`
	State   string `json:"state"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

// TriggerEvent represents the pull-request event payload that started the run
type TriggerEvent struct {
	Action      string             `json:"action"`
	Before      string             `json:"before"`
	After       string             `json:"after"`
	PullRequest *GitHubPullRequest `json:"pull_request"`
	Repository  GitHubRepository   `json:"repository"`
}

// Kind returns the closed event kind for the payload's action
func (e *TriggerEvent) Kind() EventKind {
	return ParseEventKind(e.Action)
}

// LoadTriggerEvent reads and decodes the event payload written by the CI
// runner. Structural preconditions are checked here, before any network
// call: a payload without a pull request is unusable, and a synchronize
// event must carry both revision identifiers.
func LoadTriggerEvent(path string) (*TriggerEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event payload: %w", err)
	}

	var event TriggerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}

	if event.PullRequest == nil {
		return nil, errors.New("event payload does not contain a pull request")
	}
	if event.Repository.Owner.Login == "" || event.Repository.Name == "" {
		return nil, errors.New("event payload does not identify a repository")
	}
	if event.Kind() == EventSynchronized && (event.Before == "" || event.After == "") {
		return nil, errors.New("synchronize event is missing before/after revision identifiers")
	}

	return &event, nil
}

// RevisionContext identifies the pull-request revision under review.
// Immutable for the duration of a run.
type RevisionContext struct {
	Owner       string
	Repo        string
	Number      int
	Title       string
	Description string
}
