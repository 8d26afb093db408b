package models

import (
	"encoding/json"
	"fmt"
)

// ReviewSuggestion is one unvalidated (line, comment) pair emitted by the
// model for a hunk. LineNumber is kept as text because the model may emit
// either a JSON string or a JSON number; coercion happens at mapping time.
type ReviewSuggestion struct {
	LineNumber    string `json:"lineNumber"`
	ReviewComment string `json:"reviewComment"`
}

// UnmarshalJSON accepts both string and numeric lineNumber values. Any
// other shape is a decode error, which callers fold into the
// no-suggestions path.
func (s *ReviewSuggestion) UnmarshalJSON(data []byte) error {
	var raw struct {
		LineNumber    json.RawMessage `json:"lineNumber"`
		ReviewComment string          `json:"reviewComment"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.ReviewComment = raw.ReviewComment

	if len(raw.LineNumber) == 0 {
		s.LineNumber = ""
		return nil
	}
	var asString string
	if err := json.Unmarshal(raw.LineNumber, &asString); err == nil {
		s.LineNumber = asString
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw.LineNumber, &asNumber); err == nil {
		s.LineNumber = asNumber.String()
		return nil
	}
	return fmt.Errorf("lineNumber must be a string or a number, got %s", string(raw.LineNumber))
}

// ReviewComment is one positioned comment ready to be posted back to the
// pull request.
type ReviewComment struct {
	Body string
	Path string
	Line int
}
