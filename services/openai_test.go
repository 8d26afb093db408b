package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"ai-pr-reviewer/models"
	"ai-pr-reviewer/services"
)

func TestParseSuggestions(t *testing.T) {
	t.Run("Valid array", func(t *testing.T) {
		suggestions, err := services.ParseSuggestions(`[{"lineNumber":"42","reviewComment":"avoid unchecked index"}]`)
		if err != nil {
			t.Fatalf("ParseSuggestions returned an error: %v", err)
		}
		if len(suggestions) != 1 {
			t.Fatalf("Expected 1 suggestion, got %d", len(suggestions))
		}
		if suggestions[0].LineNumber != "42" {
			t.Errorf("Expected line number 42, got %s", suggestions[0].LineNumber)
		}
	})

	t.Run("Numeric line numbers", func(t *testing.T) {
		suggestions, err := services.ParseSuggestions(`[{"lineNumber":7,"reviewComment":"c"}]`)
		if err != nil {
			t.Fatalf("ParseSuggestions returned an error: %v", err)
		}
		if suggestions[0].LineNumber != "7" {
			t.Errorf("Expected line number 7, got %s", suggestions[0].LineNumber)
		}
	})

	t.Run("Empty answer means no suggestions", func(t *testing.T) {
		for _, content := range []string{"", "   ", "\n\t", "[]"} {
			suggestions, err := services.ParseSuggestions(content)
			if err != nil {
				t.Fatalf("ParseSuggestions(%q) returned an error: %v", content, err)
			}
			if len(suggestions) != 0 {
				t.Errorf("ParseSuggestions(%q): expected no suggestions, got %d", content, len(suggestions))
			}
		}
	})

	t.Run("Invalid JSON is an error", func(t *testing.T) {
		if _, err := services.ParseSuggestions("I think this code is great!"); err == nil {
			t.Fatal("Expected an error for non-JSON content")
		}
	})

	t.Run("Wrong shape is an error", func(t *testing.T) {
		if _, err := services.ParseSuggestions(`{"reviews":[]}`); err == nil {
			t.Fatal("Expected an error for a non-array response")
		}
	})
}

// newChatCompletionServer fakes the chat completion endpoint, answering
// every request with the given message content.
func newChatCompletionServer(t *testing.T, content string, gotRequest *map[string]interface{}) *httptest.Server {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotRequest != nil {
			var body map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("Failed to decode chat completion request: %v", err)
			}
			*gotRequest = body
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"role": "assistant", "content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newOpenAITestConfig(baseURL string) *models.Config {
	config := &models.Config{}
	config.OpenAI.APIKey = "sk-test"
	config.OpenAI.Model = "gpt-4o"
	config.OpenAI.BaseURL = baseURL
	config.Review.Concurrency = 1
	return config
}

func TestReviewHunk(t *testing.T) {
	var gotRequest map[string]interface{}
	server := newChatCompletionServer(t, `[{"lineNumber":"12","reviewComment":"check the error"}]`, &gotRequest)

	ai := services.NewOpenAIService(newOpenAITestConfig(server.URL+"/v1"), zap.NewNop())

	suggestions, err := ai.ReviewHunk(context.Background(), "review this hunk")
	if err != nil {
		t.Fatalf("ReviewHunk returned an error: %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("Expected 1 suggestion, got %d", len(suggestions))
	}
	if suggestions[0].ReviewComment != "check the error" {
		t.Errorf("Unexpected comment: %s", suggestions[0].ReviewComment)
	}

	// The invocation policy is fixed: one system message, low temperature,
	// bounded output.
	if gotRequest["model"] != "gpt-4o" {
		t.Errorf("Expected model gpt-4o, got %v", gotRequest["model"])
	}
	if temp, ok := gotRequest["temperature"].(float64); !ok || temp < 0.19 || temp > 0.21 {
		t.Errorf("Expected temperature 0.2, got %v", gotRequest["temperature"])
	}
	if gotRequest["max_tokens"] != float64(700) {
		t.Errorf("Expected max_tokens 700, got %v", gotRequest["max_tokens"])
	}
	messages, ok := gotRequest["messages"].([]interface{})
	if !ok || len(messages) != 1 {
		t.Fatalf("Expected exactly one message, got %v", gotRequest["messages"])
	}
	message := messages[0].(map[string]interface{})
	if message["role"] != "system" {
		t.Errorf("Expected a system message, got role %v", message["role"])
	}
	if message["content"] != "review this hunk" {
		t.Errorf("Expected the prompt as message content, got %v", message["content"])
	}
}

func TestReviewHunkMalformedAnswer(t *testing.T) {
	server := newChatCompletionServer(t, "Sure! Here are my thoughts:", nil)

	ai := services.NewOpenAIService(newOpenAITestConfig(server.URL+"/v1"), zap.NewNop())

	if _, err := ai.ReviewHunk(context.Background(), "review this hunk"); err == nil {
		t.Fatal("Expected an error for a malformed model answer")
	}
}

func TestReviewHunkNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	ai := services.NewOpenAIService(newOpenAITestConfig(server.URL+"/v1"), zap.NewNop())

	if _, err := ai.ReviewHunk(context.Background(), "review this hunk"); err == nil {
		t.Fatal("Expected an error for a failed API call")
	}
}
