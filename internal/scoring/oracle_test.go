package scoring_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"creatorscope/internal/profiles"
	"creatorscope/internal/scoring"
	"creatorscope/internal/services/llm"
	"creatorscope/internal/store"
	"creatorscope/internal/testsupport"
)

func loadProfiles(t *testing.T) []profiles.Profile {
	t.Helper()
	ideal, err := profiles.Parse(strings.NewReader(testsupport.ProfilesCSV))
	if err != nil {
		t.Fatalf("profiles.Parse: %v", err)
	}
	return ideal
}

func TestPromptListsProfilesBatchAndKeys(t *testing.T) {
	oracle := scoring.NewLLMOracle(nil, loadProfiles(t))
	prompt, err := oracle.Prompt([]scoring.Candidate{{ID: "jane", Name: "Jane", Platform: store.PlatformInstagram}})
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	for _, want := range []string{
		"Given 2 ideal creator profiles",
		"1. AI Filmmakers: AI video makers",
		"2. Workflow Tutorial Videomakers:",
		"\"id\": \"jane\"",
		"\"platform\": \"instagram\"",
		`Profile names to use as keys: ["AI Filmmakers","Workflow Tutorial Videomakers"]`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\n%s", want, prompt)
		}
	}
}

func TestLLMOracleAgainstCompletionServer(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		var body struct {
			Model          string            `json:"model"`
			ResponseFormat map[string]string `json:"response_format"`
			Messages       []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.ResponseFormat["type"] != "json_object" || len(body.Messages) != 2 {
			t.Errorf("unexpected request: %+v", body)
		}
		content := `{"results":[{"creator_id":"jane","scores":{"AI Filmmakers":9,"Workflow Tutorial Videomakers":4},"best_fit":"AI Filmmakers","reasoning":"Makes AI films."}]}`
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
		})
	}))
	defer server.Close()

	client := llm.NewClient(llm.Config{APIKey: "test-key", BaseURL: server.URL},
		llm.WithRetryMaxAttempts(1), llm.WithRetryBackoff(time.Millisecond, time.Millisecond))
	oracle := scoring.NewLLMOracle(client, loadProfiles(t))
	results, err := oracle.Score(context.Background(), []scoring.Candidate{{ID: "jane"}})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(results) != 1 || results[0].Scores["AI Filmmakers"] != 9 {
		t.Fatalf("unexpected results: %+v", results)
	}
	if requests.Load() != 1 {
		t.Fatalf("expected one request, got %d", requests.Load())
	}
}
