package llm

import (
	"strings"
	"testing"
)

func TestDecodeLLMJSON(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"plain", `{"results":[{"creator_id":"a"}]}`, false},
		{"fenced", "```json\n{\"results\":[{\"creator_id\":\"a\"}]}\n```", false},
		{"prose", `Here you go: {"results":[{"creator_id":"a"}]} hope it helps`, false},
		{"fence without language", "```\n{\"results\":[{\"creator_id\":\"a\"}]}\n```", false},
		{"trailing braces", `{"results":[{"creator_id":"a"}]} then {oops}`, false},
		{"empty", "   ", true},
		{"garbage", "no json here", true},
	}
	for _, tc := range cases {
		var out struct {
			Results []struct {
				CreatorID string `json:"creator_id"`
			} `json:"results"`
		}
		err := DecodeLLMJSON(tc.content, &out)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if len(out.Results) != 1 || out.Results[0].CreatorID != "a" {
			t.Fatalf("%s: unexpected decode %+v", tc.name, out)
		}
	}
}

func TestPayloadSnippetTruncates(t *testing.T) {
	snippet := payloadSnippet(strings.Repeat("x ", 200))
	if !strings.HasSuffix(snippet, "...") || len([]rune(snippet)) != 163 {
		t.Fatalf("unexpected snippet length %d", len([]rune(snippet)))
	}
	if payloadSnippet("") != "<empty>" {
		t.Fatal("expected <empty> for blank payload")
	}
}
