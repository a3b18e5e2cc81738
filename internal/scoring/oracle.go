package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"creatorscope/internal/profiles"
)

// Oracle scores one batch of candidates.
type Oracle interface {
	Score(ctx context.Context, batch []Candidate) ([]Result, error)
}

// Completer issues a JSON-only chat completion.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const systemPrompt = "You are an influencer marketing analyst. You score creators against ideal creator profiles. Respond with a single JSON object only, no prose and no code fences."

// LLMOracle builds the scoring prompt and parses the completion.
type LLMOracle struct {
	completer    Completer
	names        []string
	descriptions string
}

// NewLLMOracle prepares an oracle for the given profiles.
func NewLLMOracle(completer Completer, ideal []profiles.Profile) *LLMOracle {
	return &LLMOracle{
		completer:    completer,
		names:        profiles.Names(ideal),
		descriptions: profiles.Describe(ideal),
	}
}

// Score implements Oracle.
func (o *LLMOracle) Score(ctx context.Context, batch []Candidate) ([]Result, error) {
	prompt, err := o.Prompt(batch)
	if err != nil {
		return nil, err
	}
	content, err := o.completer.CompleteJSON(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	return ParseResponse(content, o.names)
}

// Prompt renders the user prompt for one batch.
func (o *LLMOracle) Prompt(batch []Candidate) (string, error) {
	encodedBatch, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode batch: %w", err)
	}
	encodedNames, err := json.Marshal(o.names)
	if err != nil {
		return "", fmt.Errorf("encode profile names: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an influencer marketing analyst. Given %d ideal creator profiles and a batch of scraped creator data, score each creator's fit (0-10) against each profile.\n\n", len(o.names))
	b.WriteString("Ideal Profiles:\n")
	b.WriteString(o.descriptions)
	b.WriteString("\n\nCreators to analyze:\n")
	b.Write(encodedBatch)
	b.WriteString("\n\nReturn a JSON object with a \"results\" array. Each element must have:\n")
	b.WriteString("- \"creator_id\": the creator's id\n")
	b.WriteString("- \"scores\": an object with keys being the exact profile names and values being integers 0-10\n")
	b.WriteString("- \"best_fit\": the profile name with the highest score\n")
	b.WriteString("- \"reasoning\": 1-2 sentence explanation\n\n")
	b.WriteString("Profile names to use as keys: ")
	b.Write(encodedNames)
	return b.String(), nil
}

// Names returns the declared profile names in sheet order.
func (o *LLMOracle) Names() []string {
	return append([]string(nil), o.names...)
}
