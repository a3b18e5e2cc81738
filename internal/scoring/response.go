package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"creatorscope/internal/services/llm"
)

// Score bounds for every profile.
const (
	MinScore = 0
	MaxScore = 10
)

// ErrMalformedResponse reports oracle output without a usable results list.
var ErrMalformedResponse = errors.New("malformed scoring response")

// Result is one creator's scores as returned by the oracle, with keys mapped
// to declared profile names.
type Result struct {
	CreatorID string
	Scores    map[string]int
	BestFit   string
	Reasoning string
}

type rawResult struct {
	CreatorID json.RawMessage            `json:"creator_id"`
	ID        json.RawMessage            `json:"id"`
	Scores    map[string]json.RawMessage `json:"scores"`
	BestFit   string                     `json:"best_fit"`
	Reasoning string                     `json:"reasoning"`
}

// ParseResponse decodes oracle output. It accepts an object with a "results"
// array or a bare array. Scores are rounded and clamped to [0,10], numeric
// strings are accepted, keys are matched to profiles case-insensitively and
// unknown keys are dropped. Results without a creator id are dropped.
func ParseResponse(content string, profileNames []string) ([]Result, error) {
	var payload json.RawMessage
	if err := llm.DecodeLLMJSON(content, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	payload = bytes.TrimSpace(payload)

	var items []rawResult
	switch {
	case len(payload) > 0 && payload[0] == '[':
		if err := json.Unmarshal(payload, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	case len(payload) > 0 && payload[0] == '{':
		var envelope struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(payload, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		results := bytes.TrimSpace(envelope.Results)
		if len(results) == 0 || results[0] != '[' {
			return nil, fmt.Errorf("%w: missing results array", ErrMalformedResponse)
		}
		if err := json.Unmarshal(results, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	default:
		return nil, fmt.Errorf("%w: unexpected payload", ErrMalformedResponse)
	}

	canonical := make(map[string]string, len(profileNames))
	for _, name := range profileNames {
		canonical[strings.ToLower(strings.TrimSpace(name))] = name
	}

	out := make([]Result, 0, len(items))
	for _, item := range items {
		id := idString(item.CreatorID)
		if id == "" {
			id = idString(item.ID)
		}
		if id == "" {
			continue
		}
		scores := make(map[string]int, len(item.Scores))
		for key, raw := range item.Scores {
			name, ok := canonical[strings.ToLower(strings.TrimSpace(key))]
			if !ok {
				continue
			}
			if score, ok := parseScore(raw); ok {
				scores[name] = score
			}
		}
		bestFit := strings.TrimSpace(item.BestFit)
		if name, ok := canonical[strings.ToLower(bestFit)]; ok {
			bestFit = name
		}
		out = append(out, Result{
			CreatorID: id,
			Scores:    scores,
			BestFit:   bestFit,
			Reasoning: strings.TrimSpace(item.Reasoning),
		})
	}
	return out, nil
}

func idString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func parseScore(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return clampScore(int(math.Round(v))), true
}

func clampScore(score int) int {
	return max(MinScore, min(MaxScore, score))
}

// BestFit returns the highest scoring profile, walking names in declared
// order so the first strictly greater score wins ties. When no score exceeds
// zero the oracle's label is kept with a score of zero.
func BestFit(scores map[string]int, order []string, label string) (string, int) {
	bestProfile := label
	bestScore := 0
	for _, name := range order {
		if score, ok := scores[name]; ok && score > bestScore {
			bestProfile = name
			bestScore = score
		}
	}
	return bestProfile, bestScore
}
