package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"creatorscope/internal/textutil"
)

const snippetLimit = 160

// DecodeLLMJSON unmarshals a model reply into target. Replies wrapped in a
// markdown fence or surrounded by prose are accepted: the first complete JSON
// object or array found in the text is decoded.
func DecodeLLMJSON(content string, target any) error {
	text := strings.TrimSpace(content)
	if text == "" {
		return errors.New("empty payload")
	}
	err := json.Unmarshal([]byte(text), target)
	if err == nil {
		return nil
	}
	raw, ok := embeddedJSON(unfence(text))
	if !ok {
		return fmt.Errorf("%w (payload snippet: %s)", err, payloadSnippet(text))
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w (extracted payload snippet: %s)", err, payloadSnippet(string(raw)))
	}
	return nil
}

// unfence returns the body of a ```json ... ``` block, or text unchanged.
func unfence(text string) string {
	body, found := strings.CutPrefix(text, "```")
	if !found {
		return text
	}
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[") {
		body = body[nl+1:]
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// embeddedJSON scans for the first offset where a complete JSON value starts.
func embeddedJSON(text string) (json.RawMessage, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&raw); err == nil {
			return raw, true
		}
	}
	return nil, false
}

func payloadSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	if short := textutil.TruncateRunes(clean, snippetLimit); short != clean {
		return short + "..."
	}
	return clean
}
