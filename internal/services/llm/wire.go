package llm

import (
	"fmt"
	"strings"

	"creatorscope/internal/textutil"
)

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []choice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// choice covers the message, streaming delta and legacy text shapes that
// OpenAI-compatible providers return even for non-streaming calls.
type choice struct {
	Message      message `json:"message"`
	Delta        message `json:"delta"`
	Text         string  `json:"text"`
	FinishReason string  `json:"finish_reason"`
}

type message struct {
	Content      string        `json:"content"`
	ToolCalls    []toolCall    `json:"tool_calls"`
	FunctionCall *functionCall `json:"function_call"`
	Refusal      string        `json:"refusal"`
}

type toolCall struct {
	Function functionCall `json:"function"`
}

type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

func (m message) arguments() string {
	if m.FunctionCall != nil {
		if args := strings.TrimSpace(m.FunctionCall.Arguments); args != "" {
			return args
		}
	}
	for _, call := range m.ToolCalls {
		if args := strings.TrimSpace(call.Function.Arguments); args != "" {
			return args
		}
	}
	return ""
}

// payload returns plain content first, then function or tool arguments.
func (c choice) payload() string {
	return textutil.FirstNonEmpty(
		c.Message.Content,
		c.Delta.Content,
		c.Text,
		c.Message.arguments(),
		c.Delta.arguments(),
	)
}

// content returns the first usable payload across choices, with the first
// reported finish reason and refusal for diagnostics.
func (r chatResponse) content() (payload, finishReason, refusal string) {
	for _, ch := range r.Choices {
		if finishReason == "" {
			finishReason = strings.TrimSpace(ch.FinishReason)
		}
		if refusal == "" {
			refusal = textutil.FirstNonEmpty(ch.Message.Refusal, ch.Delta.Refusal)
		}
		if p := ch.payload(); p != "" {
			return p, finishReason, refusal
		}
	}
	return "", finishReason, refusal
}

type emptyContentError struct {
	op           string
	finishReason string
	refusal      string
	snippet      string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("%s: empty content (finish_reason=%q, refusal=%q, response_snippet=%s)",
		e.op, e.finishReason, e.refusal, e.snippet)
}
