// Package llm provides an OpenAI-compatible chat client used as the creator
// scoring oracle.
//
// Requests always ask for a JSON object response. Responses are tolerated in
// several shapes (message content, streaming delta, legacy text, tool-call
// arguments) and DecodeLLMJSON strips code fences and surrounding prose
// before decoding.
//
// # Retry Behaviour
//
// HTTP 408/429/5xx, transport errors and empty completions are retried with
// exponential backoff (base 1s, max 10s, 3 attempts by default) through
// services.HTTPClient. Context cancellation aborts retries immediately.
package llm
