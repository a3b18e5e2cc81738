// Package services defines shared utilities consumed by the external
// integrations (Apify, the scoring LLM, avatar CDNs).
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (configuration vs transient upstream trouble).
//   - HTTPClient, a retrying HTTP client built on failsafe-go that buffers
//     each response body so retried attempts never leak connections.
//
// Subpackages hold the individual service clients.
package services
