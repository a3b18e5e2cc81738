// Package apify is a minimal client for the Apify actor API.
//
// A scrape is three calls: start an actor run, poll the run until it reaches a
// terminal state, then page through the run's default dataset. Every request
// goes through services.HTTPClient, so 408/429/5xx responses and transport
// errors are retried with bounded exponential backoff. The API token is sent
// as a bearer header, never in the query string.
package apify
