// Package dashboard serves the creator, campaign and analysis JSON API plus
// cached avatars and an optional static frontend.
package dashboard
