// Package textutil provides small string helpers: filename sanitization for
// cache keys and rune-safe truncation for prompt fields.
package textutil
