// Package store persists scraped creators, their posts and videos, campaign
// status and analysis results in SQLite.
//
// Instagram and YouTube keep separate tables. Every write is an upsert that
// replaces all mutable fields (last write wins). Derived metrics such as
// engagement rate, tier and niches are never stored; list queries aggregate
// content counters and compute them on read via package derive.
//
// Foreign keys are enforced: content or campaign rows pointing at an unstored
// creator fail with ErrUnknownCreator and no placeholder creator is created.
package store
