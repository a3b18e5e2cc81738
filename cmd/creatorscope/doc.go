// Command creatorscope scrapes Instagram and YouTube creators, scores them
// against ideal creator profiles and serves the results on a dashboard.
//
// Typical flow:
//
//	creatorscope config init
//	creatorscope scrape instagram
//	creatorscope scrape youtube
//	creatorscope analyze
//	creatorscope serve
package main
