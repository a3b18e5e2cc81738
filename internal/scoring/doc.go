// Package scoring rates stored creators against the ideal profiles in
// sequential batches through an LLM oracle and persists one analysis result
// per creator.
//
// A batch whose oracle call or response fails is logged and skipped; the run
// continues with the next batch. A failed store write ends the run.
package scoring
