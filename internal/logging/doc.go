// Package logging builds the slog loggers used across creatorscope.
//
// Console output is a single key=value line per record with the component
// hoisted in front of the message; JSON output uses ts/level/msg keys. Helpers
// here standardize field names (component, run_id, platform, creator_id) and
// enforce context on warnings.
package logging
