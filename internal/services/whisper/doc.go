// Package whisper wraps the whisper-compatible speech-to-text command line
// tools. It builds the invocation, folds optional guidance into the single
// initial-prompt channel the tools expose, and parses the JSON artifact into
// the shared transcript model.
package whisper
