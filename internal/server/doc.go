// Package server exposes the transcription, captioning, and translation
// pipelines over HTTP. Each request runs its own pipeline; handlers share
// nothing but read-only configuration and the job journal.
package server
