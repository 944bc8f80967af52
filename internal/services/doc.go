// Package services provides shared service-layer helpers: the pipeline error
// taxonomy with HTTP status mapping, and request correlation context.
// Subpackages hold clients for external collaborators (whisper, llm).
package services
