// Package transcript defines the structured transcription model shared by
// the whisper client, subtitle synthesis, and translation.
package transcript
