// Package transcribe orchestrates the upload-to-transcript flow: it
// materializes the incoming stream, invokes the speech engine, and removes
// every intermediate artifact regardless of outcome.
package transcribe
