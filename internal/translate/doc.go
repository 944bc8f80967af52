// Package translate drives the remote model to translate transcripts. Full
// text is translated as one call; segments follow sequentially with a fixed
// pacing delay, and an individual segment failure falls back to the original
// text instead of aborting the batch.
package translate
