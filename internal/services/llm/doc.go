// Package llm provides an OpenRouter-compatible chat client used for
// transcript translation.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send system/user prompts, receive the model's text output.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors and network timeouts with
// exponential backoff (base 1s, max 10s, up to 3 attempts by default).
// Context cancellation aborts retries immediately.
package llm
