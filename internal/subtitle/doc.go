// Package subtitle turns timed transcript segments into SRT or WebVTT text,
// wrapping cue lines for on-screen readability.
package subtitle
