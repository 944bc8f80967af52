// Package caption attaches subtitles to video through the external encoder:
// burn-in re-encodes the picture with styled text rendered in, soft-mux
// stream-copies and adds a selectable subtitle track.
package caption
