package subtitle

import (
	"fmt"
	"os"
	"strings"

	"legenda/internal/services"
	"legenda/internal/transcript"
)

// Format selects the subtitle container syntax.
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// Line wrapping bounds. Cue text wider than two 40-column lines is truncated;
// readers cannot follow more anyway.
const (
	maxLineLength = 40
	maxLines      = 2
)

// ParseFormat validates a caller-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSRT, "":
		return FormatSRT, nil
	case FormatVTT:
		return FormatVTT, nil
	default:
		return "", services.Wrap(services.ErrValidation, "subtitle", "parse format",
			fmt.Sprintf("unsupported subtitle format %q", s), nil)
	}
}

// Extension returns the file extension for the format, dot included.
func (f Format) Extension() string {
	return "." + string(f)
}

// Render serializes segments into subtitle text. Segments are emitted in the
// order given; empty segments render as empty cues rather than being dropped,
// keeping cue numbering aligned with segment IDs.
func Render(segments []transcript.Segment, format Format) string {
	var b strings.Builder
	if format == FormatVTT {
		b.WriteString("WEBVTT\n\n")
	}
	for i, seg := range segments {
		if format == FormatSRT {
			fmt.Fprintf(&b, "%d\n", i+1)
		}
		fmt.Fprintf(&b, "%s --> %s\n", formatTimestamp(seg.Start, format), formatTimestamp(seg.End, format))
		b.WriteString(wrapText(seg.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// WriteFile renders segments and writes the result to path.
func WriteFile(path string, segments []transcript.Segment, format Format) error {
	if err := os.WriteFile(path, []byte(Render(segments, format)), 0o600); err != nil {
		return services.Wrap(services.ErrConfiguration, "subtitle", "write file", path, err)
	}
	return nil
}

// formatTimestamp renders seconds as HH:MM:SS,mmm (SRT) or HH:MM:SS.mmm
// (VTT). Components come from floor division so a value like 12.345 renders
// exactly, never rounded up into the next second.
func formatTimestamp(seconds float64, format Format) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(seconds * 1000)
	hours := totalMillis / 3_600_000
	minutes := totalMillis % 3_600_000 / 60_000
	secs := totalMillis % 60_000 / 1000
	millis := totalMillis % 1000

	sep := ","
	if format == FormatVTT {
		sep = "."
	}
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", hours, minutes, secs, sep, millis)
}

// wrapText collapses whitespace and wraps the cue greedily to at most two
// lines of maxLineLength columns. Overflow past the second line is dropped
// silently. A single word longer than a line is hard-truncated to the line
// width rather than split across lines.
func wrapText(text string) string {
	words := strings.Fields(text)
	collapsed := strings.Join(words, " ")
	if len(collapsed) <= maxLineLength {
		return collapsed
	}

	var lines []string
	var current string
	for _, word := range words {
		if len(word) > maxLineLength {
			word = word[:maxLineLength]
		}
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= maxLineLength:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
		if len(lines) == maxLines {
			return strings.Join(lines, "\n")
		}
	}
	if current != "" && len(lines) < maxLines {
		lines = append(lines, current)
	}
	return strings.Join(lines, "\n")
}
