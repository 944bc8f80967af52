package transcript

import "strings"

// Segment is one timed unit of transcribed speech, the speech engine's
// native granularity.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the structured output of one transcription: the full text
// plus ordered segments. Segments are trusted to be temporally non-decreasing
// by start time; the speech engine guarantees this, not Legenda.
type Transcript struct {
	Text string `json:"text"`
	// Language is the detected source language, carried as metadata.
	Language string `json:"language,omitempty"`
	Segments []Segment `json:"segments"`
}

// Normalize trims the full text and replaces a nil segment list with an
// empty one so JSON responses always carry an array.
func (t *Transcript) Normalize() {
	if t == nil {
		return
	}
	t.Text = strings.TrimSpace(t.Text)
	if t.Segments == nil {
		t.Segments = []Segment{}
	}
}
