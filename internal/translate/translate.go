package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"legenda/internal/language"
	"legenda/internal/logging"
	"legenda/internal/services"
	"legenda/internal/transcript"
)

// completer is the remote model call the translator depends on.
type completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// SegmentTranslation pairs one segment's original timing and text with its
// translation.
type SegmentTranslation struct {
	ID             int     `json:"id"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	OriginalText   string  `json:"originalText"`
	TranslatedText string  `json:"translatedText"`
}

// Result is a completed translation batch.
type Result struct {
	OriginalText   string               `json:"originalText"`
	TranslatedText string               `json:"translatedText"`
	SourceLanguage string               `json:"sourceLanguage"`
	TargetLanguage string               `json:"targetLanguage"`
	Segments       []SegmentTranslation `json:"segments"`
}

// Translator drives the remote model to translate a transcript: the full
// text first, then each segment independently with inter-call pacing.
type Translator struct {
	client      completer
	callTimeout time.Duration
	pacing      time.Duration
	logger      *slog.Logger

	// sleep is swappable in tests.
	sleep func(context.Context, time.Duration) error
}

// NewTranslator constructs a Translator. callTimeout bounds each remote
// call; pacing is the fixed delay between consecutive segment calls.
func NewTranslator(client completer, callTimeout, pacing time.Duration, logger *slog.Logger) *Translator {
	return &Translator{
		client:      client,
		callTimeout: callTimeout,
		pacing:      pacing,
		logger:      logging.WithComponent(logger, "translate"),
		sleep:       sleepContext,
	}
}

// Translate translates the transcript into targetLanguage. A failed full-text
// translation fails the batch; a failed segment translation falls back to the
// segment's original text and the loop continues.
func (t *Translator) Translate(ctx context.Context, tr *transcript.Transcript, targetLanguage, sourceLanguage string) (*Result, error) {
	if tr == nil || strings.TrimSpace(tr.Text) == "" {
		return nil, services.Wrap(services.ErrValidation, "translate", "validate request", "transcription is required", nil)
	}
	targetLanguage = strings.TrimSpace(targetLanguage)
	if targetLanguage == "" {
		return nil, services.Wrap(services.ErrValidation, "translate", "validate request", "target language is required", nil)
	}
	sourceLanguage = strings.TrimSpace(sourceLanguage)
	if sourceLanguage == "" {
		sourceLanguage = "auto"
	}

	targetName := language.DisplayName(targetLanguage)

	t.logger.Info("translation started",
		logging.String("target", targetLanguage),
		logging.Int("segments", len(tr.Segments)))

	fullText, err := t.translateText(ctx, tr.Text, targetName, sourceLanguage)
	if err != nil {
		return nil, services.Wrap(services.ErrTranslation, "translate", "translate text",
			fmt.Sprintf("full-text translation to %s failed", targetName), err)
	}

	result := &Result{
		OriginalText:   tr.Text,
		TranslatedText: fullText,
		SourceLanguage: sourceLanguage,
		TargetLanguage: targetLanguage,
		Segments:       make([]SegmentTranslation, 0, len(tr.Segments)),
	}

	for i, seg := range tr.Segments {
		if i > 0 && t.pacing > 0 {
			if err := t.sleep(ctx, t.pacing); err != nil {
				return nil, services.Wrap(services.ErrTranslation, "translate", "pace segments", "", err)
			}
		}

		translated, err := t.translateText(ctx, seg.Text, targetName, sourceLanguage)
		if err != nil {
			// One bad segment never aborts the batch; the original text
			// stands in for the translation.
			t.logger.Warn("segment translation failed, keeping original text",
				logging.Int("segment", seg.ID), logging.Error(err))
			translated = seg.Text
		}

		result.Segments = append(result.Segments, SegmentTranslation{
			ID:             seg.ID,
			Start:          seg.Start,
			End:            seg.End,
			OriginalText:   seg.Text,
			TranslatedText: translated,
		})
	}

	t.logger.Info("translation finished",
		logging.String("target", targetLanguage),
		logging.Int("segments", len(result.Segments)))
	return result, nil
}

// translateText issues one bounded remote call for a single text unit.
func (t *Translator) translateText(ctx context.Context, text, targetName, sourceLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if t.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.callTimeout)
		defer cancel()
	}

	system := systemPrompt(targetName, sourceLanguage)
	translated, err := t.client.Complete(ctx, system, text)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(translated), nil
}

func systemPrompt(targetName, sourceLanguage string) string {
	var b strings.Builder
	b.WriteString("You are a professional subtitle translator. Translate the user's text into ")
	b.WriteString(targetName)
	if sourceLanguage != "" && sourceLanguage != "auto" {
		b.WriteString(" from ")
		b.WriteString(language.DisplayName(sourceLanguage))
	}
	b.WriteString(". Preserve meaning and tone. Respond with the translation only, no commentary.")
	return b.String()
}

// SupportedLanguages lists the language codes the service advertises.
func SupportedLanguages() []language.Info {
	return language.Supported()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
