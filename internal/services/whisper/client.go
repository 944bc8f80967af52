package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"legenda/internal/logging"
	"legenda/internal/procexec"
	"legenda/internal/services"
	"legenda/internal/transcript"
)

// Config captures runtime settings for whisper invocations.
type Config struct {
	// Binary is the primary speech-to-text executable.
	Binary string
	// FallbackBinary is tried when Binary cannot be spawned.
	FallbackBinary string
	// Model is the whisper model identifier (e.g. "base", "large-v3").
	Model string
	// Language is the default transcription language; empty means auto-detect.
	Language string
	// Timeout is the wall-clock budget for one transcription call.
	Timeout time.Duration
}

// Guidance is the optional context bundle steering a transcription. Every
// field is optional; an empty Guidance is equivalent to none.
type Guidance struct {
	Prompt     string
	Vocabulary []string
	Topic      string
	Speaker    string
	// Language overrides the configured default for this request.
	Language string
}

// Client drives the speech-to-text binary and parses its JSON output.
type Client struct {
	cfg    Config
	runner *procexec.Runner
	logger *slog.Logger
}

// NewClient constructs a whisper client using the supplied configuration.
func NewClient(cfg Config, runner *procexec.Runner, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		runner: runner,
		logger: logging.WithComponent(logger, "whisper"),
	}
}

// Transcribe runs the speech engine against inputPath, writing intermediate
// output into outputDir, and returns the parsed transcript. The caller owns
// outputDir and is expected to remove it when done.
func (c *Client) Transcribe(ctx context.Context, inputPath, outputDir string, guidance *Guidance) (*transcript.Transcript, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "whisper", "validate input", inputPath, err)
	}
	if info.Size() == 0 {
		return nil, services.Wrap(services.ErrValidation, "whisper", "validate input",
			fmt.Sprintf("%s is empty", inputPath), nil)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "whisper", "ensure output dir", outputDir, err)
	}

	args := c.buildArgs(inputPath, outputDir, guidance)
	jsonPath := jsonArtifactPath(inputPath, outputDir)

	c.logger.Info("transcription started",
		logging.String("input", inputPath),
		logging.String("model", c.cfg.Model))

	result, err := c.runner.Run(ctx, procexec.Invocation{
		Primary:      c.cfg.Binary,
		Fallback:     c.cfg.FallbackBinary,
		Args:         args,
		Timeout:      c.cfg.Timeout,
		ArtifactPath: jsonPath,
	})
	if err != nil {
		return nil, err
	}

	parsed, err := parseArtifact(jsonPath)
	if err != nil {
		return nil, err
	}

	c.logger.Info("transcription finished",
		logging.String("binary", result.Binary),
		logging.Int("segments", len(parsed.Segments)),
		logging.String("language", parsed.Language))
	return parsed, nil
}

// buildArgs assembles the whisper command line. Language precedence:
// per-request guidance over the configured default; empty means auto-detect.
func (c *Client) buildArgs(inputPath, outputDir string, guidance *Guidance) []string {
	args := []string{
		inputPath,
		"--output_format", "json",
		"--output_dir", outputDir,
		"--model", c.cfg.Model,
	}

	language := c.cfg.Language
	if guidance != nil && strings.TrimSpace(guidance.Language) != "" {
		language = strings.TrimSpace(guidance.Language)
	}
	if language != "" {
		args = append(args, "--language", language)
	}

	if prompt := foldGuidance(guidance); prompt != "" {
		args = append(args, "--initial_prompt", prompt)
	}
	return args
}

// foldGuidance merges every guidance field into the single prompt channel the
// engine exposes: topic and speaker hints first, then the base prompt, then
// the vocabulary list.
func foldGuidance(g *Guidance) string {
	if g == nil {
		return ""
	}
	var parts []string
	if topic := strings.TrimSpace(g.Topic); topic != "" {
		parts = append(parts, fmt.Sprintf("Tópico: %s.", topic))
	}
	if speaker := strings.TrimSpace(g.Speaker); speaker != "" {
		parts = append(parts, fmt.Sprintf("Locutor: %s.", speaker))
	}
	if prompt := strings.TrimSpace(g.Prompt); prompt != "" {
		parts = append(parts, prompt)
	}
	if vocab := cleanVocabulary(g.Vocabulary); len(vocab) > 0 {
		parts = append(parts, fmt.Sprintf("Vocabulário importante: %s.", strings.Join(vocab, ", ")))
	}
	return strings.Join(parts, " ")
}

func cleanVocabulary(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if trimmed := strings.TrimSpace(term); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// jsonArtifactPath derives the JSON output file the engine writes for a
// given input: <output_dir>/<input base without extension>.json.
func jsonArtifactPath(inputPath, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(outputDir, base+".json")
}

// enginePayload is the schema of the whisper JSON artifact. Unknown fields
// are ignored; a payload that fails to decode at all is a parse error, never
// a silently empty transcript.
type enginePayload struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		ID    int     `json:"id"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func parseArtifact(jsonPath string) (*transcript.Transcript, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "whisper", "read artifact", jsonPath, err)
	}
	var payload enginePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, services.Wrap(services.ErrParse, "whisper", "decode artifact", jsonPath, err)
	}

	result := &transcript.Transcript{
		Text:     strings.TrimSpace(payload.Text),
		Language: strings.TrimSpace(payload.Language),
	}
	for _, seg := range payload.Segments {
		result.Segments = append(result.Segments, transcript.Segment{
			ID:    seg.ID,
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	result.Normalize()
	return result, nil
}
