package caption

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"legenda/internal/language"
	"legenda/internal/logging"
	"legenda/internal/procexec"
	"legenda/internal/services"
)

// Config captures runtime settings for encoder invocations.
type Config struct {
	// Binary is the ffmpeg-compatible encoder executable.
	Binary string
	// Preset is the encoder speed/quality preset for burn-in re-encodes.
	Preset string
	// CRF is the constant-rate-factor quality setting for burn-in re-encodes.
	CRF int
	// Timeout bounds one encode invocation.
	Timeout time.Duration
}

// Captioner drives the encoder binary to attach subtitles to video, either
// burned into the pixels or muxed as a selectable text stream.
type Captioner struct {
	cfg       Config
	runner    *procexec.Runner
	outputDir string
	logger    *slog.Logger
}

// NewCaptioner constructs a Captioner writing output artifacts into outputDir.
func NewCaptioner(cfg Config, runner *procexec.Runner, outputDir string, logger *slog.Logger) *Captioner {
	return &Captioner{
		cfg:       cfg,
		runner:    runner,
		outputDir: outputDir,
		logger:    logging.WithComponent(logger, "caption"),
	}
}

// Preflight verifies the encoder binary is reachable by running its version
// command. Called before any file is touched so a missing encoder fails fast.
func (c *Captioner) Preflight(ctx context.Context) error {
	_, err := c.runner.Run(ctx, procexec.Invocation{
		Primary: c.cfg.Binary,
		Args:    []string{"-version"},
		Timeout: 15 * time.Second,
	})
	if err != nil {
		return services.Wrap(services.ErrEncoderUnavailable, "caption", "preflight",
			fmt.Sprintf("%s is not available", c.cfg.Binary), err)
	}
	return nil
}

// BurnIn re-encodes the video with subtitles rendered into the pixels using
// the given style. On success the input video and subtitle file are removed;
// the returned output path is the caller's to delete after streaming.
func (c *Captioner) BurnIn(ctx context.Context, videoPath, subtitlePath string, style Style) (string, error) {
	if err := c.Preflight(ctx); err != nil {
		return "", err
	}
	if err := requireInputs(videoPath, subtitlePath); err != nil {
		return "", err
	}

	forceStyle, err := style.forceStyle()
	if err != nil {
		return "", err
	}

	outputPath := c.outputPath(videoPath)
	args := []string{
		"-i", videoPath,
		"-vf", fmt.Sprintf("subtitles=%s:force_style='%s'", subtitlePath, forceStyle),
		"-c:a", "copy",
		"-c:v", "libx264",
		"-preset", c.cfg.Preset,
		"-crf", fmt.Sprintf("%d", c.cfg.CRF),
		"-y", outputPath,
	}

	c.logger.Info("burn-in started",
		logging.String("video", videoPath),
		logging.String("subtitles", subtitlePath))
	return c.encode(ctx, args, videoPath, subtitlePath, outputPath)
}

// SoftMux copies all streams and attaches the subtitle file as a selectable
// text stream tagged with the target language. Much faster than burn-in since
// nothing is re-encoded.
func (c *Captioner) SoftMux(ctx context.Context, videoPath, subtitlePath, languageCode string) (string, error) {
	if err := c.Preflight(ctx); err != nil {
		return "", err
	}
	if err := requireInputs(videoPath, subtitlePath); err != nil {
		return "", err
	}

	outputPath := c.outputPath(videoPath)
	args := []string{
		"-i", videoPath,
		"-i", subtitlePath,
		"-c:v", "copy",
		"-c:a", "copy",
		"-c:s", "mov_text",
		"-metadata:s:s:0", fmt.Sprintf("language=%s", language.ToISO3(languageCode)),
		"-y", outputPath,
	}

	c.logger.Info("soft-mux started",
		logging.String("video", videoPath),
		logging.String("subtitles", subtitlePath))
	return c.encode(ctx, args, videoPath, subtitlePath, outputPath)
}

// encode runs the encoder, confirms a non-empty output, and applies the
// cleanup discipline: inputs removed on success, partial output removed on
// failure.
func (c *Captioner) encode(ctx context.Context, args []string, videoPath, subtitlePath, outputPath string) (string, error) {
	result, err := c.runner.Run(ctx, procexec.Invocation{
		Primary:      c.cfg.Binary,
		Args:         args,
		Timeout:      c.cfg.Timeout,
		ArtifactPath: outputPath,
	})
	if err != nil {
		c.removeQuietly(outputPath)
		return "", err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return "", services.Wrap(services.ErrMissingArtifact, "caption", "verify output", outputPath, err)
	}
	if info.Size() == 0 {
		c.removeQuietly(outputPath)
		return "", services.Wrap(services.ErrMissingArtifact, "caption", "verify output",
			fmt.Sprintf("%s exited 0 but %s is empty", result.Binary, outputPath), nil)
	}

	c.removeQuietly(videoPath)
	c.removeQuietly(subtitlePath)

	c.logger.Info("captioning finished",
		logging.String("output", outputPath),
		logging.Int64("bytes", info.Size()))
	return outputPath, nil
}

func requireInputs(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return services.Wrap(services.ErrValidation, "caption", "verify input",
				fmt.Sprintf("input %s does not exist", path), err)
		}
	}
	return nil
}

// outputPath builds a collision-free output file in the configured directory.
func (c *Captioner) outputPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	if ext == "" {
		ext = ".mp4"
	}
	return filepath.Join(c.outputDir, fmt.Sprintf("captioned-%s%s", uuid.NewString(), ext))
}

func (c *Captioner) removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("cleanup failed", logging.String("path", path), logging.Error(err))
	}
}
