package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	ScratchDir  string `toml:"scratch_dir"`
	LogDir      string `toml:"log_dir"`
	APIBind     string `toml:"api_bind"`
	LockPath    string `toml:"lock_path"`
	JournalPath string `toml:"journal_path"`
}

// Whisper contains configuration for the speech-to-text binary.
type Whisper struct {
	Binary         string `toml:"binary"`
	FallbackBinary string `toml:"fallback_binary"`
	Model          string `toml:"model"`
	// Language is the default transcription language ("" means auto-detect).
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Upload contains limits applied to incoming multipart uploads.
type Upload struct {
	MaxBytes int64 `toml:"max_bytes"`
}

// FFmpeg contains configuration for the video encoder binary.
type FFmpeg struct {
	Binary         string `toml:"binary"`
	Preset         string `toml:"preset"`
	CRF            int    `toml:"crf"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Translation contains settings for the remote translation model.
type Translation struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// PacingMillis is the delay between consecutive segment translation
	// calls, throttling requests against the remote rate limit.
	PacingMillis int `toml:"pacing_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Legenda.
//
// Configuration sections by subsystem:
//   - Paths: scratch/log directories, API bind address, lock and journal paths
//   - Whisper: speech-to-text binary, fallback, model, language, timeout
//   - Upload: per-request upload size ceiling
//   - FFmpeg: encoder binary and quality settings
//   - Translation: remote translation model connection settings
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Whisper     Whisper     `toml:"whisper"`
	Upload      Upload      `toml:"upload"`
	FFmpeg      FFmpeg      `toml:"ffmpeg"`
	Translation Translation `toml:"translation"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/legenda/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. The boolean reports whether a file was found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("legenda.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ScratchDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if dir := filepath.Dir(c.Paths.JournalPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal directory %q: %w", dir, err)
		}
	}
	return nil
}

// WhisperTimeout returns the wall-clock budget for a whisper invocation.
func (c *Config) WhisperTimeout() time.Duration {
	return time.Duration(c.Whisper.TimeoutSeconds) * time.Second
}

// FFmpegTimeout returns the wall-clock budget for an ffmpeg invocation.
func (c *Config) FFmpegTimeout() time.Duration {
	return time.Duration(c.FFmpeg.TimeoutSeconds) * time.Second
}

// TranslationTimeout returns the deadline applied to each remote translation call.
func (c *Config) TranslationTimeout() time.Duration {
	return time.Duration(c.Translation.TimeoutSeconds) * time.Second
}

// TranslationPacing returns the inter-call delay between segment translations.
func (c *Config) TranslationPacing() time.Duration {
	return time.Duration(c.Translation.PacingMillis) * time.Millisecond
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// WriteSample writes the sample configuration file to the given path,
// refusing to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
