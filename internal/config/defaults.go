package config

const (
	defaultScratchDir             = "~/.local/share/legenda/scratch"
	defaultLogDir                 = "~/.local/share/legenda/logs"
	defaultLockPath               = "~/.local/share/legenda/legendad.lock"
	defaultJournalPath            = "~/.local/share/legenda/journal.db"
	defaultAPIBind                = "127.0.0.1:3333"
	defaultWhisperBinary          = "whisper-ctranslate2"
	defaultWhisperFallbackBinary  = "whisper"
	defaultWhisperModel           = "base"
	defaultWhisperTimeoutSeconds  = 300
	defaultUploadMaxBytes         = 50 * 1024 * 1024
	defaultFFmpegBinary           = "ffmpeg"
	defaultFFmpegPreset           = "medium"
	defaultFFmpegCRF              = 23
	defaultFFmpegTimeoutSeconds   = 900
	defaultTranslationBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultTranslationModel       = "meta-llama/llama-3.1-8b-instruct"
	defaultTranslationTimeoutSecs = 60
	defaultTranslationPacingMs    = 100
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir:  defaultScratchDir,
			LogDir:      defaultLogDir,
			APIBind:     defaultAPIBind,
			LockPath:    defaultLockPath,
			JournalPath: defaultJournalPath,
		},
		Whisper: Whisper{
			Binary:         defaultWhisperBinary,
			FallbackBinary: defaultWhisperFallbackBinary,
			Model:          defaultWhisperModel,
			TimeoutSeconds: defaultWhisperTimeoutSeconds,
		},
		Upload: Upload{
			MaxBytes: defaultUploadMaxBytes,
		},
		FFmpeg: FFmpeg{
			Binary:         defaultFFmpegBinary,
			Preset:         defaultFFmpegPreset,
			CRF:            defaultFFmpegCRF,
			TimeoutSeconds: defaultFFmpegTimeoutSeconds,
		},
		Translation: Translation{
			BaseURL:        defaultTranslationBaseURL,
			Model:          defaultTranslationModel,
			TimeoutSeconds: defaultTranslationTimeoutSecs,
			PacingMillis:   defaultTranslationPacingMs,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
