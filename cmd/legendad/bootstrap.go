package main

import (
	"fmt"

	"log/slog"

	"legenda/internal/caption"
	"legenda/internal/config"
	"legenda/internal/jobs"
	"legenda/internal/procexec"
	"legenda/internal/server"
	"legenda/internal/services/llm"
	"legenda/internal/services/whisper"
	"legenda/internal/transcribe"
	"legenda/internal/translate"
	"legenda/internal/upload"
)

// buildServer wires the pipeline collaborators from configuration.
func buildServer(cfg *config.Config, journal *jobs.Store, logger *slog.Logger) (*server.Server, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	runner := procexec.NewRunner(logger)
	materializer := upload.NewMaterializer(cfg.Paths.ScratchDir, cfg.Upload.MaxBytes, logger)

	whisperClient := whisper.NewClient(whisper.Config{
		Binary:         cfg.Whisper.Binary,
		FallbackBinary: cfg.Whisper.FallbackBinary,
		Model:          cfg.Whisper.Model,
		Language:       cfg.Whisper.Language,
		Timeout:        cfg.WhisperTimeout(),
	}, runner, logger)
	transcriber := transcribe.NewOrchestrator(materializer, whisperClient, cfg.Paths.ScratchDir, logger)

	captioner := caption.NewCaptioner(caption.Config{
		Binary:  cfg.FFmpeg.Binary,
		Preset:  cfg.FFmpeg.Preset,
		CRF:     cfg.FFmpeg.CRF,
		Timeout: cfg.FFmpegTimeout(),
	}, runner, cfg.Paths.ScratchDir, logger)

	llmClient := llm.NewClient(llm.Config{
		APIKey:  cfg.Translation.APIKey,
		BaseURL: cfg.Translation.BaseURL,
		Model:   cfg.Translation.Model,
		Timeout: cfg.TranslationTimeout(),
	})
	translator := translate.NewTranslator(llmClient, cfg.TranslationTimeout(), cfg.TranslationPacing(), logger)

	return server.New(server.Deps{
		Config:       cfg,
		Logger:       logger,
		Materializer: materializer,
		Transcriber:  transcriber,
		Captioner:    captioner,
		Translator:   translator,
		Journal:      journal,
	})
}
