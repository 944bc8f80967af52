package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"legenda/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigPathCommand(ctx))

	return configCmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scratch dir:      %s\n", cfg.Paths.ScratchDir)
			fmt.Fprintf(out, "Log dir:          %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "API bind:         %s\n", cfg.Paths.APIBind)
			fmt.Fprintf(out, "Journal:          %s\n", cfg.Paths.JournalPath)
			fmt.Fprintf(out, "Speech engine:    %s (fallback %s, model %s)\n",
				cfg.Whisper.Binary, orNone(cfg.Whisper.FallbackBinary), cfg.Whisper.Model)
			fmt.Fprintf(out, "Encoder:          %s (preset %s, crf %d)\n",
				cfg.FFmpeg.Binary, cfg.FFmpeg.Preset, cfg.FFmpeg.CRF)
			fmt.Fprintf(out, "Upload limit:     %d bytes\n", cfg.Upload.MaxBytes)
			fmt.Fprintf(out, "Translation:      %s via %s\n", cfg.Translation.Model, cfg.Translation.BaseURL)
			fmt.Fprintf(out, "Translation key:  %s\n", maskKey(cfg.Translation.APIKey))
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}
			if err := config.WriteSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}

func newConfigPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the resolved configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ctx.cfgPath)
			return nil
		},
	}
}

func orNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "none"
	}
	return value
}

func maskKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "not set"
	}
	if len(key) <= 8 {
		return "********"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
