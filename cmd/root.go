package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"plant-doctor/config"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plant-doctor",
		Short: "Plant disease and pest diagnosis from leaf photos",
		Long: `plant-doctor combines an image classifier and a vision language model
to diagnose plant diseases and pests from a photo of a leaf.

Configuration is read from the environment and an optional .env file.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newDiagnoseCommand())

	return cmd
}

// newLogger настраивает slog по LOG_LEVEL и LOG_FORMAT и делает его логгером по умолчанию.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}
