package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"plant-doctor/config"
	telegram "plant-doctor/internal/api"
	"plant-doctor/internal/container"
	"plant-doctor/internal/infrastructure/storage"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		Long: `Run the Telegram bot.

Photos are diagnosed on a pool of DIAGNOSIS_WORKERS workers. The bot stops
on SIGINT or SIGTERM after the started diagnoses finish.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.TelegramToken == "" {
				return errors.New("TELEGRAM_TOKEN is required")
			}

			logger, err := newLogger(cfg, os.Stderr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Создаём хранилище пользователей
			userRepo := storage.NewMemoryUserRepository()

			// Собираем сервисы приложения
			appContainer, err := container.New(cfg, userRepo, nil, logger)
			if err != nil {
				return err
			}
			defer appContainer.Close()

			bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, cfg.DiagnosisWorkers, logger)
			if err != nil {
				return err
			}

			logger.Info("bot is running", "workers", cfg.DiagnosisWorkers, "tta", cfg.UseTTA)
			return bot.Run(ctx)
		},
	}
}
