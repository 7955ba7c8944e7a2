package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"plant-doctor/config"
	telegram "plant-doctor/internal/api"
	"plant-doctor/internal/container"
	"plant-doctor/internal/domain/entity"
	"plant-doctor/internal/infrastructure/llm"
	"plant-doctor/internal/infrastructure/storage"
)

func newDiagnoseCommand() *cobra.Command {
	var (
		imagePath    string
		llmLabel     string
		llmUncertain bool
		extended     bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Diagnose a single leaf photo",
		Long: `Diagnose a single leaf photo and print the decision.

--llm-label supplies a language model answer (free text or JSON) for the
photo, --llm-uncertain stands for a "No disease or pest found" answer.
Without either, only the classifier is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if llmLabel != "" && llmUncertain {
				return errors.New("--llm-label and --llm-uncertain are mutually exclusive")
			}

			photo, err := os.ReadFile(imagePath)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var model llm.VisionModel
			switch {
			case llmUncertain:
				model = staticAnswer(entity.NoFindingLabel)
			case llmLabel != "":
				model = staticAnswer(llmLabel)
			}

			c, err := container.New(cfg, storage.NewMemoryUserRepository(), model, logger)
			if err != nil {
				return err
			}
			defer c.Close()

			d, err := c.DiagnosisService.Diagnose(cmd.Context(), photo, extended)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}
			_, err = fmt.Fprintln(out, telegram.FormatDiagnosis(d))
			return err
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "path to the leaf photo (JPEG, PNG or WebP)")
	cmd.Flags().StringVar(&llmLabel, "llm-label", "", "language model answer for the photo")
	cmd.Flags().BoolVar(&llmUncertain, "llm-uncertain", false, "language model found nothing")
	cmd.Flags().BoolVar(&extended, "extended", false, "add rotated views to test-time augmentation")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full diagnosis as JSON")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func staticAnswer(answer string) llm.VisionModel {
	return llm.VisionModelFunc(func(context.Context, []byte, string) (string, error) {
		return answer, nil
	})
}
