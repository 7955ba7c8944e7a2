package container

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"plant-doctor/config"
	app "plant-doctor/internal/application"
	"plant-doctor/internal/domain/augment"
	"plant-doctor/internal/domain/consistency"
	"plant-doctor/internal/domain/ensemble"
	"plant-doctor/internal/domain/knowledge"
	"plant-doctor/internal/domain/port"
	"plant-doctor/internal/infrastructure/llm"
	"plant-doctor/internal/infrastructure/onnx"
	"plant-doctor/internal/infrastructure/vision"
)

type Container struct {
	Knowledge        *knowledge.Base
	UserService      *app.UserService
	DiagnosisService *app.DiagnosisService

	closers []func()
}

// New собирает сервисы. model: клиент языковой модели, может быть nil.
// Классификатор, который не удалось загрузить, не мешает работе
// через языковую модель.
func New(cfg *config.Config, userRepo port.UserRepository, model llm.VisionModel, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kb, err := loadKnowledge(cfg)
	if err != nil {
		return nil, err
	}

	tieBreak, err := ensemble.ParseTieBreak(cfg.TieBreak)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	engineParams := ensemble.DefaultParams()
	engineParams.TieBreak = tieBreak

	c := &Container{Knowledge: kb}
	deps := app.DiagnosisDeps{
		Knowledge: kb,
		Validator: consistency.New(kb, consistency.DefaultParams()),
		Engine:    ensemble.New(kb, engineParams),
		Logger:    logger,
	}
	opts := app.DiagnosisOptions{
		DetectionThreshold: cfg.DetectionThreshold,
		Augment:            cfg.UseTTA,
		Extended:           cfg.TTAExtended,
		Enhance:            cfg.Enhance,
		AnalyzerTimeout:    cfg.AnalyzerTimeout,
	}

	var enhancer port.Enhancer
	if vision.Enabled() {
		detector := vision.NewGoCVDetector()
		deps.Quality = detector
		deps.Lesions = detector
		enhancer = detector
	} else if opts.Enhance {
		logger.Warn("ENHANCE is set but the binary is built without gocv, enhancement disabled")
		opts.Enhance = false
	}

	classifier, err := onnx.NewClassifier(onnx.Config{
		ModelPath:    cfg.ModelPath,
		MetadataPath: cfg.ModelMetadataPath,
		LibraryPath:  cfg.OnnxRuntimeLib,
		Sessions:     cfg.OnnxSessions,
	})
	if err != nil {
		logger.Warn("classifier is unavailable", "model", cfg.ModelPath, "error", err)
	} else {
		c.closers = append(c.closers, classifier.Close)
		warnUnknownLabels(logger, kb, classifier.Labels())
		deps.Pipeline = augment.New(classifier, enhancer, cfg.TTAWorkers)
	}

	if model != nil {
		deps.Analyzer = llm.NewAnalyzer(model, kb)
	}

	if deps.Pipeline == nil && deps.Analyzer == nil {
		c.Close()
		return nil, errors.New("no diagnosis source: classifier failed to load and no language model is configured")
	}

	c.UserService = app.NewUserService(userRepo)
	c.DiagnosisService, err = app.NewDiagnosisService(c.UserService, deps, opts)
	if err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Close освобождает сессии классификатора.
func (c *Container) Close() {
	for _, closeFn := range slices.Backward(c.closers) {
		closeFn()
	}
	c.closers = nil
}

func loadKnowledge(cfg *config.Config) (*knowledge.Base, error) {
	if cfg.KnowledgeBasePath == "" {
		return knowledge.Default(), nil
	}
	kb, err := knowledge.LoadFile(cfg.KnowledgeBasePath)
	if err != nil {
		return nil, fmt.Errorf("knowledge base: %w", err)
	}
	return kb, nil
}

// Метки модели вне справочника получат нейтральный профиль.
func warnUnknownLabels(logger *slog.Logger, kb *knowledge.Base, labels []string) {
	for _, l := range labels {
		if _, ok := kb.Resolve(l); !ok {
			logger.Warn("classifier label is missing from the knowledge base", "label", l)
		}
	}
}
