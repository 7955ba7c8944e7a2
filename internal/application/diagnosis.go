package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"sync"
	"time"

	_ "golang.org/x/image/webp"

	"plant-doctor/internal/domain/augment"
	"plant-doctor/internal/domain/consistency"
	"plant-doctor/internal/domain/entity"
	"plant-doctor/internal/domain/ensemble"
	"plant-doctor/internal/domain/knowledge"
	"plant-doctor/internal/domain/port"
)

// ErrNoPrediction: не отработал ни классификатор, ни языковая модель.
var ErrNoPrediction = errors.New("no prediction source succeeded")

// DiagnosisOptions: настройки прогона, общие для всех запросов.
type DiagnosisOptions struct {
	DetectionThreshold float64
	Augment            bool
	Extended           bool // повороты для всех, независимо от настройки пользователя
	Enhance            bool
	AnalyzerTimeout    time.Duration // 0: без отдельного дедлайна
}

// DiagnosisDeps: компоненты диагностики. Pipeline или Analyzer может
// отсутствовать, но не оба. Quality и Lesions необязательны.
type DiagnosisDeps struct {
	Knowledge *knowledge.Base
	Pipeline  *augment.Pipeline
	Validator *consistency.Validator
	Engine    *ensemble.Engine
	Analyzer  port.PlantAnalyzer
	Quality   port.QualityAssessor
	Lesions   port.LesionDetector
	Logger    *slog.Logger
}

// Diagnosis: итог диагностики одного снимка.
type Diagnosis struct {
	Decision      *entity.EnsembleDecision        `json:"decision"`
	Level         entity.ConfidenceLevel          `json:"confidence_level"`
	DisplayName   string                          `json:"display_name"`
	Category      entity.Category                 `json:"category"`
	ImageQuality  float64                         `json:"image_quality"`
	Classifier    *consistency.Result             `json:"classifier,omitempty"`
	LanguageModel *entity.LanguageModelPrediction `json:"language_model,omitempty"`
	Lesions       *entity.LesionReport            `json:"lesions,omitempty"`
	Highlighted   []byte                          `json:"-"`
}

// DiagnosisService объединяет классификатор и языковую модель.
type DiagnosisService struct {
	users *UserService
	deps  DiagnosisDeps
	opts  DiagnosisOptions
	log   *slog.Logger
}

// NewDiagnosisService создаёт сервис диагностики.
func NewDiagnosisService(users *UserService, deps DiagnosisDeps, opts DiagnosisOptions) (*DiagnosisService, error) {
	if deps.Pipeline == nil && deps.Analyzer == nil {
		return nil, errors.New("neither classifier nor analyzer is configured")
	}
	if deps.Pipeline != nil && deps.Validator == nil {
		return nil, errors.New("classifier requires a validator")
	}
	if deps.Engine == nil || deps.Knowledge == nil {
		return nil, errors.New("engine and knowledge base are required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DiagnosisService{
		users: users,
		deps:  deps,
		opts:  opts,
		log:   logger.With("component", "diagnosis"),
	}, nil
}

// DiagnoseForUser диагностирует снимок пользователя, уже занятого через
// UserService.StartProcessing, и по завершении возвращает его в меню.
func (s *DiagnosisService) DiagnoseForUser(ctx context.Context, user *entity.User, photo []byte) (*Diagnosis, error) {
	defer func() {
		// Возвращаем в меню даже при отменённом ctx запроса.
		if err := s.users.FinishProcessing(context.WithoutCancel(ctx), user.ID); err != nil {
			s.log.Warn("failed to reset user state", "user_id", user.ID, "error", err)
		}
	}()

	return s.Diagnose(ctx, photo, user.Extended)
}

// Diagnose прогоняет снимок через оба источника параллельно. Упавший
// источник не прерывает другой: ансамбль решает по тому, что осталось.
func (s *DiagnosisService) Diagnose(ctx context.Context, photo []byte, extended bool) (*Diagnosis, error) {
	img, _, err := image.Decode(bytes.NewReader(photo))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var (
		classified *consistency.Result
		classErr   error
		lmPred     *entity.LanguageModelPrediction
		lmErr      error
		quality    = 1.0
		lesions    *entity.LesionReport
	)

	var wg sync.WaitGroup
	if s.deps.Pipeline != nil {
		wg.Go(func() {
			classified, classErr = s.classify(ctx, img, extended)
		})
	}
	if s.deps.Analyzer != nil {
		wg.Go(func() {
			lmPred, lmErr = s.analyze(ctx, photo)
		})
	}
	if s.deps.Quality != nil {
		wg.Go(func() {
			quality = s.assess(ctx, photo)
		})
	}
	if s.deps.Lesions != nil {
		wg.Go(func() {
			lesions = s.detectLesions(ctx, photo)
		})
	}
	wg.Wait()

	if classErr != nil {
		s.log.Warn("classifier failed, continuing without it", "error", classErr)
	}
	if lmErr != nil {
		s.log.Warn("language model failed, continuing without it", "error", lmErr)
	}

	var cPred *entity.ClassifierPrediction
	if classified != nil {
		cPred = &classified.Prediction
	}
	if cPred == nil && lmPred == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrNoPrediction, errors.Join(classErr, lmErr))
	}

	decision, err := s.deps.Engine.Decide(cPred, lmPred, ensemble.WithImageQuality(quality))
	if err != nil {
		return nil, fmt.Errorf("ensemble: %w", err)
	}

	profile := s.deps.Knowledge.Profile(decision.Label)
	d := &Diagnosis{
		Decision:      decision,
		Level:         entity.LevelOf(decision.Confidence),
		DisplayName:   profile.DisplayName,
		Category:      profile.Category,
		ImageQuality:  quality,
		Classifier:    classified,
		LanguageModel: lmPred,
		Lesions:       lesions,
	}
	if decision.IsNoFinding() {
		d.DisplayName = "Болезней и вредителей не найдено"
		d.Category = entity.CategoryHealthy
	}

	if lesions.HasLesions() && !decision.IsNoFinding() {
		highlighted, err := s.deps.Lesions.Highlight(photo, lesions)
		if err != nil {
			s.log.Warn("failed to highlight lesions", "error", err)
		} else {
			d.Highlighted = highlighted
		}
	}

	s.log.Info("diagnosis finished",
		"label", decision.Label,
		"confidence", decision.Confidence,
		"source", decision.Source,
		"image_quality", quality,
	)
	return d, nil
}

// classify запускает конвейер ракурсов. Если прогон с аугментацией
// не удался, повторяет его один раз по исходному кадру.
func (s *DiagnosisService) classify(ctx context.Context, img image.Image, extended bool) (*consistency.Result, error) {
	opts := augment.Options{
		Enhance:  s.opts.Enhance,
		Augment:  s.opts.Augment,
		Extended: extended || s.opts.Extended,
	}

	start := time.Now()
	probs, err := s.deps.Pipeline.Infer(ctx, img, opts)
	if err != nil && opts.Augment && ctx.Err() == nil {
		s.log.Warn("augmented inference failed, retrying on the original frame", "error", err)
		opts.Augment = false
		start = time.Now()
		probs, err = s.deps.Pipeline.Infer(ctx, img, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	latency := float64(time.Since(start).Microseconds()) / 1000

	dist, err := entity.NewDistribution(s.deps.Pipeline.Labels(), probs)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}

	res, err := s.deps.Validator.Evaluate(dist, s.opts.DetectionThreshold, latency)
	if err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}
	for _, w := range res.Report.Warnings {
		s.log.Debug("classifier consistency warning", "type", w.Type, "level", w.Level, "message", w.Message)
	}
	return res, nil
}

func (s *DiagnosisService) analyze(ctx context.Context, photo []byte) (*entity.LanguageModelPrediction, error) {
	if s.opts.AnalyzerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.AnalyzerTimeout)
		defer cancel()
	}
	return s.deps.Analyzer.Analyze(ctx, photo)
}

// assess не роняет диагностику: без оценки качество считается идеальным.
func (s *DiagnosisService) assess(ctx context.Context, photo []byte) float64 {
	q, err := s.deps.Quality.Assess(ctx, photo)
	if err != nil {
		s.log.Warn("image quality is unavailable, assuming 1.0", "error", err)
		return 1.0
	}
	if entity.ValidateImageQuality(q) != nil {
		s.log.Warn("image quality is out of range, assuming 1.0", "quality", q)
		return 1.0
	}
	return q
}

func (s *DiagnosisService) detectLesions(ctx context.Context, photo []byte) *entity.LesionReport {
	report, err := s.deps.Lesions.Detect(ctx, photo)
	if err != nil {
		s.log.Warn("lesion detection failed", "error", err)
		return nil
	}
	return report
}
