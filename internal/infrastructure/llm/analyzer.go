package llm

import (
	"context"
	"fmt"
	"time"

	"plant-doctor/internal/domain/entity"
	"plant-doctor/internal/domain/knowledge"
	"plant-doctor/internal/domain/port"
)

// VisionModel: клиент визуальной языковой модели. Реализуется хостом.
type VisionModel interface {
	Infer(ctx context.Context, imageData []byte, prompt string) (string, error)
}

// VisionModelFunc позволяет использовать функцию как VisionModel.
type VisionModelFunc func(ctx context.Context, imageData []byte, prompt string) (string, error)

func (f VisionModelFunc) Infer(ctx context.Context, imageData []byte, prompt string) (string, error) {
	return f(ctx, imageData, prompt)
}

// Analyzer реализует port.PlantAnalyzer поверх VisionModel.
type Analyzer struct {
	model  VisionModel
	kb     *knowledge.Base
	prompt string
	now    func() time.Time
}

// NewAnalyzer готовит промпт один раз: справочник после загрузки не меняется.
func NewAnalyzer(model VisionModel, kb *knowledge.Base) *Analyzer {
	return &Analyzer{
		model:  model,
		kb:     kb,
		prompt: BuildPrompt(kb),
		now:    time.Now,
	}
}

// Prompt возвращает текст запроса к модели.
func (a *Analyzer) Prompt() string {
	return a.prompt
}

// Analyze отправляет снимок модели и разбирает ответ.
func (a *Analyzer) Analyze(ctx context.Context, imageData []byte) (*entity.LanguageModelPrediction, error) {
	start := a.now()
	raw, err := a.model.Infer(ctx, imageData, a.prompt)
	if err != nil {
		return nil, fmt.Errorf("vision model: %w", err)
	}

	pred := ParseAnswer(raw, a.kb)
	pred.LatencyMs = float64(a.now().Sub(start).Microseconds()) / 1000
	return &pred, nil
}

var _ port.PlantAnalyzer = (*Analyzer)(nil)
