package ensemble

import (
	"plant-doctor/internal/domain/entity"
	"plant-doctor/internal/domain/knowledge"
)

// WeightCalculator оценивает надёжность каждого источника.
// Методы чистые: результат зависит только от аргументов и справочника.
type WeightCalculator struct {
	kb *knowledge.Base
	p  WeightParams
}

// NewWeightCalculator создаёт калькулятор весов.
func NewWeightCalculator(kb *knowledge.Base, p WeightParams) *WeightCalculator {
	return &WeightCalculator{kb: kb, p: p}
}

// ClassifierWeight поощряет уверенность и чёткий разрыв top1-top2,
// штрафует плохой снимок и визуально сложные классы.
func (c *WeightCalculator) ClassifierWeight(pred *entity.ClassifierPrediction, imageQuality float64) float64 {
	separation := min(pred.Gap()*c.p.SeparationScale, c.p.SeparationCap)
	quality := c.p.QualityFloor + (1-c.p.QualityFloor)*imageQuality
	complexity := 1 - c.kb.Difficulty(pred.Label)*c.p.ClassifierPenalty

	w := (pred.Confidence*c.p.ConfidenceScale + separation) * quality * complexity
	return clamp(w, 0, 1)
}

// LanguageModelWeight: вес ответа языковой модели. На сложных классах
// модель получает прибавку, при расхождении с очень уверенным
// классификатором: штраф. classifier может быть nil.
func (c *WeightCalculator) LanguageModelWeight(pred *entity.LanguageModelPrediction, classifier *entity.ClassifierPrediction) float64 {
	if pred.IsUncertain {
		return c.p.LanguageModelFloor
	}

	base := c.p.LanguageModelBase + pred.ReasoningQuality*c.p.ReasoningBonus
	complexity := c.p.ComplexityFloor + c.kb.Difficulty(pred.Label)*c.p.ComplexityBonus

	penalty := 0.0
	if classifier != nil && classifier.Confidence > c.p.DisagreeConfidence && classifier.Label != pred.Label {
		penalty = c.p.DisagreePenalty
	}

	return clamp(base*complexity-penalty, c.p.LanguageModelFloor, c.p.LanguageModelCeiling)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
