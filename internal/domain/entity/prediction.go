package entity

import "math"

// NoFindingLabel: метка «болезней и вредителей не найдено».
const NoFindingLabel = "No disease or pest found"

// ScoredLabel: пара (метка, вероятность).
type ScoredLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassifierPrediction: результат классификатора изображений.
type ClassifierPrediction struct {
	Label      string        `json:"label"`
	Confidence float64       `json:"confidence"`
	TopK       []ScoredLabel `json:"top_k"` // по убыванию, минимум один элемент
	LatencyMs  float64       `json:"latency_ms"`
}

// Gap возвращает разницу между первым и вторым местом (1.0, если второго нет).
func (p *ClassifierPrediction) Gap() float64 {
	if len(p.TopK) < 2 {
		return 1.0
	}
	return p.TopK[0].Score - p.TopK[1].Score
}

// Validate проверяет диапазоны до того, как прогноз попадёт в расчёт весов.
func (p *ClassifierPrediction) Validate() error {
	if p.Label == "" {
		return invalid("classifier.label", "must not be empty")
	}
	if !inUnit(p.Confidence) {
		return invalid("classifier.confidence", "%v is outside [0,1]", p.Confidence)
	}
	if len(p.TopK) == 0 {
		return invalid("classifier.top_k", "must contain at least one entry")
	}
	for i, s := range p.TopK {
		if s.Label == "" {
			return invalid("classifier.top_k", "entry %d has an empty label", i)
		}
		if !inUnit(s.Score) {
			return invalid("classifier.top_k", "entry %d score %v is outside [0,1]", i, s.Score)
		}
		if i > 0 && s.Score > p.TopK[i-1].Score {
			return invalid("classifier.top_k", "entry %d is not sorted in descending order", i)
		}
	}
	if p.LatencyMs < 0 || math.IsNaN(p.LatencyMs) {
		return invalid("classifier.latency_ms", "must be non-negative")
	}
	return nil
}

// LanguageModelPrediction: ответ визуальной языковой модели.
type LanguageModelPrediction struct {
	Label            string  `json:"label"`
	RawText          string  `json:"raw_text"`
	IsUncertain      bool    `json:"is_uncertain"` // модель ответила «ничего не найдено» или не уверена
	ReasoningQuality float64 `json:"reasoning_quality"`
	LatencyMs        float64 `json:"latency_ms"`
}

// Validate проверяет диапазоны полей ответа модели.
func (p *LanguageModelPrediction) Validate() error {
	if p.Label == "" && !p.IsUncertain {
		return invalid("language_model.label", "must not be empty for a committed answer")
	}
	if !inUnit(p.ReasoningQuality) {
		return invalid("language_model.reasoning_quality", "%v is outside [0,1]", p.ReasoningQuality)
	}
	if p.LatencyMs < 0 || math.IsNaN(p.LatencyMs) {
		return invalid("language_model.latency_ms", "must be non-negative")
	}
	return nil
}

// ValidateImageQuality проверяет оценку качества снимка.
func ValidateImageQuality(q float64) error {
	if !inUnit(q) {
		return invalid("image_quality", "%v is outside [0,1]", q)
	}
	return nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
