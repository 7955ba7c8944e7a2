// Package consistency проверяет топ-3 классификатора до того, как он
// попадёт в ансамбль: конфликт «болезнь/вредитель», неопределённость
// и порог обнаружения.
package consistency

import (
	"fmt"

	"plant-doctor/internal/domain/entity"
	"plant-doctor/internal/domain/knowledge"
)

// DefaultDetectionThreshold: порог, ниже которого метка классификатора
// отбрасывается и результат считается «ничего не найдено».
const DefaultDetectionThreshold = 0.4

// Params: пороги валидатора.
type Params struct {
	HighConflictGap      float64 // конфликт с разрывом меньше: уровень high
	MediumConflictGap    float64 // меньше: medium, иначе предупреждения нет
	UncertainGap         float64
	ConflictUncertainGap float64 // порог неопределённости при конфликте групп
}

// DefaultParams возвращает откалиброванные пороги.
func DefaultParams() Params {
	return Params{
		HighConflictGap:      0.15,
		MediumConflictGap:    0.30,
		UncertainGap:         0.2,
		ConflictUncertainGap: 0.25,
	}
}

// Result: проверенный прогноз классификатора.
type Result struct {
	// Prediction: то, что передаётся в ансамбль. При срабатывании порога
	// метка заменена на entity.NoFindingLabel.
	Prediction entity.ClassifierPrediction `json:"prediction"`
	Report     entity.ConsistencyReport    `json:"validation"`
	// TopK: исходный топ-3, только для диагностики.
	TopK     []entity.RankedLabel `json:"top_3"`
	Detected bool                 `json:"is_detected"`
}

// Validator: проверка согласованности. Не хранит состояния запроса.
type Validator struct {
	kb     *knowledge.Base
	params Params
}

// New создаёт валидатор со справочником классов.
func New(kb *knowledge.Base, params Params) *Validator {
	return &Validator{kb: kb, params: params}
}

// Evaluate строит топ-3 из полного распределения и проверяет его.
func (v *Validator) Evaluate(dist entity.Distribution, threshold, latencyMs float64) (*Result, error) {
	top := dist.Top(3)
	ranked := make([]entity.RankedLabel, 0, len(top))
	for _, s := range top {
		ranked = append(ranked, entity.RankedLabel{
			Label:    s.Label,
			Score:    s.Score,
			Category: v.kb.Category(s.Label),
		})
	}
	return v.Validate(ranked, dist, threshold, latencyMs)
}

// Validate проверяет топ-3 вместе с полным распределением.
func (v *Validator) Validate(top []entity.RankedLabel, dist entity.Distribution, threshold, latencyMs float64) (*Result, error) {
	if err := checkInput(top, threshold); err != nil {
		return nil, err
	}

	report := v.report(top, dist)
	primary := top[0]

	res := &Result{
		Report:   report,
		TopK:     top,
		Detected: primary.Score >= threshold,
	}

	if !res.Detected {
		// Уверенность в «ничего не найдено»: дополнение к top-1.
		conf := 1 - primary.Score
		res.Prediction = entity.ClassifierPrediction{
			Label:      entity.NoFindingLabel,
			Confidence: conf,
			TopK:       []entity.ScoredLabel{{Label: entity.NoFindingLabel, Score: conf}},
			LatencyMs:  latencyMs,
		}
		return res, nil
	}

	scored := make([]entity.ScoredLabel, 0, len(top))
	for _, r := range top {
		scored = append(scored, entity.ScoredLabel{Label: r.Label, Score: r.Score})
	}
	res.Prediction = entity.ClassifierPrediction{
		Label:      primary.Label,
		Confidence: primary.Score,
		TopK:       scored,
		LatencyMs:  latencyMs,
	}
	return res, nil
}

func (v *Validator) report(top []entity.RankedLabel, dist entity.Distribution) entity.ConsistencyReport {
	gap := 1.0
	conflict := false
	var warnings []entity.ConsistencyWarning

	if len(top) >= 2 {
		first, second := top[0], top[1]
		gap = first.Score - second.Score
		if gap < 0 {
			gap = -gap
		}
		conflict = first.Category != second.Category &&
			first.Category.IsFinding() && second.Category.IsFinding()

		if conflict {
			if level, ok := v.conflictLevel(gap); ok {
				warnings = append(warnings, entity.ConsistencyWarning{
					Type:    entity.WarningCategoryConflict,
					Level:   level,
					Message: fmt.Sprintf("модель путает %s и %s (%s / %s)", categoryName(first.Category), categoryName(second.Category), first.Label, second.Label),
				})
			}
		}
	}

	var disease, pest float64
	for i, label := range dist.Labels {
		switch v.kb.Category(label) {
		case entity.CategoryDisease:
			disease += dist.Scores[i]
		case entity.CategoryPest:
			pest += dist.Scores[i]
		}
	}
	ratio := 0.0
	if sum := disease + pest; sum > 0 {
		ratio = max(disease, pest) / sum
	}

	return entity.ConsistencyReport{
		IsConsistent:            len(warnings) == 0,
		Warnings:                warnings,
		DiseaseTotal:            disease,
		PestTotal:               pest,
		CategoryConfidenceRatio: ratio,
		HasCategoryConflict:     conflict,
		IsUncertain:             gap < v.params.UncertainGap || (conflict && gap < v.params.ConflictUncertainGap),
		UncertaintyScore:        gap,
	}
}

func (v *Validator) conflictLevel(gap float64) (entity.WarningLevel, bool) {
	switch {
	case gap < v.params.HighConflictGap:
		return entity.LevelHigh, true
	case gap < v.params.MediumConflictGap:
		return entity.LevelMedium, true
	default:
		return "", false
	}
}

func checkInput(top []entity.RankedLabel, threshold float64) error {
	if len(top) == 0 {
		return &entity.ValidationError{Field: "top_k", Reason: "must contain at least one entry"}
	}
	for i, r := range top {
		if !(r.Score >= 0 && r.Score <= 1) {
			return &entity.ValidationError{Field: "top_k", Reason: fmt.Sprintf("entry %d score %v is outside [0,1]", i, r.Score)}
		}
		if i > 0 && r.Score > top[i-1].Score {
			return &entity.ValidationError{Field: "top_k", Reason: fmt.Sprintf("entry %d is not sorted in descending order", i)}
		}
	}
	if !(threshold >= 0 && threshold <= 1) {
		return &entity.ValidationError{Field: "detection_threshold", Reason: fmt.Sprintf("%v is outside [0,1]", threshold)}
	}
	return nil
}

func categoryName(c entity.Category) string {
	switch c {
	case entity.CategoryDisease:
		return "болезнь"
	case entity.CategoryPest:
		return "вредителя"
	default:
		return string(c)
	}
}
