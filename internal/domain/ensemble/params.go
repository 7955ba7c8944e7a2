package ensemble

import (
	"fmt"
	"strings"

	"plant-doctor/internal/domain/entity"
)

// TieBreak: правило выбора метки при равных суммарных баллах
// в ветке расхождения.
type TieBreak string

const (
	// TieBreakClassifierRank: побеждает метка, стоящая выше в топ-k
	// классификатора. Метка только от языковой модели идёт последней.
	TieBreakClassifierRank TieBreak = "classifier-rank"
	// TieBreakLanguageModel: побеждает метка языковой модели, если она
	// среди равных, иначе действует classifier-rank.
	TieBreakLanguageModel TieBreak = "language-model"
	// TieBreakUncertain: при равенстве решение не принимается,
	// возвращается entity.NoFindingLabel с пометкой о ничьей.
	TieBreakUncertain TieBreak = "uncertain"
)

// ParseTieBreak разбирает название правила.
func ParseTieBreak(s string) (TieBreak, error) {
	switch t := TieBreak(strings.ToLower(strings.TrimSpace(s))); t {
	case TieBreakClassifierRank, TieBreakLanguageModel, TieBreakUncertain:
		return t, nil
	case "":
		return TieBreakClassifierRank, nil
	default:
		return "", fmt.Errorf("unknown tie-break rule %q", s)
	}
}

// WeightParams: коэффициенты расчёта надёжности источников.
type WeightParams struct {
	ConfidenceScale   float64 // доля уверенности классификатора в весе
	SeparationScale   float64 // множитель разрыва top1-top2
	SeparationCap     float64 // потолок бонуса за разрыв
	QualityFloor      float64 // множитель качества при quality=0
	ClassifierPenalty float64 // снижение веса на сложных классах

	LanguageModelBase    float64
	ReasoningBonus       float64
	ComplexityFloor      float64
	ComplexityBonus      float64 // прибавка языковой модели на сложных классах
	DisagreeConfidence   float64 // уверенность классификатора, выше которой штрафуем расхождение
	DisagreePenalty      float64
	LanguageModelFloor   float64 // минимальный вес, он же вес неуверенного ответа
	LanguageModelCeiling float64
}

// Params: пороги и константы ансамбля.
type Params struct {
	Weights WeightParams

	HighConfidence     float64 // классификатор один: доверяем полностью
	MediumConfidence   float64 // ниже: уверенность умножается на LowConfidenceScale
	LowConfidenceScale float64

	LanguageModelConfidence  float64 // языковая модель одна и уверена
	LanguageModelUnsureScore float64 // языковая модель одна и не уверена

	SuspiciousConfidence float64 // выше: «здоров» от модели считаем подозрительным
	SuspiciousScale      float64
	SuspiciousWeights    entity.Weights
	HealthyConfidence    float64
	HealthyWeights       entity.Weights

	AgreementFloor float64
	AgreementBonus float64
	AgreementCap   float64

	Commitment float64 // базовая правильность языковой модели, назвавшей класс
	TieBreak   TieBreak
	TieEpsilon float64
}

// DefaultParams возвращает откалиброванные значения.
func DefaultParams() Params {
	return Params{
		Weights: WeightParams{
			ConfidenceScale:   0.7,
			SeparationScale:   0.2,
			SeparationCap:     0.1,
			QualityFloor:      0.7,
			ClassifierPenalty: 0.2,

			LanguageModelBase:    0.75,
			ReasoningBonus:       0.15,
			ComplexityFloor:      0.8,
			ComplexityBonus:      0.2,
			DisagreeConfidence:   0.9,
			DisagreePenalty:      0.15,
			LanguageModelFloor:   0.2,
			LanguageModelCeiling: 1.0,
		},

		HighConfidence:     0.85,
		MediumConfidence:   0.60,
		LowConfidenceScale: 0.7,

		LanguageModelConfidence:  0.75,
		LanguageModelUnsureScore: 0.5,

		SuspiciousConfidence: 0.95,
		SuspiciousScale:      0.5,
		SuspiciousWeights:    entity.Weights{Classifier: 0.7, LanguageModel: 0.3},
		HealthyConfidence:    0.85,
		HealthyWeights:       entity.Weights{Classifier: 0.1, LanguageModel: 0.9},

		AgreementFloor: 0.75,
		AgreementBonus: 0.15,
		AgreementCap:   0.95,

		Commitment: 0.8,
		TieBreak:   TieBreakClassifierRank,
		TieEpsilon: 1e-9,
	}
}
