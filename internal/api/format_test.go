package telegram

import (
	"testing"

	"github.com/stretchr/testify/require"

	app "plant-doctor/internal/application"
	"plant-doctor/internal/domain/consistency"
	"plant-doctor/internal/domain/entity"
)

func TestFormatDiagnosis_Finding(t *testing.T) {
	d := &app.Diagnosis{
		Decision: &entity.EnsembleDecision{
			Label:           "Thrips",
			Confidence:      0.91,
			Source:          entity.SourceEnsemble,
			Rationale:       "обе модели согласны",
			Recommendations: []string{"осмотрите нижнюю сторону листа"},
		},
		Level:        entity.ConfidenceVeryHigh,
		DisplayName:  "Трипсы",
		Category:     entity.CategoryPest,
		ImageQuality: 0.5,
		Classifier: &consistency.Result{Report: entity.ConsistencyReport{
			Warnings: []entity.ConsistencyWarning{{Message: "модель путает болезнь и вредителя"}},
		}},
		Lesions: &entity.LesionReport{
			Areas:         []entity.LesionArea{{Width: 1, Height: 1}},
			SpotCount:     24,
			LesionRatio:   0.031,
			SuspectedPest: true,
		},
	}

	text := FormatDiagnosis(d)
	require.Contains(t, text, "Трипсы (Thrips)")
	require.Contains(t, text, "Тип: вредитель")
	require.Contains(t, text, "Уверенность: 91% (очень высокая)")
	require.Contains(t, text, "Источник: ансамбль моделей")
	require.Contains(t, text, "обе модели согласны")
	require.Contains(t, text, "⚠️ модель путает болезнь и вредителя")
	require.Contains(t, text, "Найдено пятен: 24, поражено 3.1% листа")
	require.Contains(t, text, "похоже на вредителя")
	require.Contains(t, text, "• осмотрите нижнюю сторону листа")
	require.Contains(t, text, "Снимок нечёткий")
}

func TestFormatDiagnosis_NoFinding(t *testing.T) {
	d := &app.Diagnosis{
		Decision: &entity.EnsembleDecision{
			Label:      entity.NoFindingLabel,
			Confidence: 0.85,
			Source:     entity.SourceClassifier,
		},
		Level:        entity.ConfidenceHigh,
		ImageQuality: 1,
	}

	text := FormatDiagnosis(d)
	require.Contains(t, text, "Болезней и вредителей не найдено")
	require.Contains(t, text, "Уверенность: 85% (высокая)")
	require.NotContains(t, text, "Рекомендации")
	require.NotContains(t, text, "Снимок нечёткий")
}
