package telegram

import (
	"fmt"
	"strings"

	app "plant-doctor/internal/application"
	"plant-doctor/internal/domain/entity"
)

var levelNames = map[entity.ConfidenceLevel]string{
	entity.ConfidenceVeryHigh: "очень высокая",
	entity.ConfidenceHigh:     "высокая",
	entity.ConfidenceMedium:   "средняя",
	entity.ConfidenceLow:      "низкая",
}

var sourceNames = map[entity.Source]string{
	entity.SourceClassifier:    "классификатор",
	entity.SourceLanguageModel: "языковая модель",
	entity.SourceEnsemble:      "ансамбль моделей",
}

var categoryNames = map[entity.Category]string{
	entity.CategoryDisease: "болезнь",
	entity.CategoryPest:    "вредитель",
}

// lowQuality: ниже этой оценки просим переснять.
const lowQuality = 0.7

// FormatDiagnosis готовит текст ответа пользователю.
func FormatDiagnosis(d *app.Diagnosis) string {
	var b strings.Builder
	dec := d.Decision

	if dec.IsNoFinding() {
		b.WriteString("✅ Болезней и вредителей не найдено\n")
	} else {
		fmt.Fprintf(&b, "🌿 %s", d.DisplayName)
		if d.DisplayName != dec.Label {
			fmt.Fprintf(&b, " (%s)", dec.Label)
		}
		b.WriteString("\n")
		if name, ok := categoryNames[d.Category]; ok {
			fmt.Fprintf(&b, "Тип: %s\n", name)
		}
	}

	fmt.Fprintf(&b, "Уверенность: %.0f%% (%s)\n", dec.Confidence*100, levelNames[d.Level])
	fmt.Fprintf(&b, "Источник: %s\n", sourceNames[dec.Source])
	if dec.Rationale != "" {
		fmt.Fprintf(&b, "\n%s\n", dec.Rationale)
	}

	if d.Classifier != nil {
		for _, w := range d.Classifier.Report.Warnings {
			fmt.Fprintf(&b, "⚠️ %s\n", w.Message)
		}
	}

	if d.Lesions.HasLesions() {
		fmt.Fprintf(&b, "\n🔍 Найдено пятен: %d, поражено %.1f%% листа\n", d.Lesions.SpotCount, d.Lesions.LesionRatio*100)
		if d.Lesions.SuspectedPest {
			b.WriteString("Много мелких повреждений: похоже на вредителя\n")
		}
	}

	if len(dec.Recommendations) > 0 {
		b.WriteString("\n📋 Рекомендации:\n")
		for _, r := range dec.Recommendations {
			fmt.Fprintf(&b, "• %s\n", r)
		}
	}

	if d.ImageQuality < lowQuality {
		b.WriteString("\n📸 Снимок нечёткий или плохо освещён, результат может быть неточным.\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
