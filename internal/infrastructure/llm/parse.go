// Package llm превращает ответ визуальной языковой модели в прогноз ансамбля.
package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"golang.org/x/text/cases"

	"plant-doctor/internal/domain/entity"
	"plant-doctor/internal/domain/knowledge"
)

// Оценка рассуждения по словесной уверенности модели.
var confidenceQuality = map[string]float64{
	"very_high": 0.9,
	"high":      0.75,
	"medium":    0.5,
	"low":       0.3,
	"very_low":  0.1,
}

const (
	defaultQuality = 0.8
	unknownQuality = 0.5 // ответ вне справочника
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// answer: поля, которые модель может вернуть в JSON.
type answer struct {
	Class        string `mapstructure:"class"`
	TargetNameEn string `mapstructure:"target_name_en"`
	Confidence   any    `mapstructure:"confidence"`
	Reasoning    string `mapstructure:"reasoning"`
}

// ParseAnswer разбирает сырой ответ модели. JSON-объект (в том числе
// внутри ```json```) предпочтительнее, иначе берётся первая непустая строка.
// Пустой ответ, «ничего не найдено», синонимы «здоров» и метки вне
// справочника дают неуверенный прогноз.
func ParseAnswer(raw string, kb *knowledge.Base) entity.LanguageModelPrediction {
	pred := entity.LanguageModelPrediction{
		RawText:          raw,
		ReasoningQuality: defaultQuality,
	}

	text := firstLine(raw)
	if a, ok := decodeAnswer(raw); ok {
		text = strings.TrimSpace(a.Class)
		if text == "" {
			text = strings.TrimSpace(a.TargetNameEn)
		}
		if q, ok := qualityOf(a.Confidence); ok {
			pred.ReasoningQuality = q
		}
	}
	text = strings.Trim(text, "\"'`*. ")

	switch {
	case text == "", sameText(text, entity.NoFindingLabel), kb.IsHealthy(text):
		pred.Label = entity.NoFindingLabel
		pred.IsUncertain = true
		return pred
	}

	label, ok := matchLabel(text, kb)
	if !ok {
		pred.Label = entity.NoFindingLabel
		pred.IsUncertain = true
		pred.ReasoningQuality = unknownQuality
		return pred
	}
	pred.Label = label
	return pred
}

func decodeAnswer(raw string) (answer, bool) {
	body := ""
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		body = m[1]
	} else if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		body = raw[start : end+1]
	}
	if body == "" {
		return answer{}, false
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(body), &doc); err != nil || len(doc) == 0 {
		return answer{}, false
	}

	var a answer
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &a,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return answer{}, false
	}
	if err := dec.Decode(doc); err != nil {
		return answer{}, false
	}
	return a, true
}

// qualityOf принимает слово (high, very_low, ...) или число в [0,1].
func qualityOf(v any) (float64, bool) {
	switch c := v.(type) {
	case string:
		key := strings.ReplaceAll(fold(c), " ", "_")
		q, ok := confidenceQuality[key]
		return q, ok
	case float64:
		if c >= 0 && c <= 1 {
			return c, true
		}
	}
	return 0, false
}

// matchLabel: точное совпадение без учёта регистра, затем вхождение
// метки в текст. При нескольких вхождениях побеждает самая длинная метка.
func matchLabel(text string, kb *knowledge.Base) (string, bool) {
	if label, ok := kb.Resolve(text); ok {
		return label, true
	}

	folded := fold(text)
	best := ""
	for _, label := range kb.Labels() {
		if strings.Contains(folded, fold(label)) && len(label) > len(best) {
			best = label
		}
	}
	return best, best != ""
}

func firstLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func sameText(a, b string) bool {
	return fold(a) == fold(b)
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
