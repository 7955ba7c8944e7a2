package entity

// Source: откуда взят итоговый диагноз.
type Source string

const (
	SourceClassifier    Source = "classifier"
	SourceLanguageModel Source = "languageModel"
	SourceEnsemble      Source = "ensemble"
)

// Weights: вклад каждого источника в решение.
type Weights struct {
	Classifier    float64 `json:"classifier"`
	LanguageModel float64 `json:"languageModel"`
}

// EnsembleDecision: итоговый диагноз с объяснением.
type EnsembleDecision struct {
	Label           string   `json:"label"`
	Confidence      float64  `json:"confidence"`
	Source          Source   `json:"source"`
	Weights         Weights  `json:"weights"`
	Rationale       string   `json:"rationale"`
	Recommendations []string `json:"recommendations"`
}

// IsNoFinding сообщает, что итог: «ничего не найдено».
func (d *EnsembleDecision) IsNoFinding() bool {
	return d.Label == NoFindingLabel
}

// ConfidenceLevel: словесная шкала уверенности для пользователя.
type ConfidenceLevel string

const (
	ConfidenceVeryHigh ConfidenceLevel = "very_high"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceMedium   ConfidenceLevel = "medium"
	ConfidenceLow      ConfidenceLevel = "low"
)

// LevelOf переводит уверенность в словесную шкалу.
func LevelOf(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= 0.9:
		return ConfidenceVeryHigh
	case confidence >= 0.7:
		return ConfidenceHigh
	case confidence >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
