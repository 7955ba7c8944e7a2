package entity

// WarningLevel: серьёзность предупреждения.
type WarningLevel string

const (
	LevelMedium WarningLevel = "medium"
	LevelHigh   WarningLevel = "high"
)

// WarningCategoryConflict: первые два места из разных групп (болезнь/вредитель).
const WarningCategoryConflict = "category_conflict"

// ConsistencyWarning: замечание валидатора к топ-3 классификатора.
type ConsistencyWarning struct {
	Type    string       `json:"type"`
	Level   WarningLevel `json:"level"`
	Message string       `json:"message"`
}

// ConsistencyReport: итог проверки согласованности прогноза.
type ConsistencyReport struct {
	IsConsistent            bool                 `json:"is_consistent"`
	Warnings                []ConsistencyWarning `json:"warnings"`
	DiseaseTotal            float64              `json:"disease_total_confidence"`
	PestTotal               float64              `json:"pest_total_confidence"`
	CategoryConfidenceRatio float64              `json:"category_confidence_ratio"`
	HasCategoryConflict     bool                 `json:"has_category_conflict"`
	IsUncertain             bool                 `json:"is_uncertain"`
	UncertaintyScore        float64              `json:"uncertainty_score"` // разрыв top1-top2
}
