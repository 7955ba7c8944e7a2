package entity

// Category: укрупнённая группа класса.
type Category string

const (
	CategoryDisease Category = "disease"
	CategoryPest    Category = "pest"
	CategoryHealthy Category = "healthy"
	CategoryUnknown Category = "unknown"
)

// IsValid сообщает, известна ли категория.
func (c Category) IsValid() bool {
	switch c {
	case CategoryDisease, CategoryPest, CategoryHealthy, CategoryUnknown:
		return true
	default:
		return false
	}
}

// IsFinding сообщает, относится ли категория к болезни или вредителю.
func (c Category) IsFinding() bool {
	return c == CategoryDisease || c == CategoryPest
}

// DefaultDifficulty: сложность класса, которого нет в справочнике.
const DefaultDifficulty = 0.5

// ClassProfile: справочные данные о классе.
type ClassProfile struct {
	Label       string   `json:"label"`
	DisplayName string   `json:"display_name,omitempty"`
	Category    Category `json:"category"`
	// Difficulty: чем выше, тем сложнее классу для классификатора
	// и тем больше доверия языковой модели.
	Difficulty float64 `json:"difficulty"`
}

// NeutralProfile возвращает профиль по умолчанию для неизвестной метки.
func NeutralProfile(label string) ClassProfile {
	return ClassProfile{
		Label:       label,
		DisplayName: label,
		Category:    CategoryUnknown,
		Difficulty:  DefaultDifficulty,
	}
}
