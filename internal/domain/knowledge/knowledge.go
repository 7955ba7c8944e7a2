// Package knowledge: справочник классов: визуальная сложность и группа
// (болезнь/вредитель) для каждой метки, а также синонимы ответа «здоров».
// Base не меняется после создания и безопасен для общего доступа.
package knowledge

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"plant-doctor/internal/domain/entity"
)

// DefaultHealthyAliases: ответы, которые означают «растение здорово».
var DefaultHealthyAliases = []string{
	"none",
	"healthy",
	entity.NoFindingLabel,
	"No disease or pest found / พืชสุขภาพดี",
	"พืชสุขภาพดี",
	"здоровое растение",
	"здоров",
}

// Base: неизменяемый справочник классов.
type Base struct {
	profiles map[string]entity.ClassProfile // ключ: свёрнутый регистр
	labels   []string
	healthy  map[string]struct{}
}

// New проверяет записи и строит справочник.
func New(classes []entity.ClassProfile, healthyAliases []string) (*Base, error) {
	b := &Base{
		profiles: make(map[string]entity.ClassProfile, len(classes)),
		labels:   make([]string, 0, len(classes)),
		healthy:  make(map[string]struct{}, len(healthyAliases)),
	}

	for _, c := range classes {
		if strings.TrimSpace(c.Label) == "" {
			return nil, errors.New("class label is required")
		}
		if !c.Category.IsValid() {
			return nil, fmt.Errorf("class %q: invalid category %q", c.Label, c.Category)
		}
		if c.Difficulty < 0 || c.Difficulty > 1 {
			return nil, fmt.Errorf("class %q: difficulty %v is outside [0,1]", c.Label, c.Difficulty)
		}
		key := fold(c.Label)
		if _, exists := b.profiles[key]; exists {
			return nil, fmt.Errorf("duplicate class %q", c.Label)
		}
		if c.DisplayName == "" {
			c.DisplayName = c.Label
		}
		b.profiles[key] = c
		b.labels = append(b.labels, c.Label)
	}

	for _, alias := range healthyAliases {
		if a := fold(alias); a != "" {
			b.healthy[a] = struct{}{}
		}
	}

	return b, nil
}

// Profile возвращает профиль класса. Неизвестная метка получает
// нейтральные значения, метка «здоров»: категорию healthy.
func (b *Base) Profile(label string) entity.ClassProfile {
	if p, ok := b.profiles[fold(label)]; ok {
		return p
	}
	p := entity.NeutralProfile(label)
	if b.IsHealthy(label) {
		p.Category = entity.CategoryHealthy
	}
	return p
}

// Difficulty возвращает визуальную сложность класса.
func (b *Base) Difficulty(label string) float64 {
	return b.Profile(label).Difficulty
}

// Category возвращает укрупнённую группу класса.
func (b *Base) Category(label string) entity.Category {
	return b.Profile(label).Category
}

// DisplayName возвращает название класса для пользователя.
func (b *Base) DisplayName(label string) string {
	if b.IsHealthy(label) {
		return "Растение здорово"
	}
	return b.Profile(label).DisplayName
}

// IsHealthy сообщает, входит ли ответ в набор синонимов «здоров»
// (без учёта регистра).
func (b *Base) IsHealthy(label string) bool {
	_, ok := b.healthy[fold(label)]
	return ok
}

// Resolve сопоставляет произвольный текст с известной меткой без учёта регистра.
func (b *Base) Resolve(text string) (string, bool) {
	p, ok := b.profiles[fold(text)]
	if !ok {
		return "", false
	}
	return p.Label, true
}

// Labels возвращает метки в порядке объявления.
func (b *Base) Labels() []string {
	out := make([]string, len(b.labels))
	copy(out, b.labels)
	return out
}

// LabelsOf возвращает метки заданной категории.
func (b *Base) LabelsOf(category entity.Category) []string {
	var out []string
	for _, l := range b.labels {
		if b.profiles[fold(l)].Category == category {
			out = append(out, l)
		}
	}
	return out
}

// cases.Caser хранит состояние, поэтому создаётся на каждый вызов.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
