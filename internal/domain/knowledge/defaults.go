package knowledge

import (
	"fmt"

	"plant-doctor/internal/domain/entity"
)

// DefaultClasses: встроенная таблица: 8 болезней и 8 вредителей.
// Сложность: чем выше, тем труднее классу для классификатора.
var DefaultClasses = []entity.ClassProfile{
	// Болезни
	{Label: "Anthracnose", DisplayName: "Антракноз", Category: entity.CategoryDisease, Difficulty: 0.5},
	{Label: "Cercospora Leaf Spot", DisplayName: "Церкоспороз", Category: entity.CategoryDisease, Difficulty: 0.5},
	{Label: "Downy Mildew", DisplayName: "Ложная мучнистая роса", Category: entity.CategoryDisease, Difficulty: 0.6}, // смотреть обе стороны листа
	{Label: "Leaf Blight", DisplayName: "Ожог листьев", Category: entity.CategoryDisease, Difficulty: 0.4},
	{Label: "Leaf Spot Disease", DisplayName: "Пятнистость листьев", Category: entity.CategoryDisease, Difficulty: 0.5},
	{Label: "Powdery Mildew", DisplayName: "Мучнистая роса", Category: entity.CategoryDisease, Difficulty: 0.3}, // белый налёт хорошо виден
	{Label: "Rust Disease", DisplayName: "Ржавчина", Category: entity.CategoryDisease, Difficulty: 0.4},
	{Label: "White Rust Disease", DisplayName: "Белая ржавчина", Category: entity.CategoryDisease, Difficulty: 0.6},
	// Вредители
	{Label: "Bemisia tabaci", DisplayName: "Табачная белокрылка", Category: entity.CategoryPest, Difficulty: 0.7},
	{Label: "Common Cutworm", DisplayName: "Подгрызающая совка", Category: entity.CategoryPest, Difficulty: 0.4},
	{Label: "Diamondback Moth", DisplayName: "Капустная моль", Category: entity.CategoryPest, Difficulty: 0.6},
	{Label: "Flea Beetle", DisplayName: "Земляная блошка", Category: entity.CategoryPest, Difficulty: 0.4},
	{Label: "Leaf Miner", DisplayName: "Минирующая муха", Category: entity.CategoryPest, Difficulty: 0.5},
	{Label: "Leafhopper", DisplayName: "Цикадка", Category: entity.CategoryPest, Difficulty: 0.6},
	{Label: "Red Pumpkin Beetle", DisplayName: "Красный тыквенный жук", Category: entity.CategoryPest, Difficulty: 0.5},
	{Label: "Thrips", DisplayName: "Трипсы", Category: entity.CategoryPest, Difficulty: 0.7},
}

// Default возвращает справочник со встроенной таблицей.
func Default() *Base {
	b, err := New(DefaultClasses, DefaultHealthyAliases)
	if err != nil {
		panic(fmt.Sprintf("built-in class table is invalid: %v", err))
	}
	return b
}
