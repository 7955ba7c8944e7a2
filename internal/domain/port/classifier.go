package port

//go:generate go tool mockgen -source=classifier.go -destination=mocks/classifier.go -package=mocks

import (
	"context"
	"image"
)

// Classifier интерфейс классификатора изображений с фиксированным набором классов
type Classifier interface {
	// Classify возвращает вероятности по классам в порядке Labels()
	Classify(ctx context.Context, img image.Image) ([]float64, error)

	// Labels возвращает метки классов модели
	Labels() []string
}
