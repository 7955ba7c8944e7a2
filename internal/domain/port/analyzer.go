package port

//go:generate go tool mockgen -source=analyzer.go -destination=mocks/analyzer.go -package=mocks

import (
	"context"

	"plant-doctor/internal/domain/entity"
)

// PlantAnalyzer интерфейс анализатора на основе визуальной языковой модели
type PlantAnalyzer interface {
	// Analyze выбирает один класс из справочника или отвечает «ничего не найдено»
	Analyze(ctx context.Context, imageData []byte) (*entity.LanguageModelPrediction, error)
}
