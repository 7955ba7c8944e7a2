package port

//go:generate go tool mockgen -source=vision.go -destination=mocks/vision.go -package=mocks

import (
	"context"
	"image"

	"plant-doctor/internal/domain/entity"
)

// QualityAssessor оценивает пригодность снимка для диагностики
type QualityAssessor interface {
	// Assess возвращает оценку качества в [0,1]
	Assess(ctx context.Context, imageData []byte) (float64, error)
}

// Enhancer выполняет предобработку кадра перед классификатором
type Enhancer interface {
	Enhance(img image.Image) (image.Image, error)
}

// LesionDetector ищет пятна поражения на листе
type LesionDetector interface {
	// Detect находит пятна и возвращает отчёт
	Detect(ctx context.Context, imageData []byte) (*entity.LesionReport, error)

	// Highlight рисует найденные пятна поверх снимка
	Highlight(imageData []byte, report *entity.LesionReport) ([]byte, error)
}
