//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"image"

	"plant-doctor/internal/domain/entity"
	"plant-doctor/internal/domain/port"
)

// GoCVDetector без OpenCV: все методы возвращают ErrGoCVDisabled.
type GoCVDetector struct {
	Quality QualityLimits
	Spots   SpotLimits
	MaxSide int
}

// NewGoCVDetector создаёт детектор-заглушку (без OpenCV).
func NewGoCVDetector() *GoCVDetector {
	return &GoCVDetector{
		Quality: DefaultQualityLimits(),
		Spots:   DefaultSpotLimits(),
		MaxSide: 1024,
	}
}

func (d *GoCVDetector) Detect(ctx context.Context, imageData []byte) (*entity.LesionReport, error) {
	return nil, ErrGoCVDisabled
}

func (d *GoCVDetector) Highlight(imageData []byte, report *entity.LesionReport) ([]byte, error) {
	return nil, ErrGoCVDisabled
}

func (d *GoCVDetector) Assess(ctx context.Context, imageData []byte) (float64, error) {
	return 0, ErrGoCVDisabled
}

func (d *GoCVDetector) Enhance(img image.Image) (image.Image, error) {
	return nil, ErrGoCVDisabled
}

var (
	_ port.LesionDetector  = (*GoCVDetector)(nil)
	_ port.QualityAssessor = (*GoCVDetector)(nil)
	_ port.Enhancer        = (*GoCVDetector)(nil)
)

// Enabled сообщает, собран ли пакет с OpenCV.
func Enabled() bool { return false }
