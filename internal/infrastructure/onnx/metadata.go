// Package onnx: классификатор болезней листа на ONNX Runtime.
package onnx

import (
	"encoding/json"
	"fmt"
	"os"
)

// Layout: порядок осей входного тензора.
type Layout string

const (
	LayoutNCHW Layout = "nchw"
	LayoutNHWC Layout = "nhwc"
)

// Normalization: как пиксель [0,255] переводится в вход модели.
type Normalization string

const (
	// NormMobileNetV2: x/127.5 − 1, диапазон [-1,1].
	NormMobileNetV2 Normalization = "mobilenet_v2"
	// NormUnit: x/255, диапазон [0,1].
	NormUnit Normalization = "unit"
)

// Metadata описывает экспортированную модель.
type Metadata struct {
	InputShape    []int64       `json:"input_shape"`
	OutputShape   []int64       `json:"output_shape"`
	Classes       []string      `json:"classes"`
	ImageSize     int           `json:"image_size"`
	InputName     string        `json:"input_name"`
	OutputName    string        `json:"output_name"`
	Layout        Layout        `json:"layout"`
	Normalization Normalization `json:"normalization"`
	ApplySoftmax  bool          `json:"apply_softmax"`
}

// LoadMetadata читает JSON рядом с моделью и проставляет значения по умолчанию.
func LoadMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}
	return ParseMetadata(raw)
}

// ParseMetadata разбирает и проверяет описание модели.
func ParseMetadata(raw []byte) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}

	if m.InputName == "" {
		m.InputName = "input"
	}
	if m.OutputName == "" {
		m.OutputName = "output"
	}
	if m.Layout == "" {
		m.Layout = LayoutNHWC
	}
	if m.Normalization == "" {
		m.Normalization = NormMobileNetV2
	}

	if err := m.validate(); err != nil {
		return Metadata{}, err
	}
	return m, nil
}

func (m Metadata) validate() error {
	if len(m.Classes) == 0 {
		return fmt.Errorf("metadata: no classes")
	}
	if m.ImageSize <= 0 {
		return fmt.Errorf("metadata: image_size must be positive, got %d", m.ImageSize)
	}
	switch m.Layout {
	case LayoutNCHW, LayoutNHWC:
	default:
		return fmt.Errorf("metadata: unknown layout %q", m.Layout)
	}
	switch m.Normalization {
	case NormMobileNetV2, NormUnit:
	default:
		return fmt.Errorf("metadata: unknown normalization %q", m.Normalization)
	}

	if want := int64(3 * m.ImageSize * m.ImageSize); volume(m.InputShape) != want {
		return fmt.Errorf("metadata: input_shape %v does not hold a %dx%d RGB image", m.InputShape, m.ImageSize, m.ImageSize)
	}
	if volume(m.OutputShape) != int64(len(m.Classes)) {
		return fmt.Errorf("metadata: output_shape %v does not match %d classes", m.OutputShape, len(m.Classes))
	}
	return nil
}

func volume(shape []int64) int64 {
	if len(shape) == 0 {
		return 0
	}
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}
