package onnx

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func uniform(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestPreprocess_Layouts(t *testing.T) {
	img := uniform(color.RGBA{R: 255, G: 0, B: 51, A: 255})

	nhwc := Preprocess(img, 2, LayoutNHWC, NormUnit)
	require.Len(t, nhwc, 12)
	require.InDeltaSlice(t, []float32{1, 0, 0.2, 1, 0, 0.2}, nhwc[:6], 1e-6)

	nchw := Preprocess(img, 2, LayoutNCHW, NormUnit)
	require.Len(t, nchw, 12)
	require.InDeltaSlice(t, []float32{1, 1, 1, 1, 0, 0, 0, 0, 0.2, 0.2, 0.2, 0.2}, nchw, 1e-6)
}

func TestPreprocess_MobileNetRange(t *testing.T) {
	img := uniform(color.RGBA{R: 255, G: 0, B: 255, A: 255})

	out := Preprocess(img, 2, LayoutNHWC, NormMobileNetV2)
	require.InDelta(t, 1.0, out[0], 1e-6)
	require.InDelta(t, -1.0, out[1], 1e-6)
	require.InDelta(t, 1.0, out[2], 1e-6)
}

func TestSoftmax(t *testing.T) {
	require.Empty(t, Softmax(nil))

	p := Softmax([]float32{1, 1})
	require.InDeltaSlice(t, []float64{0.5, 0.5}, p, 1e-12)

	p = Softmax([]float32{1000, 0})
	require.InDelta(t, 1.0, p[0], 1e-12)
	require.InDelta(t, 0.0, p[1], 1e-12)

	p = Softmax([]float32{0.2, -1.3, 2.5, 0})
	var sum float64
	for _, v := range p {
		sum += v
	}
	require.InDelta(t, 1.0, sum, 1e-12)
	require.Greater(t, p[2], p[0])
}

func TestToProbabilities(t *testing.T) {
	require.InDeltaSlice(t, []float64{0.25, 0.75}, toProbabilities([]float32{0.25, 0.75}, false), 1e-7)
	require.InDeltaSlice(t, []float64{0.5, 0.5}, toProbabilities([]float32{3, 3}, true), 1e-12)
}
