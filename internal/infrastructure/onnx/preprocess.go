package onnx

import (
	"image"
	"math"

	"github.com/nfnt/resize"
)

// Preprocess масштабирует кадр до size×size и раскладывает каналы RGB
// в плоский вектор в порядке layout.
func Preprocess(img image.Image, size int, layout Layout, norm Normalization) []float32 {
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)
	b := resized.Bounds()
	width, height := b.Dx(), b.Dy()
	plane := width * height

	out := make([]float32, 3*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, bl, _ := resized.At(b.Min.X+x, b.Min.Y+y).RGBA()
			px := [3]float32{
				normalize(r, norm),
				normalize(g, norm),
				normalize(bl, norm),
			}

			i := y*width + x
			for c := range px {
				if layout == LayoutNCHW {
					out[c*plane+i] = px[c]
				} else {
					out[i*3+c] = px[c]
				}
			}
		}
	}
	return out
}

// normalize принимает 16-битный канал из color.Color.RGBA.
func normalize(v uint32, norm Normalization) float32 {
	v8 := float32(v >> 8)
	if norm == NormUnit {
		return v8 / 255
	}
	return v8/127.5 - 1
}

// Softmax переводит логиты в вероятности.
func Softmax(logits []float32) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}

	maxLogit := float64(logits[0])
	for _, l := range logits[1:] {
		maxLogit = math.Max(maxLogit, float64(l))
	}

	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(float64(l) - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// toProbabilities копирует выход модели, при необходимости через softmax.
func toProbabilities(output []float32, applySoftmax bool) []float64 {
	if applySoftmax {
		return Softmax(output)
	}
	out := make([]float64, len(output))
	for i, v := range output {
		out[i] = float64(v)
	}
	return out
}
