package augment

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// View: детерминированное преобразование исходного кадра.
type View string

const (
	ViewIdentity    View = "identity"
	ViewFlipH       View = "flip_horizontal"
	ViewFlipV       View = "flip_vertical"
	ViewRotateLeft  View = "rotate_+5"
	ViewRotateRight View = "rotate_-5"
)

const rotationDegrees = 5.0

// Views возвращает набор ракурсов: исходный кадр и два отражения,
// в расширенном режиме ещё повороты на ±5°.
func Views(extended bool) []View {
	views := []View{ViewIdentity, ViewFlipH, ViewFlipV}
	if extended {
		views = append(views, ViewRotateLeft, ViewRotateRight)
	}
	return views
}

// Apply строит ракурс. Результат всегда новый *image.RGBA с началом в (0,0).
func Apply(src image.Image, v View) *image.RGBA {
	base := toRGBA(src)
	w, h := float64(base.Bounds().Dx()), float64(base.Bounds().Dy())

	switch v {
	case ViewFlipH:
		return transform(base, f64.Aff3{-1, 0, w, 0, 1, 0}, draw.NearestNeighbor)
	case ViewFlipV:
		return transform(base, f64.Aff3{1, 0, 0, 0, -1, h}, draw.NearestNeighbor)
	case ViewRotateLeft:
		return transform(base, rotation(rotationDegrees, w/2, h/2), draw.BiLinear)
	case ViewRotateRight:
		return transform(base, rotation(-rotationDegrees, w/2, h/2), draw.BiLinear)
	default:
		return base
	}
}

// rotation: поворот вокруг (cx, cy) в координатах «источник → приёмник».
func rotation(deg, cx, cy float64) f64.Aff3 {
	rad := deg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
}

func transform(src *image.RGBA, s2d f64.Aff3, interp draw.Interpolator) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	// углы, которые не покрывает поворот, остаются исходными пикселями
	draw.Copy(dst, image.Point{}, src, src.Bounds(), draw.Src, nil)
	interp.Transform(dst, s2d, src, src.Bounds(), draw.Src, nil)
	return dst
}

func toRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, src, b, draw.Src, nil)
	return dst
}
