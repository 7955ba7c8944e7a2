//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"gocv.io/x/gocv"

	"plant-doctor/internal/domain/entity"
	"plant-doctor/internal/domain/port"
)

// GoCVDetector ищет пятна поражения, оценивает качество снимка
// и готовит кадр для классификатора.
type GoCVDetector struct {
	Quality QualityLimits
	Spots   SpotLimits
	MaxSide int
}

// NewGoCVDetector создаёт детектор с порогами по умолчанию.
func NewGoCVDetector() *GoCVDetector {
	return &GoCVDetector{
		Quality: DefaultQualityLimits(),
		Spots:   DefaultSpotLimits(),
		MaxSide: 1024,
	}
}

// Detect находит на листе участки не зелёного цвета.
func (d *GoCVDetector) Detect(ctx context.Context, imageData []byte) (*entity.LesionReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	// Приводим изображение к стандартному размеру для стабильных порогов.
	if mat.Cols() > d.MaxSide || mat.Rows() > d.MaxSide {
		scale := float64(d.MaxSide) / float64(max(mat.Cols(), mat.Rows()))
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(int(float64(mat.Cols())*scale), int(float64(mat.Rows())*scale)), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	mask := lesionMask(mat)
	defer mask.Close()

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	minArea := float64(mat.Cols()*mat.Rows()) * d.Spots.MinAreaRatio
	areas := make([]entity.LesionArea, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		area := gocv.ContourArea(c)
		if area < minArea || area == 0 {
			continue
		}
		rect := gocv.BoundingRect(c)
		areas = append(areas, entity.LesionArea{
			X:      rect.Min.X,
			Y:      rect.Min.Y,
			Width:  rect.Dx(),
			Height: rect.Dy(),
			Area:   int(area),
		})
	}

	return Summarize(mat.Cols(), mat.Rows(), areas, ratioOfMask(mask), d.Spots), nil
}

// lesionMask: пиксели листа (насыщенные и не тёмные), которые не попали
// в зелёный диапазон оттенков. Мелкий шум убирается морфологическим открытием.
func lesionMask(mat gocv.Mat) gocv.Mat {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(mat, &hsv, gocv.ColorBGRToHSV)

	leaf := gocv.NewMat()
	defer leaf.Close()
	gocv.InRangeWithScalar(hsv, gocv.NewScalar(0, 40, 40, 0), gocv.NewScalar(180, 255, 255, 0), &leaf)

	green := gocv.NewMat()
	defer green.Close()
	gocv.InRangeWithScalar(hsv, gocv.NewScalar(35, 40, 40, 0), gocv.NewScalar(85, 255, 255, 0), &green)

	notGreen := gocv.NewMat()
	defer notGreen.Close()
	gocv.BitwiseNot(green, &notGreen)

	raw := gocv.NewMat()
	defer raw.Close()
	gocv.BitwiseAnd(leaf, notGreen, &raw)

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(3, 3))
	defer kernel.Close()

	mask := gocv.NewMat()
	gocv.MorphologyEx(raw, &mask, gocv.MorphOpen, kernel)
	return mask
}

// Highlight рисует прямоугольники вокруг пятен и возвращает новую картинку.
func (d *GoCVDetector) Highlight(imageData []byte, report *entity.LesionReport) ([]byte, error) {
	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	// Координаты пятен посчитаны на уменьшенном кадре.
	sx, sy := 1.0, 1.0
	if report.ImageWidth > 0 && report.ImageHeight > 0 {
		sx = float64(mat.Cols()) / float64(report.ImageWidth)
		sy = float64(mat.Rows()) / float64(report.ImageHeight)
	}

	red := color.RGBA{R: 255, A: 255}
	if report.SuspectedPest {
		red = color.RGBA{R: 255, G: 140, A: 255}
	}
	for _, a := range report.Areas {
		rect := image.Rect(
			int(float64(a.X)*sx), int(float64(a.Y)*sy),
			int(float64(a.X+a.Width)*sx), int(float64(a.Y+a.Height)*sy),
		)
		gocv.Rectangle(&mat, rect, red, 2)
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Assess измеряет резкость, экспозицию и блики и сводит их в оценку.
func (d *GoCVDetector) Assess(ctx context.Context, imageData []byte) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	mat, err := decodeToMat(imageData)
	if err != nil {
		return 0, err
	}
	defer mat.Close()

	m, err := measure(mat)
	if err != nil {
		return 0, err
	}
	return Score(m, d.Quality), nil
}

func measure(mat gocv.Mat) (QualityMetrics, error) {
	m := QualityMetrics{Width: mat.Cols(), Height: mat.Rows()}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 80, 160)
	m.EdgeRatio = ratioOfMask(edges)

	bright := gocv.NewMat()
	defer bright.Close()
	gocv.Threshold(gray, &bright, 250, 255, gocv.ThresholdBinary)
	m.OverexposedRatio = ratioOfMask(bright)

	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(gray, &dark, 20, 255, gocv.ThresholdBinaryInv)
	m.UnderexposedRatio = ratioOfMask(dark)

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(mat, &hsv, gocv.ColorBGRToHSV)
	channels := gocv.Split(hsv)
	for i := range channels {
		defer channels[i].Close()
	}
	if len(channels) < 3 {
		return m, errors.New("invalid hsv channels")
	}

	lowSat := gocv.NewMat()
	defer lowSat.Close()
	gocv.Threshold(channels[1], &lowSat, 40, 255, gocv.ThresholdBinaryInv)

	highVal := gocv.NewMat()
	defer highVal.Close()
	gocv.Threshold(channels[2], &highVal, 245, 255, gocv.ThresholdBinary)

	glare := gocv.NewMat()
	defer glare.Close()
	gocv.BitwiseAnd(lowSat, highVal, &glare)
	m.GlareRatio = ratioOfMask(glare)

	return m, nil
}

// Enhance: баланс белого по средним каналов, CLAHE по яркости
// и лёгкая нерезкая маска. Одинаково для любого ракурса.
func (d *GoCVDetector) Enhance(img image.Image) (image.Image, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.New("empty image")
	}

	balanced := whiteBalance(mat)
	defer balanced.Close()

	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(balanced, &lab, gocv.ColorBGRToLab)
	parts := gocv.Split(lab)
	for i := range parts {
		defer parts[i].Close()
	}

	clahe := gocv.NewCLAHEWithParams(2.0, image.Pt(8, 8))
	defer clahe.Close()
	equalized := gocv.NewMat()
	defer equalized.Close()
	clahe.Apply(parts[0], &equalized)
	equalized.CopyTo(&parts[0])

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge(parts, &merged)

	contrast := gocv.NewMat()
	defer contrast.Close()
	gocv.CvtColor(merged, &contrast, gocv.ColorLabToBGR)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(contrast, &blur, image.Pt(0, 0), 1.0, 1.0, gocv.BorderDefault)

	sharp := gocv.NewMat()
	defer sharp.Close()
	gocv.AddWeighted(contrast, 1.2, blur, -0.2, 0, &sharp)

	return sharp.ToImage()
}

func whiteBalance(mat gocv.Mat) gocv.Mat {
	channels := gocv.Split(mat)
	for i := range channels {
		defer channels[i].Close()
	}

	means := mat.Mean()
	avg := []float64{means.Val1, means.Val2, means.Val3}
	gray := (avg[0] + avg[1] + avg[2]) / 3

	scaled := make([]gocv.Mat, len(channels))
	for i := range channels {
		scaled[i] = gocv.NewMat()
		defer scaled[i].Close()
		gain := 1.0
		if i < len(avg) && avg[i] > 1e-6 {
			gain = gray / avg[i]
		}
		channels[i].ConvertToWithParams(&scaled[i], gocv.MatTypeCV8U, float32(gain), 0)
	}

	out := gocv.NewMat()
	gocv.Merge(scaled, &out)
	return out
}

// decodeToMat превращает байты изображения в gocv.Mat. При ошибке
// закрывать нечего: возвращается нулевой Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to decode image: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, errors.New("failed to decode image")
	}
	return mat, nil
}

func ratioOfMask(mask gocv.Mat) float64 {
	total := mask.Cols() * mask.Rows()
	if total <= 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total)
}

var (
	_ port.LesionDetector  = (*GoCVDetector)(nil)
	_ port.QualityAssessor = (*GoCVDetector)(nil)
	_ port.Enhancer        = (*GoCVDetector)(nil)
)

// Enabled сообщает, собран ли пакет с OpenCV.
func Enabled() bool { return true }
