package augment

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"plant-doctor/internal/domain/port/mocks"
)

// 2x2 кадр: по красному каналу левого верхнего пикселя видно, какой ракурс пришёл.
func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 10, A: 255})
	img.Set(1, 0, color.RGBA{R: 20, A: 255})
	img.Set(0, 1, color.RGBA{R: 30, A: 255})
	img.Set(1, 1, color.RGBA{R: 40, A: 255})
	return img
}

var perView = map[uint8][]float64{
	10: {0.1, 0.2, 0.7},   // identity
	20: {0.3, 0.3, 0.4},   // flip horizontal
	30: {0.05, 0.9, 0.05}, // flip vertical
}

func topLeftRed(img image.Image) uint8 {
	r, _, _, _ := img.At(img.Bounds().Min.X, img.Bounds().Min.Y).RGBA()
	return uint8(r >> 8)
}

func TestInfer_FusesByExactMean(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)
	classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(
		func(_ context.Context, img image.Image) ([]float64, error) {
			return perView[topLeftRed(img)], nil
		})

	fused, err := New(classifier, nil, 3).Infer(context.Background(), testImage(), Options{Augment: true})
	require.NoError(t, err)

	p1, p2, p3 := perView[10], perView[20], perView[30]
	require.Len(t, fused, 3)
	for i := range fused {
		require.Equal(t, (p1[i]+p2[i]+p3[i])/3, fused[i])
	}
}

func TestInfer_OrderIndependent(t *testing.T) {
	delays := map[uint8]time.Duration{10: 30 * time.Millisecond, 20: 10 * time.Millisecond, 30: 0}

	run := func(reverse bool) []float64 {
		ctrl := gomock.NewController(t)
		classifier := mocks.NewMockClassifier(ctrl)
		classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(
			func(_ context.Context, img image.Image) ([]float64, error) {
				key := topLeftRed(img)
				d := delays[key]
				if reverse {
					d = 30*time.Millisecond - d
				}
				time.Sleep(d)
				return perView[key], nil
			})

		fused, err := New(classifier, nil, 0).Infer(context.Background(), testImage(), Options{Augment: true})
		require.NoError(t, err)
		return fused
	}

	require.Equal(t, run(false), run(true))
}

func TestInfer_WithoutAugmentationUsesOriginalOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)
	classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(
		func(_ context.Context, img image.Image) ([]float64, error) {
			return perView[topLeftRed(img)], nil
		})

	fused, err := New(classifier, nil, 1).Infer(context.Background(), testImage(), Options{Extended: true})
	require.NoError(t, err)
	require.Equal(t, perView[10], fused)
}

func TestInfer_ExtendedAddsRotations(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)
	classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Times(5).Return([]float64{0.25, 0.75}, nil)

	fused, err := New(classifier, nil, 2).Infer(context.Background(), testImage(), Options{Augment: true, Extended: true})
	require.NoError(t, err)
	require.Equal(t, []float64{0.25, 0.75}, fused)
}

func TestInfer_AnyViewFailureFailsCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)
	classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(
		func(_ context.Context, img image.Image) ([]float64, error) {
			if topLeftRed(img) == 20 {
				return nil, errors.New("session busy")
			}
			return perView[topLeftRed(img)], nil
		})

	fused, err := New(classifier, nil, 3).Infer(context.Background(), testImage(), Options{Augment: true})
	require.Error(t, err)
	require.Contains(t, err.Error(), string(ViewFlipH))
	require.Nil(t, fused)
}

func TestInfer_MismatchedVectorsFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)
	classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(
		func(_ context.Context, img image.Image) ([]float64, error) {
			if topLeftRed(img) == 30 {
				return []float64{1}, nil
			}
			return perView[topLeftRed(img)], nil
		})

	_, err := New(classifier, nil, 3).Infer(context.Background(), testImage(), Options{Augment: true})
	require.Error(t, err)
}

func TestInfer_EnhancesEveryView(t *testing.T) {
	ctrl := gomock.NewController(t)
	enhancer := mocks.NewMockEnhancer(ctrl)
	enhancer.EXPECT().Enhance(gomock.Any()).Times(3).DoAndReturn(func(img image.Image) (image.Image, error) {
		out := Apply(img, ViewIdentity)
		c := out.RGBAAt(0, 0)
		c.G = 255
		out.SetRGBA(0, 0, c)
		return out, nil
	})

	classifier := mocks.NewMockClassifier(ctrl)
	classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(
		func(_ context.Context, img image.Image) ([]float64, error) {
			_, g, _, _ := img.At(0, 0).RGBA()
			if g>>8 != 255 {
				return nil, errors.New("frame was not enhanced")
			}
			return perView[topLeftRed(img)], nil
		})

	_, err := New(classifier, enhancer, 3).Infer(context.Background(), testImage(), Options{Augment: true, Enhance: true})
	require.NoError(t, err)
}

func TestInfer_EnhanceWithoutEnhancer(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)

	_, err := New(classifier, nil, 3).Infer(context.Background(), testImage(), Options{Enhance: true})
	require.ErrorIs(t, err, ErrNoEnhancer)
}

func TestInfer_CanceledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(classifier, nil, 3).Infer(ctx, testImage(), Options{Augment: true})
	require.ErrorIs(t, err, context.Canceled)
}

func TestApply_Flips(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 8, 7)) // 3x2, начало не в нуле
	for y := 5; y < 7; y++ {
		for x := 5; x < 8; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}

	id := Apply(src, ViewIdentity)
	require.Equal(t, image.Rect(0, 0, 3, 2), id.Bounds())
	require.Equal(t, color.RGBA{R: 5, G: 5, A: 255}, id.RGBAAt(0, 0))

	h := Apply(src, ViewFlipH)
	require.Equal(t, color.RGBA{R: 7, G: 5, A: 255}, h.RGBAAt(0, 0))
	require.Equal(t, color.RGBA{R: 5, G: 6, A: 255}, h.RGBAAt(2, 1))

	v := Apply(src, ViewFlipV)
	require.Equal(t, color.RGBA{R: 5, G: 6, A: 255}, v.RGBAAt(0, 0))
	require.Equal(t, color.RGBA{R: 7, G: 5, A: 255}, v.RGBAAt(2, 1))

	r := Apply(src, ViewRotateLeft)
	require.Equal(t, id.Bounds(), r.Bounds())
}

func TestViews(t *testing.T) {
	require.Equal(t, []View{ViewIdentity, ViewFlipH, ViewFlipV}, Views(false))
	require.Len(t, Views(true), 5)
}

func TestMean(t *testing.T) {
	_, err := Mean(nil)
	require.Error(t, err)

	_, err = Mean([][]float64{{}})
	require.Error(t, err)

	m, err := Mean([][]float64{{0.2, 0.8}, {0.4, 0.6}})
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0.3, 0.7}, m, 1e-12)
}
