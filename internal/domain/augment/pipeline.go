// Package augment запускает классификатор на нескольких ракурсах одного
// снимка (test-time augmentation) и усредняет вероятности.
package augment

import (
	"context"
	"errors"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"

	"plant-doctor/internal/domain/port"
)

// ErrNoEnhancer: включена предобработка, но Enhancer не задан.
var ErrNoEnhancer = errors.New("enhancement requested but no enhancer is configured")

// Options: режим одного прогона.
type Options struct {
	Enhance  bool // предобработка каждого ракурса
	Augment  bool // без неё: только исходный кадр
	Extended bool // добавить повороты на ±5°
}

// Pipeline: параллельный прогон классификатора по ракурсам.
type Pipeline struct {
	classifier port.Classifier
	enhancer   port.Enhancer
	workers    int
}

// New создаёт конвейер. enhancer может быть nil, тогда Enhance недоступен.
// workers ограничивает число одновременных прогонов (0: без ограничения).
func New(classifier port.Classifier, enhancer port.Enhancer, workers int) *Pipeline {
	return &Pipeline{classifier: classifier, enhancer: enhancer, workers: workers}
}

// Labels возвращает метки классов в порядке вектора вероятностей.
func (p *Pipeline) Labels() []string {
	return p.classifier.Labels()
}

// Infer возвращает вектор вероятностей по классам классификатора.
// Ошибка любого ракурса прерывает весь вызов: частичного среднего не бывает.
func (p *Pipeline) Infer(ctx context.Context, img image.Image, opts Options) ([]float64, error) {
	if opts.Enhance && p.enhancer == nil {
		return nil, ErrNoEnhancer
	}

	views := []View{ViewIdentity}
	if opts.Augment {
		views = Views(opts.Extended)
	}

	results := make([][]float64, len(views))
	g, gctx := errgroup.WithContext(ctx)
	if p.workers > 0 {
		g.SetLimit(p.workers)
	}

	for i, v := range views {
		g.Go(func() error {
			probs, err := p.runView(gctx, img, v, opts.Enhance)
			if err != nil {
				return fmt.Errorf("view %s: %w", v, err)
			}
			results[i] = probs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Mean(results)
}

func (p *Pipeline) runView(ctx context.Context, img image.Image, v View, enhance bool) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var frame image.Image = Apply(img, v)
	if enhance {
		enhanced, err := p.enhancer.Enhance(frame)
		if err != nil {
			return nil, fmt.Errorf("enhance: %w", err)
		}
		frame = enhanced
	}

	return p.classifier.Classify(ctx, frame)
}

// Mean: поэлементное среднее. Слагаемые идут в порядке ракурсов,
// поэтому результат не зависит от того, в каком порядке завершились прогоны.
func Mean(vectors [][]float64) ([]float64, error) {
	if len(vectors) == 0 {
		return nil, errors.New("no probability vectors to fuse")
	}
	n := len(vectors[0])
	if n == 0 {
		return nil, errors.New("empty probability vector")
	}
	for i, v := range vectors {
		if len(v) != n {
			return nil, fmt.Errorf("vector %d has %d classes, want %d", i, len(v), n)
		}
	}

	out := make([]float64, n)
	for c := range out {
		var sum float64
		for _, v := range vectors {
			sum += v[c]
		}
		out[c] = sum / float64(len(vectors))
	}
	return out, nil
}
