package onnx

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"plant-doctor/internal/domain/port"
)

// ErrClosed: классификатор уже закрыт.
var ErrClosed = errors.New("onnx classifier is closed")

// runner: одна сессия с собственными тензорами. Сессия не потокобезопасна,
// поэтому одновременно ей пользуется только один вызов.
type runner interface {
	run(input []float32) ([]float32, error)
	destroy()
}

// Config: параметры загрузки модели.
type Config struct {
	ModelPath    string
	MetadataPath string
	LibraryPath  string // путь к libonnxruntime, пусто: системный
	Sessions     int
}

// Classifier: пул сессий ONNX Runtime за интерфейсом port.Classifier.
type Classifier struct {
	meta Metadata
	pool chan runner
	all  []runner

	closeOnce sync.Once
	closed    chan struct{}
	ownsEnv   bool
}

// NewClassifier загружает модель и открывает cfg.Sessions сессий.
func NewClassifier(cfg Config) (*Classifier, error) {
	meta, err := LoadMetadata(cfg.MetadataPath)
	if err != nil {
		return nil, err
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	ownsEnv := false
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
		ownsEnv = true
	}

	n := max(cfg.Sessions, 1)
	runners := make([]runner, 0, n)
	for i := 0; i < n; i++ {
		s, err := newSession(cfg.ModelPath, meta)
		if err != nil {
			for _, r := range runners {
				r.destroy()
			}
			if ownsEnv {
				ort.DestroyEnvironment()
			}
			return nil, err
		}
		runners = append(runners, s)
	}

	c := newClassifier(meta, runners)
	c.ownsEnv = ownsEnv
	return c, nil
}

func newClassifier(meta Metadata, runners []runner) *Classifier {
	c := &Classifier{
		meta:   meta,
		pool:   make(chan runner, len(runners)),
		all:    runners,
		closed: make(chan struct{}),
	}
	for _, r := range runners {
		c.pool <- r
	}
	return c
}

// Labels возвращает классы в порядке выхода модели.
func (c *Classifier) Labels() []string {
	return append([]string(nil), c.meta.Classes...)
}

// Metadata возвращает описание загруженной модели.
func (c *Classifier) Metadata() Metadata {
	return c.meta
}

// Classify ждёт свободную сессию (или отмену ctx) и прогоняет кадр.
func (c *Classifier) Classify(ctx context.Context, img image.Image) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	input := Preprocess(img, c.meta.ImageSize, c.meta.Layout, c.meta.Normalization)

	var r runner
	select {
	case <-c.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-c.pool:
	}
	defer func() { c.pool <- r }()

	select {
	case <-c.closed:
		return nil, ErrClosed
	default:
	}

	output, err := r.run(input)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	if len(output) < len(c.meta.Classes) {
		return nil, fmt.Errorf("model returned %d scores for %d classes", len(output), len(c.meta.Classes))
	}
	return toProbabilities(output[:len(c.meta.Classes)], c.meta.ApplySoftmax), nil
}

// Close дожидается возврата всех сессий и освобождает их.
func (c *Classifier) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		for range c.all {
			r := <-c.pool
			r.destroy()
		}
		if c.ownsEnv {
			ort.DestroyEnvironment()
		}
	})
}

type session struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func newSession(modelPath string, meta Metadata) (*session, error) {
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.OutputShape...))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	s, err := ort.NewAdvancedSession(modelPath,
		[]string{meta.InputName}, []string{meta.OutputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output},
		nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &session{session: s, input: input, output: output}, nil
}

func (s *session) run(input []float32) ([]float32, error) {
	copy(s.input.GetData(), input)
	if err := s.session.Run(); err != nil {
		return nil, err
	}
	return append([]float32(nil), s.output.GetData()...), nil
}

func (s *session) destroy() {
	s.input.Destroy()
	s.output.Destroy()
	s.session.Destroy()
}

var _ port.Classifier = (*Classifier)(nil)
