package container

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"plant-doctor/config"
	"plant-doctor/internal/infrastructure/llm"
	"plant-doctor/internal/infrastructure/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noModelConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.ModelPath = filepath.Join(t.TempDir(), "missing.onnx")
	cfg.ModelMetadataPath = filepath.Join(t.TempDir(), "missing.json")
	return cfg
}

func fixedAnswer(answer string) llm.VisionModel {
	return llm.VisionModelFunc(func(context.Context, []byte, string) (string, error) {
		return answer, nil
	})
}

func TestNew_LanguageModelOnly(t *testing.T) {
	c, err := New(noModelConfig(t), storage.NewMemoryUserRepository(), fixedAnswer("Thrips"), quietLogger())
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.UserService)
	require.NotNil(t, c.DiagnosisService)
	require.Len(t, c.Knowledge.Labels(), 16)
}

func TestNew_NoSource(t *testing.T) {
	_, err := New(noModelConfig(t), storage.NewMemoryUserRepository(), nil, quietLogger())
	require.Error(t, err)
}

func TestNew_BadTieBreak(t *testing.T) {
	cfg := noModelConfig(t)
	cfg.TieBreak = "coin-flip"

	_, err := New(cfg, storage.NewMemoryUserRepository(), fixedAnswer("Thrips"), quietLogger())
	require.Error(t, err)
}

func TestNew_KnowledgeBaseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
classes:
  - label: Thrips
    category: pest
    difficulty: 0.7
  - label: Rust Disease
    category: disease
`), 0o644))

	cfg := noModelConfig(t)
	cfg.KnowledgeBasePath = path

	c, err := New(cfg, storage.NewMemoryUserRepository(), fixedAnswer("Thrips"), quietLogger())
	require.NoError(t, err)
	require.Equal(t, []string{"Thrips", "Rust Disease"}, c.Knowledge.Labels())

	cfg.KnowledgeBasePath = filepath.Join(t.TempDir(), "classes.json")
	_, err = New(cfg, storage.NewMemoryUserRepository(), fixedAnswer("Thrips"), quietLogger())
	require.Error(t, err)
}
