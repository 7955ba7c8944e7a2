package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`

	ModelPath         string `mapstructure:"MODEL_PATH"`
	ModelMetadataPath string `mapstructure:"MODEL_METADATA_PATH"`
	OnnxRuntimeLib    string `mapstructure:"ONNXRUNTIME_LIB"`
	OnnxSessions      int    `mapstructure:"ONNX_SESSIONS"`

	// Пусто: встроенная таблица классов.
	KnowledgeBasePath string `mapstructure:"KNOWLEDGE_BASE_PATH"`

	DetectionThreshold float64       `mapstructure:"DETECTION_THRESHOLD"`
	UseTTA             bool          `mapstructure:"USE_TTA"`
	TTAExtended        bool          `mapstructure:"TTA_EXTENDED"`
	Enhance            bool          `mapstructure:"ENHANCE"`
	TTAWorkers         int           `mapstructure:"TTA_WORKERS"`
	TieBreak           string        `mapstructure:"TIE_BREAK"`
	AnalyzerTimeout    time.Duration `mapstructure:"ANALYZER_TIMEOUT"`
	DiagnosisWorkers   int           `mapstructure:"DIAGNOSIS_WORKERS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

// Default возвращает конфигурацию без переменных окружения.
func Default() *Config {
	return &Config{
		ModelPath:          "models/model.onnx",
		ModelMetadataPath:  "models/model_metadata.json",
		OnnxSessions:       2,
		DetectionThreshold: 0.4,
		TTAWorkers:         3,
		TieBreak:           "classifier-rank",
		AnalyzerTimeout:    60 * time.Second,
		DiagnosisWorkers:   4,
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return FromEnv(env)
}

// FromEnv накладывает переменные на значения по умолчанию.
// Пустые значения не перекрывают умолчания.
func FromEnv(env map[string]string) (*Config, error) {
	cfg := Default()

	input := make(map[string]any, len(env))
	for k, v := range env {
		if v = strings.TrimSpace(v); v != "" {
			input[k] = v
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(input); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DetectionThreshold < 0 || c.DetectionThreshold > 1 {
		return fmt.Errorf("config: DETECTION_THRESHOLD %v is outside [0,1]", c.DetectionThreshold)
	}
	if c.OnnxSessions < 1 {
		return fmt.Errorf("config: ONNX_SESSIONS must be at least 1")
	}
	if c.TTAWorkers < 1 {
		return fmt.Errorf("config: TTA_WORKERS must be at least 1")
	}
	if c.DiagnosisWorkers < 1 {
		return fmt.Errorf("config: DIAGNOSIS_WORKERS must be at least 1")
	}
	if c.AnalyzerTimeout < 0 {
		return fmt.Errorf("config: ANALYZER_TIMEOUT must not be negative")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// SlogLevel переводит LOG_LEVEL в уровень slog.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: unknown LOG_LEVEL %q", c.LogLevel)
	}
	return level, nil
}
