package knowledge

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"plant-doctor/internal/domain/entity"
)

//go:embed schema.json
var schemaJSON []byte

var fileSchema = mustCompileSchema(schemaJSON, "classes.schema.json")

// Format: формат файла справочника.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

type fileClass struct {
	Label       string   `yaml:"label" toml:"label"`
	DisplayName string   `yaml:"display_name" toml:"display_name"`
	Category    string   `yaml:"category" toml:"category"`
	Difficulty  *float64 `yaml:"difficulty" toml:"difficulty"`
}

type fileTable struct {
	HealthyAliases []string    `yaml:"healthy_aliases" toml:"healthy_aliases"`
	Classes        []fileClass `yaml:"classes" toml:"classes"`
}

// LoadFile читает справочник из YAML или TOML (по расширению).
func LoadFile(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read class table: %w", err)
	}

	var format Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".toml":
		format = FormatTOML
	default:
		return nil, fmt.Errorf("class table %s: unsupported extension", path)
	}

	b, err := Load(data, format)
	if err != nil {
		return nil, fmt.Errorf("class table %s: %w", path, err)
	}
	return b, nil
}

// Load разбирает справочник, проверяет его по схеме и строит Base.
// Без healthy_aliases используются DefaultHealthyAliases, без difficulty: 0.5.
func Load(data []byte, format Format) (*Base, error) {
	var doc map[string]any
	if err := decode(data, format, &doc); err != nil {
		return nil, err
	}
	if err := validateDoc(doc); err != nil {
		return nil, err
	}

	var table fileTable
	if err := decode(data, format, &table); err != nil {
		return nil, err
	}

	classes := make([]entity.ClassProfile, 0, len(table.Classes))
	for _, c := range table.Classes {
		difficulty := entity.DefaultDifficulty
		if c.Difficulty != nil {
			difficulty = *c.Difficulty
		}
		classes = append(classes, entity.ClassProfile{
			Label:       c.Label,
			DisplayName: c.DisplayName,
			Category:    entity.Category(c.Category),
			Difficulty:  difficulty,
		})
	}

	aliases := table.HealthyAliases
	if aliases == nil {
		aliases = DefaultHealthyAliases
	}
	return New(classes, aliases)
}

func decode(data []byte, format Format, out any) error {
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse yaml: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), out); err != nil {
			return fmt.Errorf("parse toml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	return nil
}

// validateDoc прогоняет документ через JSON, чтобы привести числа
// и вложенные карты YAML/TOML к виду, который ожидает валидатор схемы.
func validateDoc(doc map[string]any) error {
	if len(doc) == 0 {
		return errors.New("class table is empty")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert class table: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("convert class table: %w", err)
	}
	if err := fileSchema.Validate(inst); err != nil {
		return fmt.Errorf("class table does not match schema: %w", err)
	}
	return nil
}

func mustCompileSchema(raw []byte, name string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}
