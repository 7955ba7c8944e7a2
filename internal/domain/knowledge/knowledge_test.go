package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"plant-doctor/internal/domain/entity"
)

func TestDefault_ProfileLookup(t *testing.T) {
	kb := Default()

	require.Len(t, kb.Labels(), 16)
	require.Len(t, kb.LabelsOf(entity.CategoryDisease), 8)
	require.Len(t, kb.LabelsOf(entity.CategoryPest), 8)

	require.Equal(t, 0.7, kb.Difficulty("Thrips"))
	require.Equal(t, 0.3, kb.Difficulty("powdery mildew"))
	require.Equal(t, entity.CategoryPest, kb.Category("LEAF MINER"))
	require.Equal(t, "Трипсы", kb.DisplayName("Thrips"))
}

func TestProfile_UnknownLabelIsNeutral(t *testing.T) {
	kb := Default()

	p := kb.Profile("Mosaic Virus")
	require.Equal(t, entity.DefaultDifficulty, p.Difficulty)
	require.Equal(t, entity.CategoryUnknown, p.Category)
	require.Equal(t, "Mosaic Virus", p.DisplayName)

	_, ok := kb.Resolve("Mosaic Virus")
	require.False(t, ok)
}

func TestIsHealthy(t *testing.T) {
	kb := Default()

	for _, s := range []string{"none", "Healthy", "  HEALTHY ", entity.NoFindingLabel, "พืชสุขภาพดี", "Здоровое растение"} {
		require.True(t, kb.IsHealthy(s), s)
	}
	require.False(t, kb.IsHealthy("Thrips"))
	require.Equal(t, entity.CategoryHealthy, kb.Category("healthy"))
	require.Equal(t, "Растение здорово", kb.DisplayName("none"))
}

func TestResolve_CaseInsensitive(t *testing.T) {
	kb := Default()

	label, ok := kb.Resolve("  bemisia TABACI")
	require.True(t, ok)
	require.Equal(t, "Bemisia tabaci", label)
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		classes []entity.ClassProfile
	}{
		{"empty label", []entity.ClassProfile{{Label: " ", Category: entity.CategoryPest}}},
		{"bad category", []entity.ClassProfile{{Label: "X", Category: "virus"}}},
		{"difficulty above one", []entity.ClassProfile{{Label: "X", Category: entity.CategoryPest, Difficulty: 1.5}}},
		{"duplicate", []entity.ClassProfile{
			{Label: "Thrips", Category: entity.CategoryPest},
			{Label: "thrips", Category: entity.CategoryPest},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.classes, nil)
			require.Error(t, err)
		})
	}
}

func TestLabels_ReturnsCopy(t *testing.T) {
	kb := Default()
	labels := kb.Labels()
	labels[0] = "changed"
	require.Equal(t, "Anthracnose", kb.Labels()[0])
}

const yamlTable = `
healthy_aliases: ["ok", "no problem"]
classes:
  - label: Thrips
    display_name: Трипсы
    category: pest
    difficulty: 0.7
  - label: Rust Disease
    category: disease
`

func TestLoad_YAML(t *testing.T) {
	kb, err := Load([]byte(yamlTable), FormatYAML)
	require.NoError(t, err)

	require.Equal(t, []string{"Thrips", "Rust Disease"}, kb.Labels())
	require.Equal(t, 0.7, kb.Difficulty("Thrips"))
	require.Equal(t, entity.DefaultDifficulty, kb.Difficulty("Rust Disease"))
	require.Equal(t, "Rust Disease", kb.DisplayName("Rust Disease"))
	require.True(t, kb.IsHealthy("No Problem"))
	require.False(t, kb.IsHealthy("healthy"))
}

const tomlTable = `
[[classes]]
label = "Leaf Miner"
category = "pest"
difficulty = 0.5

[[classes]]
label = "Anthracnose"
category = "disease"
difficulty = 1.0
`

func TestLoad_TOML(t *testing.T) {
	kb, err := Load([]byte(tomlTable), FormatTOML)
	require.NoError(t, err)

	require.Equal(t, entity.CategoryPest, kb.Category("Leaf Miner"))
	require.Equal(t, 1.0, kb.Difficulty("Anthracnose"))
	require.True(t, kb.IsHealthy("healthy"))
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing classes", "healthy_aliases: [ok]\n"},
		{"empty classes", "classes: []\n"},
		{"unknown category", "classes:\n  - label: X\n    category: virus\n"},
		{"difficulty out of range", "classes:\n  - label: X\n    category: pest\n    difficulty: 2\n"},
		{"unknown field", "classes:\n  - label: X\n    category: pest\n    weight: 1\n"},
		{"empty document", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.data), FormatYAML)
			require.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "classes.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlTable), 0o600))
	kb, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, kb.Labels(), 2)

	path = filepath.Join(dir, "classes.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlTable), 0o600))
	_, err = LoadFile(path)
	require.NoError(t, err)

	path = filepath.Join(dir, "classes.ini")
	require.NoError(t, os.WriteFile(path, []byte(yamlTable), 0o600))
	_, err = LoadFile(path)
	require.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
