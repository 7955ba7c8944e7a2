package onnx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const validMetadata = `{
	"input_shape": [1, 224, 224, 3],
	"output_shape": [1, 3],
	"classes": ["Healthy", "Powdery mildew", "Thrips"],
	"image_size": 224
}`

func TestParseMetadata_Defaults(t *testing.T) {
	m, err := ParseMetadata([]byte(validMetadata))
	require.NoError(t, err)
	require.Equal(t, "input", m.InputName)
	require.Equal(t, "output", m.OutputName)
	require.Equal(t, LayoutNHWC, m.Layout)
	require.Equal(t, NormMobileNetV2, m.Normalization)
	require.False(t, m.ApplySoftmax)
	require.Equal(t, []string{"Healthy", "Powdery mildew", "Thrips"}, m.Classes)
}

func TestParseMetadata_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `{`},
		{name: "no classes", raw: `{"input_shape":[1,3,2,2],"output_shape":[1,0],"image_size":2}`},
		{name: "zero image size", raw: `{"input_shape":[1,3,2,2],"output_shape":[1,1],"classes":["a"]}`},
		{name: "input shape mismatch", raw: `{"input_shape":[1,3,4,4],"output_shape":[1,1],"classes":["a"],"image_size":2}`},
		{name: "output shape mismatch", raw: `{"input_shape":[1,3,2,2],"output_shape":[1,2],"classes":["a"],"image_size":2}`},
		{name: "bad layout", raw: `{"input_shape":[1,3,2,2],"output_shape":[1,1],"classes":["a"],"image_size":2,"layout":"chw"}`},
		{name: "bad normalization", raw: `{"input_shape":[1,3,2,2],"output_shape":[1,1],"classes":["a"],"image_size":2,"normalization":"imagenet"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetadata([]byte(tt.raw))
			require.Error(t, err)
		})
	}
}

func TestLoadMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model_metadata.json")
	require.NoError(t, os.WriteFile(path, []byte(validMetadata), 0o644))

	m, err := LoadMetadata(path)
	require.NoError(t, err)
	require.Equal(t, 224, m.ImageSize)

	_, err = LoadMetadata(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
