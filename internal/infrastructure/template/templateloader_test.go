package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"singmerge/internal/shared/logger"
)

func writeTemplate(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestTemplateLoader_Load(t *testing.T) {
	body := `{"outbounds":[{"tag":"direct","type":"direct"}]}`
	loader := NewTemplateLoader(writeTemplate(t, body), logger.NewNopLogger())

	require.NoError(t, loader.Load())
	assert.True(t, loader.HasTemplate())

	first, ok := loader.Get()
	require.True(t, ok)
	assert.Equal(t, body, string(first))

	first[0] = 'X'
	second, _ := loader.Get()
	assert.Equal(t, body, string(second), "callers get independent copies")
}

func TestTemplateLoader_MissingFile(t *testing.T) {
	loader := NewTemplateLoader(filepath.Join(t.TempDir(), "absent.json"), logger.NewNopLogger())

	require.NoError(t, loader.Load())
	assert.False(t, loader.HasTemplate())

	content, ok := loader.Get()
	assert.False(t, ok)
	assert.Nil(t, content)
}

func TestTemplateLoader_NoPath(t *testing.T) {
	loader := NewTemplateLoader("", logger.NewNopLogger())
	require.NoError(t, loader.Load())
	assert.False(t, loader.HasTemplate())
}

func TestTemplateLoader_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{"outbounds":`},
		{name: "no outbounds", body: `{"route":{}}`},
		{name: "outbounds not array", body: `{"outbounds":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewTemplateLoader(writeTemplate(t, tt.body), logger.NewNopLogger())
			assert.Error(t, loader.Load())
			assert.False(t, loader.HasTemplate())
		})
	}
}
