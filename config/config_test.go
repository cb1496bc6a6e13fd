package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsAreValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())

	assert.Equal(t, 12, s.Playback.BufferSize)
	assert.Equal(t, 24, s.Playback.AudioBufferSize)
	assert.Equal(t, 0, s.Playback.CacheSize)
	assert.Equal(t, "auto", s.View.PackingMethod)
	assert.Equal(t, 8, s.View.BitDepth)
	assert.Equal(t, "error_diffusion", s.View.DitherType)
	assert.Equal(t, "bicubic", s.View.ChromaResizer.Filter)
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	data := []byte(`
playback:
  buffer_size: 6
view:
  bit_depth: 10
  chroma_resizer:
    filter: lanczos
    param_a: 3
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	// Overridden values.
	assert.Equal(t, 6, s.Playback.BufferSize)
	assert.Equal(t, 10, s.View.BitDepth)
	assert.Equal(t, "lanczos", s.View.ChromaResizer.Filter)
	assert.Equal(t, 3.0, s.View.ChromaResizer.ParamA)

	// Untouched keys keep their defaults.
	assert.Equal(t, 24, s.Playback.AudioBufferSize)
	assert.Equal(t, "auto", s.View.PackingMethod)
	assert.Equal(t, "error_diffusion", s.View.DitherType)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("playback: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("view:\n  bit_depth: 12\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		valid  bool
	}{
		{name: "defaults", mutate: func(s *Settings) {}, valid: true},
		{name: "zero_buffer", mutate: func(s *Settings) { s.Playback.BufferSize = 0 }},
		{name: "zero_audio_buffer", mutate: func(s *Settings) { s.Playback.AudioBufferSize = 0 }},
		{name: "negative_cache", mutate: func(s *Settings) { s.Playback.CacheSize = -1 }},
		{name: "positive_cache", mutate: func(s *Settings) { s.Playback.CacheSize = 48 }, valid: true},
		{name: "bit_depth_10", mutate: func(s *Settings) { s.View.BitDepth = 10 }, valid: true},
		{name: "bit_depth_12", mutate: func(s *Settings) { s.View.BitDepth = 12 }},
		{name: "scalar_method", mutate: func(s *Settings) { s.View.PackingMethod = "scalar" }, valid: true},
		{name: "unknown_method", mutate: func(s *Settings) { s.View.PackingMethod = "simd512" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			err := s.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
