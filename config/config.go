// Package config defines the playback and view settings consumed by the
// pipeline. Settings are plain values passed down at construction — there
// is no process-wide settings singleton — and can be loaded from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Playback holds the buffering knobs.
type Playback struct {
	// BufferSize is the number of frames prefetched ahead of the cursor.
	BufferSize int `yaml:"buffer_size"`
	// AudioBufferSize is the audio prefetch depth.
	AudioBufferSize int `yaml:"audio_buffer_size"`
	// CacheSize bounds the decoded-frame cache; 0 disables caching.
	CacheSize int `yaml:"cache_size"`
}

// ChromaResizer selects the chroma resampling filter used during planar
// conversion. The filter name and parameters are interpreted by the engine.
type ChromaResizer struct {
	Filter string  `yaml:"filter"`
	ParamA float64 `yaml:"param_a"`
	ParamB float64 `yaml:"param_b"`
}

// View holds the display conversion knobs.
type View struct {
	// PackingMethod selects the packer backend: native, vectorized,
	// scalar or auto.
	PackingMethod string `yaml:"packing_method"`
	// BitDepth is the packed output depth, 8 or 10.
	BitDepth int `yaml:"bit_depth"`
	// DitherType names the dithering mode used during conversion.
	DitherType    string        `yaml:"dither_type"`
	ChromaResizer ChromaResizer `yaml:"chroma_resizer"`
}

// Settings is the full configuration tree.
type Settings struct {
	Playback Playback `yaml:"playback"`
	View     View     `yaml:"view"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		Playback: Playback{
			BufferSize:      12,
			AudioBufferSize: 24,
			CacheSize:       0,
		},
		View: View{
			PackingMethod: "auto",
			BitDepth:      8,
			DitherType:    "error_diffusion",
			ChromaResizer: ChromaResizer{Filter: "bicubic", ParamA: 0, ParamB: 0.5},
		},
	}
}

// Load reads settings from a YAML file, layered over the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate rejects settings the pipeline cannot run with.
func (s Settings) Validate() error {
	if s.Playback.BufferSize < 1 {
		return fmt.Errorf("playback buffer size must be at least 1, got %d", s.Playback.BufferSize)
	}
	if s.Playback.AudioBufferSize < 1 {
		return fmt.Errorf("audio buffer size must be at least 1, got %d", s.Playback.AudioBufferSize)
	}
	if s.Playback.CacheSize < 0 {
		return fmt.Errorf("cache size must not be negative, got %d", s.Playback.CacheSize)
	}
	if s.View.BitDepth != 8 && s.View.BitDepth != 10 {
		return fmt.Errorf("bit depth must be 8 or 10, got %d", s.View.BitDepth)
	}
	switch s.View.PackingMethod {
	case "auto", "native", "vectorized", "scalar":
	default:
		return fmt.Errorf("unknown packing method %q", s.View.PackingMethod)
	}
	return nil
}
