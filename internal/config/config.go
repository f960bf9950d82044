// Package config handles tool configuration loading and management.
package config

// Config holds all atlaspack settings.
type Config struct {
	Packing PackingConfig `yaml:"packing"`
	Texture TextureConfig `yaml:"texture"`
	Preview PreviewConfig `yaml:"preview"`
	Logging LoggingConfig `yaml:"logging"`
}

// PackingConfig bounds the packing algorithm. The defaults match the
// rasterizer and convergence limits the library guarantees.
type PackingConfig struct {
	ReferenceResolution int     `yaml:"reference_resolution"`
	GutterWidth         int     `yaml:"gutter_width"`
	RotationNum         int     `yaml:"rotation_num"`
	PermutationCutoff   int     `yaml:"permutation_cutoff"`
	MaxRasterDim        float64 `yaml:"max_raster_dim"`
	MaxContainerSize    int     `yaml:"max_container_size"`
	MaxPackAttempts     int     `yaml:"max_pack_attempts"`
	Growth              float64 `yaml:"growth"`
}

// TextureConfig describes the destination texture when the input format
// carries no texture-size hints of its own.
type TextureConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// PreviewConfig controls atlas preview output.
type PreviewConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	MaxDim  int    `yaml:"max_dim"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Packing: PackingConfig{
			ReferenceResolution: 16384,
			GutterWidth:         4,
			RotationNum:         4,
			PermutationCutoff:   50,
			MaxRasterDim:        32766,
			MaxContainerSize:    20000,
			MaxPackAttempts:     50,
			Growth:              1.1,
		},
		Texture: TextureConfig{
			Width:  1024,
			Height: 1024,
		},
		Preview: PreviewConfig{
			Enabled: false,
			Dir:     "preview",
			MaxDim:  1024,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
