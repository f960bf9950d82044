package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagTexSize = flag.Int("texsize", 0, "Destination texture size in pixels (square)")
	flagGutter  = flag.Int("gutter", -1, "Inter-chart gutter width in pixels")
	flagPreview = flag.String("preview", "", "Write atlas preview PNGs to this directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagTexSize > 0 {
		cfg.Texture.Width = *flagTexSize
		cfg.Texture.Height = *flagTexSize
	}
	if *flagGutter >= 0 {
		cfg.Packing.GutterWidth = *flagGutter
	}
	if *flagPreview != "" {
		cfg.Preview.Enabled = true
		cfg.Preview.Dir = *flagPreview
	}
}
