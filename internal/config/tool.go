package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Tool is the optional tool-level configuration (doc-builder.yaml). It only
// carries defaults; CLI flags take precedence over everything here.
type Tool struct {
	TemplateDir string        `yaml:"template_dir"`
	OutputDir   string        `yaml:"output_dir"`
	Image       ImageConfig   `yaml:"image,omitempty"`
	Metrics     MetricsConfig `yaml:"metrics,omitempty"`
	Ledger      LedgerConfig  `yaml:"ledger,omitempty"`
}

// ImageConfig holds rendering knobs for embedded images.
type ImageConfig struct {
	// WidthInches is the width images are sized to in the document.
	WidthInches float64 `yaml:"width_inches,omitempty"`
	// WidthPixels and HeightPixels control the generated PNG canvas.
	WidthPixels  int `yaml:"width_pixels,omitempty"`
	HeightPixels int `yaml:"height_pixels,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint served in watch mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address,omitempty"`
}

// LedgerConfig controls the sqlite run-history database.
type LedgerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// LoadTool loads doc-builder.yaml from the given path. A missing file is not
// an error: defaults apply. Environment variables referenced in the file are
// expanded; a .env file next to the working directory is loaded first so
// configs can reference locally-defined values.
func LoadTool(path string) (*Tool, error) {
	// Best effort; absence of .env is the normal case.
	_ = godotenv.Load()

	cfg := &Tool{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyToolDefaults(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("read tool config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("unmarshal tool config: %w", err)
	}
	applyToolDefaults(cfg)
	return cfg, nil
}

func applyToolDefaults(cfg *Tool) {
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = "templates"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "generated_studies"
	}
	if cfg.Image.WidthInches <= 0 {
		cfg.Image.WidthInches = 5.0
	}
	if cfg.Image.WidthPixels <= 0 {
		cfg.Image.WidthPixels = 800
	}
	if cfg.Image.HeightPixels <= 0 {
		cfg.Image.HeightPixels = 800
	}
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9190"
	}
	if cfg.Ledger.Path == "" {
		cfg.Ledger.Path = "doc-builder.db"
	}
}

// DefaultToolConfig is the starter configuration written by `doc-builder init`.
const DefaultToolConfig = `# doc-builder configuration
template_dir: templates
output_dir: generated_studies

image:
  width_inches: 5.0
  width_pixels: 800
  height_pixels: 800

metrics:
  enabled: false
  address: ":9190"

ledger:
  enabled: true
  path: doc-builder.db
`
