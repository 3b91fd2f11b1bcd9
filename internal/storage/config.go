package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config holds the optional user configuration. The file is JSONC, so
// hand-edited configs may carry comments and trailing commas.
type Config struct {
	Schema          int    `json:"schema"`
	DefaultCategory string `json:"default_category,omitempty"`
	DefaultPriority string `json:"default_priority,omitempty"`
}

const configFile = "config.json"

func defaultConfig() Config {
	return Config{Schema: 1}
}

// LoadConfig reads config.json under the store root. A missing or
// malformed file falls back to defaults; configuration problems never
// stop the program.
func (d *Dir) LoadConfig() Config {
	b, err := os.ReadFile(filepath.Join(d.Root, configFile))
	if err != nil {
		return defaultConfig()
	}
	standardized, err := hujson.Standardize(b)
	if err != nil {
		return defaultConfig()
	}
	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return defaultConfig()
	}
	if cfg.Schema == 0 {
		cfg.Schema = 1
	}
	return cfg
}
