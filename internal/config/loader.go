package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// File holds launcher parameters that are not part of the model environment.
// Zero values mean "unspecified" and are replaced by Defaults during Merge.
type File struct {
	LlamaBin            string   `json:"llama_bin" yaml:"llama_bin" toml:"llama_bin"`
	UpstreamHost        string   `json:"upstream_host" yaml:"upstream_host" toml:"upstream_host"`
	ReadyTimeoutSeconds int      `json:"ready_timeout_seconds" yaml:"ready_timeout_seconds" toml:"ready_timeout_seconds"`
	ExtraArgs           []string `json:"extra_args" yaml:"extra_args" toml:"extra_args"`
	LogLevel            string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat           string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	CORSOrigins         []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	MaxBodyBytes        int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	Verbose             bool     `json:"verbose" yaml:"verbose" toml:"verbose"`
}

// Load reads a launcher file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (File, error) {
	var cfg File
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
