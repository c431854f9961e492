package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	AppName         = "xcodebuild-mcp"
	DefaultMaxLines = 200
	DefaultLogLevel = "info"
)

// Timeouts bounds external tool invocations. Values are Go duration strings.
type Timeouts struct {
	Query string `json:"query,omitempty" yaml:"query,omitempty"`
	Build string `json:"build,omitempty" yaml:"build,omitempty"`
}

// Config holds all xcodebuild-mcp configuration.
type Config struct {
	DeveloperDir   string   `json:"developer_dir,omitempty" yaml:"developer_dir,omitempty"`
	MaxOutputLines int      `json:"max_output_lines,omitempty" yaml:"max_output_lines,omitempty"`
	HistoryDir     string   `json:"history_dir,omitempty" yaml:"history_dir,omitempty"`
	LogLevel       string   `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogFile        string   `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	Timeouts       Timeouts `json:"timeouts,omitempty" yaml:"timeouts,omitempty"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		MaxOutputLines: DefaultMaxLines,
		LogLevel:       DefaultLogLevel,
		Timeouts: Timeouts{
			Query: "2m",
			Build: "60m",
		},
	}
}

// GlobalDir returns ~/.config/xcodebuild-mcp.
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Load reads and merges the global config and an optional explicit file.
// Order: defaults → global (~/.config/xcodebuild-mcp/config.{json,yaml,yml}) → path.
// A missing global file is ignored; a missing or malformed explicit file is an error.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if dir, err := GlobalDir(); err == nil {
		for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
			mergeFromFile(&cfg, filepath.Join(dir, name))
		}
	}

	if path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			return cfg, fmt.Errorf("loading config %s: %w", path, err)
		}
		merge(&cfg, fileCfg)
	}

	if _, err := cfg.QueryTimeout(); err != nil {
		return cfg, err
	}
	if _, err := cfg.BuildTimeout(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// QueryTimeout parses the listing/inventory timeout.
func (c Config) QueryTimeout() (time.Duration, error) {
	return parseTimeout("timeouts.query", c.Timeouts.Query)
}

// BuildTimeout parses the build/test timeout.
func (c Config) BuildTimeout() (time.Duration, error) {
	return parseTimeout("timeouts.build", c.Timeouts.Build)
}

func parseTimeout(key, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, value)
	}
	return d, nil
}

// Marshal renders the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func readFile(path string) (Config, error) {
	var fileCfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return fileCfg, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fileCfg)
	default:
		err = json.Unmarshal(data, &fileCfg)
	}
	return fileCfg, err
}

func mergeFromFile(cfg *Config, path string) {
	fileCfg, err := readFile(path)
	if err != nil {
		return
	}
	merge(cfg, fileCfg)
}

func merge(cfg *Config, fileCfg Config) {
	if fileCfg.DeveloperDir != "" {
		cfg.DeveloperDir = fileCfg.DeveloperDir
	}
	if fileCfg.MaxOutputLines != 0 {
		cfg.MaxOutputLines = fileCfg.MaxOutputLines
	}
	if fileCfg.HistoryDir != "" {
		cfg.HistoryDir = expandHome(fileCfg.HistoryDir)
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogFile != "" {
		cfg.LogFile = expandHome(fileCfg.LogFile)
	}
	if fileCfg.Timeouts.Query != "" {
		cfg.Timeouts.Query = fileCfg.Timeouts.Query
	}
	if fileCfg.Timeouts.Build != "" {
		cfg.Timeouts.Build = fileCfg.Timeouts.Build
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
