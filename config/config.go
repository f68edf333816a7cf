// Package config provides CLI configuration management for the minutes command-line tool.
// It supports loading configuration from YAML files, a .env file, environment variables,
// and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is the rendered plain-text minutes document.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Summarizer backends.
const (
	SummarizerExtractive = "extractive"
	SummarizerOpenAI     = "openai"
)

// Session store backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Default configuration values.
const (
	DefaultTimeout        = 5 * time.Minute
	DefaultOutputFormat   = OutputFormatText
	DefaultConfigDir      = ".minutes"
	DefaultConfigFile     = "config.yaml"
	DefaultEnvFile        = ".env"
	DefaultChunkMaxChars  = 1600
	DefaultModel          = "gpt-4o-mini"
	DefaultDevice         = "cpu"
	DefaultMaxInputChars  = 3500
	DefaultMergeThreshold = 0.92
	DefaultSessionTTL     = 24 * time.Hour
	DefaultRedisURL       = "redis://localhost:6379/0"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "MINUTES_"

// SummarizerConfig selects the summarizer backend.
type SummarizerConfig struct {
	// Backend is "extractive" (no model) or "openai".
	Backend string `yaml:"backend"`

	// Model and Device form the backend cache key.
	Model  string `yaml:"model"`
	Device string `yaml:"device,omitempty"`

	// BaseURL points the openai backend at any OpenAI-compatible endpoint.
	BaseURL string `yaml:"base_url,omitempty"`

	// MaxInputChars caps the text sent to the global summary call.
	MaxInputChars int `yaml:"max_input_chars"`
}

// DiarizationConfig controls speaker alignment of transcription segments.
type DiarizationConfig struct {
	Enabled bool `yaml:"enabled"`

	// TurnsFile overrides the default <audio>.turns.json location.
	TurnsFile string `yaml:"turns_file,omitempty"`

	// MergeThreshold is the Jaro-Winkler similarity above which speaker
	// labels are merged. Zero disables merging.
	MergeThreshold float64 `yaml:"merge_threshold"`
}

// SessionConfig selects where review sessions are kept.
type SessionConfig struct {
	Backend  string        `yaml:"backend"`
	RedisURL string        `yaml:"redis_url,omitempty"`
	TTL      time.Duration `yaml:"ttl"`
}

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`

	// Timeout bounds one pipeline run.
	Timeout time.Duration `yaml:"timeout"`

	// ChunkMaxChars is the chunker's size ceiling.
	ChunkMaxChars int `yaml:"chunk_max_chars"`

	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Diarization DiarizationConfig `yaml:"diarization"`
	Session     SessionConfig     `yaml:"session"`

	// DebugDir, when set, receives per-run intermediate artifacts.
	DebugDir string `yaml:"debug_dir,omitempty"`

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		OutputFormat:  DefaultOutputFormat,
		Timeout:       DefaultTimeout,
		ChunkMaxChars: DefaultChunkMaxChars,
		Summarizer: SummarizerConfig{
			Backend:       SummarizerExtractive,
			Model:         DefaultModel,
			Device:        DefaultDevice,
			MaxInputChars: DefaultMaxInputChars,
		},
		Diarization: DiarizationConfig{
			MergeThreshold: DefaultMergeThreshold,
		},
		Session: SessionConfig{
			Backend:  SessionMemory,
			RedisURL: DefaultRedisURL,
			TTL:      DefaultSessionTTL,
		},
	}
}

// ConfigDir returns the configuration directory path.
// Uses $MINUTES_CONFIG_DIR if set, otherwise ~/.minutes
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.minutes/config.yaml or $MINUTES_CONFIG_DIR/config.yaml)
// 3. .env in the working directory (never overrides variables already set)
// 4. MINUTES_* environment variables
// Command-line flags are applied by the caller, which then calls Validate.
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := loadDotEnv(DefaultEnvFile); err != nil {
		return nil, err
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFile returns the defaults overlaid with the config file only, without
// .env or environment overrides. It is what 'config set' edits.
func LoadFile() (*CLIConfig, error) {
	cfg := DefaultConfig()
	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}
	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}
	return cfg, nil
}

// loadDotEnv reads path into the process environment. A missing file is not
// an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// configFile mirrors CLIConfig with durations as strings.
type configFile struct {
	OutputFormat  OutputFormat      `yaml:"output_format"`
	Debug         bool              `yaml:"debug,omitempty"`
	Timeout       string            `yaml:"timeout"`
	ChunkMaxChars int               `yaml:"chunk_max_chars"`
	Summarizer    SummarizerConfig  `yaml:"summarizer"`
	Diarization   DiarizationConfig `yaml:"diarization"`
	Session       struct {
		Backend  string `yaml:"backend"`
		RedisURL string `yaml:"redis_url,omitempty"`
		TTL      string `yaml:"ttl"`
	} `yaml:"session"`
	DebugDir    string `yaml:"debug_dir,omitempty"`
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

// loadFromFile loads configuration from a YAML file. Absent keys keep
// their current values.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	cfg.Debug = fileCfg.Debug
	if fileCfg.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	if fileCfg.ChunkMaxChars != 0 {
		cfg.ChunkMaxChars = fileCfg.ChunkMaxChars
	}

	s := fileCfg.Summarizer
	if s.Backend != "" {
		cfg.Summarizer.Backend = s.Backend
	}
	if s.Model != "" {
		cfg.Summarizer.Model = s.Model
	}
	if s.Device != "" {
		cfg.Summarizer.Device = s.Device
	}
	if s.BaseURL != "" {
		cfg.Summarizer.BaseURL = s.BaseURL
	}
	if s.MaxInputChars != 0 {
		cfg.Summarizer.MaxInputChars = s.MaxInputChars
	}

	cfg.Diarization.Enabled = fileCfg.Diarization.Enabled
	if fileCfg.Diarization.TurnsFile != "" {
		cfg.Diarization.TurnsFile = fileCfg.Diarization.TurnsFile
	}
	if fileCfg.Diarization.MergeThreshold != 0 {
		cfg.Diarization.MergeThreshold = fileCfg.Diarization.MergeThreshold
	}

	if fileCfg.Session.Backend != "" {
		cfg.Session.Backend = fileCfg.Session.Backend
	}
	if fileCfg.Session.RedisURL != "" {
		cfg.Session.RedisURL = fileCfg.Session.RedisURL
	}
	if fileCfg.Session.TTL != "" {
		ttl, err := time.ParseDuration(fileCfg.Session.TTL)
		if err != nil {
			return fmt.Errorf("parsing session ttl: %w", err)
		}
		cfg.Session.TTL = ttl
	}

	if fileCfg.DebugDir != "" {
		cfg.DebugDir = fileCfg.DebugDir
	}
	if fileCfg.MetricsFile != "" {
		cfg.MetricsFile = fileCfg.MetricsFile
	}

	return nil
}

// loadFromEnv overlays MINUTES_* environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) error {
	for _, key := range Keys() {
		v, ok := os.LookupEnv(envName(key))
		if !ok || v == "" {
			continue
		}
		if err := cfg.Set(key, v); err != nil {
			return fmt.Errorf("%s: %w", envName(key), err)
		}
	}
	return nil
}

// envName maps a config key such as "summarizer.model" to
// MINUTES_SUMMARIZER_MODEL.
func envName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Keys lists every key accepted by Set, in display order.
func Keys() []string {
	return []string{
		"output_format",
		"debug",
		"timeout",
		"chunk_max_chars",
		"summarizer.backend",
		"summarizer.model",
		"summarizer.device",
		"summarizer.base_url",
		"summarizer.max_input_chars",
		"diarization.enabled",
		"diarization.turns_file",
		"diarization.merge_threshold",
		"session.backend",
		"session.redis_url",
		"session.ttl",
		"debug_dir",
		"metrics_file",
	}
}

// Set assigns one configuration value by key. Values are parsed but not
// validated as a whole; call Validate afterwards.
func (c *CLIConfig) Set(key, value string) error {
	switch key {
	case "output_format":
		format := OutputFormat(value)
		if !format.IsValid() {
			return fmt.Errorf("invalid output format: %s (must be text, json, or yaml)", value)
		}
		c.OutputFormat = format
	case "debug":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("invalid debug value: %w", err)
		}
		c.Debug = b
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		c.Timeout = d
	case "chunk_max_chars":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid chunk_max_chars value: %w", err)
		}
		c.ChunkMaxChars = n
	case "summarizer.backend":
		c.Summarizer.Backend = value
	case "summarizer.model":
		c.Summarizer.Model = value
	case "summarizer.device":
		c.Summarizer.Device = value
	case "summarizer.base_url":
		c.Summarizer.BaseURL = value
	case "summarizer.max_input_chars":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid summarizer.max_input_chars value: %w", err)
		}
		c.Summarizer.MaxInputChars = n
	case "diarization.enabled":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("invalid diarization.enabled value: %w", err)
		}
		c.Diarization.Enabled = b
	case "diarization.turns_file":
		c.Diarization.TurnsFile = value
	case "diarization.merge_threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid diarization.merge_threshold value: %w", err)
		}
		c.Diarization.MergeThreshold = f
	case "session.backend":
		c.Session.Backend = value
	case "session.redis_url":
		c.Session.RedisURL = value
	case "session.ttl":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid session.ttl value: %w", err)
		}
		c.Session.TTL = d
	case "debug_dir":
		c.DebugDir = value
	case "metrics_file":
		c.MetricsFile = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func parseBool(value string) (bool, error) {
	switch value {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%s (must be true or false)", value)
	}
}

// Validate checks that the configuration is valid.
func (c *CLIConfig) Validate() error {
	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or yaml)", c.OutputFormat)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if c.ChunkMaxChars <= 0 {
		return fmt.Errorf("chunk_max_chars must be positive")
	}

	switch c.Summarizer.Backend {
	case SummarizerExtractive:
	case SummarizerOpenAI:
		if c.Summarizer.Model == "" {
			return fmt.Errorf("summarizer.model is required for the openai backend")
		}
	default:
		return fmt.Errorf("invalid summarizer.backend: %q (must be extractive or openai)", c.Summarizer.Backend)
	}

	if c.Summarizer.MaxInputChars <= 0 {
		return fmt.Errorf("summarizer.max_input_chars must be positive")
	}

	if t := c.Diarization.MergeThreshold; t < 0 || t > 1 {
		return fmt.Errorf("diarization.merge_threshold must be between 0 and 1")
	}

	switch c.Session.Backend {
	case SessionMemory:
	case SessionRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("session.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid session.backend: %q (must be memory or redis)", c.Session.Backend)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}

	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *CLIConfig) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)

	fileCfg := configFile{
		OutputFormat:  cfg.OutputFormat,
		Debug:         cfg.Debug,
		Timeout:       cfg.Timeout.String(),
		ChunkMaxChars: cfg.ChunkMaxChars,
		Summarizer:    cfg.Summarizer,
		Diarization:   cfg.Diarization,
		DebugDir:      cfg.DebugDir,
		MetricsFile:   cfg.MetricsFile,
	}
	fileCfg.Session.Backend = cfg.Session.Backend
	fileCfg.Session.RedisURL = cfg.Session.RedisURL
	fileCfg.Session.TTL = cfg.Session.TTL.String()

	data, err := yaml.Marshal(&fileCfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
