package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config directory and working directory at fresh temp
// dirs and clears every MINUTES_* variable for the duration of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvPrefix+"CONFIG_DIR", dir)
	for _, key := range Keys() {
		t.Setenv(envName(key), "")
	}
	chdirForTest(t, t.TempDir())
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, OutputFormatText, cfg.OutputFormat)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, 1600, cfg.ChunkMaxChars)
	assert.Equal(t, SummarizerExtractive, cfg.Summarizer.Backend)
	assert.Equal(t, DefaultModel, cfg.Summarizer.Model)
	assert.Equal(t, 3500, cfg.Summarizer.MaxInputChars)
	assert.False(t, cfg.Diarization.Enabled)
	assert.InDelta(t, 0.92, cfg.Diarization.MergeThreshold, 1e-9)
	assert.Equal(t, SessionMemory, cfg.Session.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Debug)
	assert.NoError(t, cfg.Validate())
}

func TestOutputFormat_IsValid(t *testing.T) {
	tests := []struct {
		format OutputFormat
		valid  bool
	}{
		{OutputFormatText, true},
		{OutputFormatJSON, true},
		{OutputFormatYAML, true},
		{"invalid", false},
		{"", false},
		{"JSON", false}, // Case sensitive
	}

	for _, tc := range tests {
		assert.Equal(t, tc.valid, tc.format.IsValid(), string(tc.format))
	}
	assert.Equal(t, "yaml", OutputFormatYAML.String())
}

func TestCLIConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CLIConfig)
		errMsg string
	}{
		{"bad output format", func(c *CLIConfig) { c.OutputFormat = "xml" }, "invalid output_format"},
		{"zero timeout", func(c *CLIConfig) { c.Timeout = 0 }, "timeout must be positive"},
		{"negative chunk size", func(c *CLIConfig) { c.ChunkMaxChars = -1 }, "chunk_max_chars must be positive"},
		{"unknown summarizer", func(c *CLIConfig) { c.Summarizer.Backend = "bart" }, "invalid summarizer.backend"},
		{"openai without model", func(c *CLIConfig) {
			c.Summarizer.Backend = SummarizerOpenAI
			c.Summarizer.Model = ""
		}, "summarizer.model is required"},
		{"zero input chars", func(c *CLIConfig) { c.Summarizer.MaxInputChars = 0 }, "max_input_chars must be positive"},
		{"threshold above one", func(c *CLIConfig) { c.Diarization.MergeThreshold = 1.5 }, "merge_threshold"},
		{"unknown session backend", func(c *CLIConfig) { c.Session.Backend = "disk" }, "invalid session.backend"},
		{"redis without url", func(c *CLIConfig) {
			c.Session.Backend = SessionRedis
			c.Session.RedisURL = ""
		}, "redis_url is required"},
		{"zero ttl", func(c *CLIConfig) { c.Session.TTL = 0 }, "session.ttl must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv(EnvPrefix+"CONFIG_DIR", "/custom/config/dir")
	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/custom/config/dir", dir)

	t.Setenv(EnvPrefix+"CONFIG_DIR", "")
	dir, err = ConfigDir()
	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".minutes"), dir)
}

func TestConfigPath(t *testing.T) {
	t.Setenv(EnvPrefix+"CONFIG_DIR", "/tmp/minutes")
	path, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/minutes/config.yaml", path)
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := isolate(t)

	content := `output_format: json
timeout: 90s
chunk_max_chars: 800
summarizer:
  backend: openai
  model: llama3
  base_url: http://localhost:11434/v1
diarization:
  enabled: true
  merge_threshold: 0.8
session:
  backend: redis
  redis_url: redis://cache:6379/2
  ttl: 2h
debug_dir: /tmp/minutes-debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, OutputFormatJSON, cfg.OutputFormat)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, 800, cfg.ChunkMaxChars)
	assert.Equal(t, SummarizerOpenAI, cfg.Summarizer.Backend)
	assert.Equal(t, "llama3", cfg.Summarizer.Model)
	assert.Equal(t, DefaultDevice, cfg.Summarizer.Device)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Summarizer.BaseURL)
	assert.Equal(t, DefaultMaxInputChars, cfg.Summarizer.MaxInputChars)
	assert.True(t, cfg.Diarization.Enabled)
	assert.InDelta(t, 0.8, cfg.Diarization.MergeThreshold, 1e-9)
	assert.Equal(t, SessionRedis, cfg.Session.Backend)
	assert.Equal(t, "redis://cache:6379/2", cfg.Session.RedisURL)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "/tmp/minutes-debug", cfg.DebugDir)
}

func TestLoadFile_IgnoresEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("timeout: 90s\n"), 0600))
	t.Setenv("MINUTES_TIMEOUT", "10s")

	cfg, err := LoadFile()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Timeout)

	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"bad timeout", "timeout: soon\n", "parsing timeout"},
		{"bad ttl", "session:\n  ttl: forever\n", "parsing session ttl"},
		{"bad yaml", "output_format: [json\n", "parsing config file"},
		{"invalid value", "output_format: xml\n", "validating config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(tt.content), 0600))

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile),
		[]byte("output_format: json\nchunk_max_chars: 800\n"), 0600))

	t.Setenv("MINUTES_OUTPUT_FORMAT", "yaml")
	t.Setenv("MINUTES_SUMMARIZER_MODEL", "gpt-4o")
	t.Setenv("MINUTES_SESSION_TTL", "30m")
	t.Setenv("MINUTES_DIARIZATION_ENABLED", "1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, OutputFormatYAML, cfg.OutputFormat)
	assert.Equal(t, 800, cfg.ChunkMaxChars)
	assert.Equal(t, "gpt-4o", cfg.Summarizer.Model)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.Diarization.Enabled)
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	isolate(t)
	t.Setenv("MINUTES_TIMEOUT", "invalid")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MINUTES_TIMEOUT")
}

func TestLoadConfig_DotEnv(t *testing.T) {
	isolate(t)
	t.Setenv("MINUTES_CHUNK_MAX_CHARS", "900")
	t.Cleanup(func() { os.Unsetenv("MINUTES_SUMMARIZER_BASE_URL") })
	os.Unsetenv("MINUTES_SUMMARIZER_BASE_URL")

	dotenv := "MINUTES_SUMMARIZER_BASE_URL=http://llm.internal/v1\nMINUTES_CHUNK_MAX_CHARS=100\n"
	require.NoError(t, os.WriteFile(DefaultEnvFile, []byte(dotenv), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://llm.internal/v1", cfg.Summarizer.BaseURL)
	// Variables already in the environment win over .env.
	assert.Equal(t, 900, cfg.ChunkMaxChars)
}

func TestCLIConfig_Set(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Set("output_format", "json"))
	require.NoError(t, cfg.Set("debug", "true"))
	require.NoError(t, cfg.Set("timeout", "1m"))
	require.NoError(t, cfg.Set("summarizer.max_input_chars", "2000"))
	require.NoError(t, cfg.Set("diarization.merge_threshold", "0.85"))
	require.NoError(t, cfg.Set("session.backend", "redis"))
	require.NoError(t, cfg.Set("metrics_file", "/var/lib/node_exporter/minutes.prom"))

	assert.Equal(t, OutputFormatJSON, cfg.OutputFormat)
	assert.True(t, cfg.Debug)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Equal(t, 2000, cfg.Summarizer.MaxInputChars)
	assert.InDelta(t, 0.85, cfg.Diarization.MergeThreshold, 1e-9)
	assert.Equal(t, SessionRedis, cfg.Session.Backend)
	assert.Equal(t, "/var/lib/node_exporter/minutes.prom", cfg.MetricsFile)
	assert.NoError(t, cfg.Validate())
}

func TestCLIConfig_SetErrors(t *testing.T) {
	tests := []struct {
		key, value, errMsg string
	}{
		{"output_format", "xml", "invalid output format"},
		{"debug", "yes", "must be true or false"},
		{"timeout", "later", "invalid timeout"},
		{"chunk_max_chars", "lots", "invalid chunk_max_chars"},
		{"diarization.merge_threshold", "high", "invalid diarization.merge_threshold"},
		{"server_address", "localhost", "unknown configuration key"},
	}

	for _, tt := range tests {
		err := DefaultConfig().Set(tt.key, tt.value)
		require.Error(t, err, tt.key)
		assert.Contains(t, err.Error(), tt.errMsg)
	}
}

func TestKeys_AllSettable(t *testing.T) {
	samples := map[string]string{
		"output_format":               "text",
		"debug":                       "false",
		"timeout":                     "1s",
		"chunk_max_chars":             "10",
		"summarizer.max_input_chars":  "10",
		"diarization.enabled":         "0",
		"diarization.merge_threshold": "0.5",
		"session.ttl":                 "1h",
	}
	for _, key := range Keys() {
		v, ok := samples[key]
		if !ok {
			v = "x"
		}
		assert.NoError(t, DefaultConfig().Set(key, v), key)
		assert.True(t, strings.HasPrefix(envName(key), "MINUTES_"))
	}
	assert.Equal(t, "MINUTES_SUMMARIZER_BASE_URL", envName("summarizer.base_url"))
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := isolate(t)
	nested := filepath.Join(dir, "nested")
	t.Setenv(EnvPrefix+"CONFIG_DIR", nested)

	cfg := DefaultConfig()
	cfg.OutputFormat = OutputFormatYAML
	cfg.Timeout = 45 * time.Second
	cfg.Summarizer.Backend = SummarizerOpenAI
	cfg.Session.TTL = 3 * time.Hour
	cfg.DebugDir = "/tmp/runs"

	require.NoError(t, SaveConfig(cfg))

	info, err := os.Stat(filepath.Join(nested, DefaultConfigFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(filepath.Join(nested, DefaultConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "timeout: 45s")
	assert.Contains(t, string(data), "ttl: 3h0m0s")

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/minutes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "minutes"), got)

	got, err = ExpandPath("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)

	got, err = ExpandPath("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

// chdirForTest changes the working directory for the duration of the test,
// matching testing.T.Chdir (Go 1.24+) on older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
