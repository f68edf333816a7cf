// Package cmd provides CLI commands for the minutes tool.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/otherjamesbrown/minutes-cli/config"
	"github.com/otherjamesbrown/minutes-cli/credentials"
	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
	"github.com/otherjamesbrown/minutes-cli/pkg/observability"
	"github.com/otherjamesbrown/minutes-cli/pkg/session"
)

// CommandDeps holds the dependencies shared by the minutes commands.
type CommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)

	// OpenStore returns the session store selected by the configuration.
	OpenStore func(ctx context.Context, cfg *config.CLIConfig) (session.Store, error)

	// APIKey returns the summarizer API key.
	APIKey func() (string, error)

	// OpenCredentials opens the encrypted credential store.
	OpenCredentials func() (*credentials.Store, error)

	Logger logging.Logger

	// Registry backs Metrics and the --metrics-file export.
	Registry *prometheus.Registry
	Metrics  *observability.PipelineMetrics

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Now func() time.Time

	store session.Store
}

// DefaultDeps returns the default dependencies for production use.
func DefaultDeps() *CommandDeps {
	return &CommandDeps{
		LoadConfig:      config.LoadConfig,
		OpenStore:       OpenSessionStore,
		APIKey:          storedAPIKey,
		OpenCredentials: credentials.NewStore,
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		Now:             time.Now,
	}
}

func (d *CommandDeps) config() (*config.CLIConfig, error) {
	if d.Config != nil {
		return d.Config, nil
	}
	if d.LoadConfig == nil {
		d.Config = config.DefaultConfig()
		return d.Config, nil
	}
	cfg, err := d.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	d.Config = cfg
	return cfg, nil
}

func (d *CommandDeps) logger() logging.Logger {
	if d.Logger == nil {
		return logging.NewNopLogger()
	}
	return d.Logger
}

func (d *CommandDeps) metrics() *observability.PipelineMetrics {
	if d.Metrics == nil {
		if d.Registry == nil {
			d.Registry = prometheus.NewRegistry()
		}
		d.Metrics = observability.NewPipelineMetrics(d.Registry)
	}
	return d.Metrics
}

// writeMetrics exports the registry to path when one is configured.
func (d *CommandDeps) writeMetrics(path string) {
	if path == "" || d.Registry == nil {
		return
	}
	if err := observability.WriteTextfile(path, d.Registry); err != nil {
		d.logger().Warn("failed to write metrics file", logging.F("path", path), logging.Err(err))
	}
}

func (d *CommandDeps) credentialStore() (*credentials.Store, error) {
	open := d.OpenCredentials
	if open == nil {
		open = credentials.NewStore
	}
	store, err := open()
	if err != nil {
		return nil, fmt.Errorf("initializing credential store: %w", err)
	}
	return store, nil
}

func (d *CommandDeps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// sessionStore opens the configured store once per process.
func (d *CommandDeps) sessionStore(ctx context.Context) (session.Store, error) {
	if d.store != nil {
		return d.store, nil
	}
	cfg, err := d.config()
	if err != nil {
		return nil, err
	}
	open := d.OpenStore
	if open == nil {
		open = OpenSessionStore
	}
	store, err := open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	d.store = store
	return store, nil
}

// Close releases the session store, if one was opened.
func (d *CommandDeps) Close() error {
	if d.store == nil {
		return nil
	}
	err := d.store.Close()
	d.store = nil
	return err
}

// OpenSessionStore returns the memory or redis store named by cfg.
func OpenSessionStore(ctx context.Context, cfg *config.CLIConfig) (session.Store, error) {
	switch cfg.Session.Backend {
	case config.SessionRedis:
		return session.DialRedis(ctx, cfg.Session.RedisURL, cfg.Session.TTL)
	case config.SessionMemory, "":
		return session.NewMemoryStore(cfg.Session.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session backend: %s", cfg.Session.Backend)
	}
}

func storedAPIKey() (string, error) {
	var store *credentials.Store
	if s, err := credentials.NewStore(); err == nil {
		store = s
	}
	creds, err := credentials.ActiveAPIKey(store)
	if err != nil {
		return "", err
	}
	return creds.APIKey, nil
}
