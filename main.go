// Package main provides the minutes CLI entry point.
// minutes turns meeting transcripts into structured minutes.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/minutes-cli/cmd"
	"github.com/otherjamesbrown/minutes-cli/config"
	"github.com/otherjamesbrown/minutes-cli/pkg/buildinfo"
	mnerrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
)

// rootFlags holds the persistent flags.
type rootFlags struct {
	timeout time.Duration
	debug   bool
	logJSON bool
}

// newRootCommand builds the command tree around deps.
func newRootCommand(deps *cmd.CommandDeps) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "minutes",
		Short: "Turn meeting transcripts into structured minutes",
		Long: `minutes converts a meeting transcript into structured minutes: metadata,
attendees, agenda, summary, decisions, action items and the next meeting.

The pipeline parses the transcript into speaker segments (or aligns a
speech-to-text transcription with diarization turns), groups the segments
into chunks, summarizes them, extracts entities and patterns, builds the
record and sanitizes it.

COMMON WORKFLOWS:
  One shot:         minutes process meeting.txt
  Machine output:   minutes process meeting.vtt -o json
  Edit before use:  minutes review meeting.txt
  Later edits:      minutes process meeting.txt --session  ->  minutes session set <id> ...

INSPECTING STAGES:
  minutes parse <transcript>      speaker segments
  minutes align <transcription>   speaker assignment
  minutes chunk <transcript>      chunk boundaries
  minutes extract <transcript>    extractor output

Configuration lives in ~/.minutes/config.yaml and can be overridden with
MINUTES_* environment variables (see 'minutes config --help').`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			// Skip initialization for commands that don't need it.
			switch c.Name() {
			case "version", "help", "completion":
				return nil
			}
			if c.Parent() != nil && c.Parent().Name() == "config" {
				return nil
			}
			return initDeps(deps, flags)
		},
		PersistentPostRunE: func(c *cobra.Command, args []string) error {
			return deps.Close()
		},
	}

	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "pipeline timeout (e.g., 30s, 5m)")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&flags.logJSON, "log-json", false, "write logs to stderr as JSON")

	root.AddGroup(
		&cobra.Group{ID: "minutes", Title: "Minutes:"},
		&cobra.Group{ID: "stages", Title: "Pipeline Stages:"},
		&cobra.Group{ID: "setup", Title: "Setup:"},
	)

	add := func(group string, cmds ...*cobra.Command) {
		for _, c := range cmds {
			c.GroupID = group
			root.AddCommand(c)
		}
	}
	add("minutes",
		cmd.NewProcessCommand(deps),
		cmd.NewReviewCommand(deps),
		cmd.NewSessionCommand(deps),
	)
	add("stages",
		cmd.NewParseCommand(deps),
		cmd.NewAlignCommand(deps),
		cmd.NewChunkCommand(deps),
		cmd.NewExtractCommand(deps),
	)
	add("setup",
		cmd.NewAuthCommand(deps),
		newConfigCommand(deps.Stdout),
		newVersionCommand(deps.Stdout),
	)
	return root
}

// initDeps loads the configuration, applies the persistent flags and sets
// up logging.
func initDeps(deps *cmd.CommandDeps, flags *rootFlags) error {
	load := deps.LoadConfig
	if load == nil {
		load = config.LoadConfig
	}
	cfg := deps.Config
	if cfg == nil {
		var err error
		cfg, err = load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
	}

	// Override with command-line flags.
	if flags.timeout != 0 {
		cfg.Timeout = flags.timeout
	}
	if flags.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	deps.Config = cfg

	if deps.Logger == nil {
		level := logging.LevelInfo
		if cfg.Debug {
			level = logging.LevelDebug
		}
		out := deps.Stderr
		if out == nil {
			out = os.Stderr
		}
		deps.Logger = logging.NewLogger(&logging.Config{
			Level:      level,
			Component:  "minutes",
			JSONFormat: flags.logJSON,
			Output:     out,
		})
		logging.SetGlobal(deps.Logger)
	}
	return nil
}

// newVersionCommand prints version information.
func newVersionCommand(out io.Writer) *cobra.Command {
	var outputJSON bool
	c := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version, commit hash, and build time of the minutes CLI.

Examples:
  minutes version
  minutes version --json`,
		RunE: func(c *cobra.Command, args []string) error {
			info := buildinfo.Get()
			if outputJSON {
				return writeJSON(out, info)
			}
			fmt.Fprintf(out, "minutes %s\n", buildinfo.String())
			fmt.Fprintf(out, "  Go:       %s\n", info.GoVersion)
			fmt.Fprintf(out, "  Platform: %s\n", info.Platform)
			return nil
		},
	}
	c.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")
	return c
}

// newConfigCommand manages the configuration file.
func newConfigCommand(out io.Writer) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: `View and modify the minutes configuration.

The configuration file is ~/.minutes/config.yaml ($MINUTES_CONFIG_DIR
overrides the directory). Every key can also be set from the environment
as MINUTES_<KEY>, with dots as underscores, for example
MINUTES_SUMMARIZER_BACKEND=openai. A .env file in the working directory is
read too, without overriding variables that are already set.`,
	}
	c.AddCommand(newConfigShowCommand(out))
	c.AddCommand(newConfigInitCommand(out))
	c.AddCommand(newConfigSetCommand(out))
	return c
}

func newConfigShowCommand(out io.Writer) *cobra.Command {
	var outputYAML bool
	c := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  `Display the effective configuration: defaults, config file, .env and environment.`,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if outputYAML {
				return writeYAML(out, cfg)
			}

			configPath, _ := config.ConfigPath()
			fmt.Fprintln(out, "Current configuration:")
			fmt.Fprintf(out, "  Config file:       %s\n", configPath)
			fmt.Fprintf(out, "  Output format:     %s\n", cfg.OutputFormat)
			fmt.Fprintf(out, "  Timeout:           %s\n", cfg.Timeout)
			fmt.Fprintf(out, "  Chunk max chars:   %d\n", cfg.ChunkMaxChars)
			fmt.Fprintf(out, "  Summarizer:        %s (model %s, device %s)\n", cfg.Summarizer.Backend, cfg.Summarizer.Model, cfg.Summarizer.Device)
			fmt.Fprintf(out, "  Summarizer URL:    %s\n", valueOrDefault(cfg.Summarizer.BaseURL, "(default)"))
			fmt.Fprintf(out, "  Max input chars:   %d\n", cfg.Summarizer.MaxInputChars)
			fmt.Fprintf(out, "  Diarization:       %t (merge threshold %.2f)\n", cfg.Diarization.Enabled, cfg.Diarization.MergeThreshold)
			fmt.Fprintf(out, "  Turns file:        %s\n", valueOrDefault(cfg.Diarization.TurnsFile, "(<audio>.turns.json)"))
			fmt.Fprintf(out, "  Session backend:   %s (ttl %s)\n", cfg.Session.Backend, cfg.Session.TTL)
			if cfg.Session.Backend == config.SessionRedis {
				fmt.Fprintf(out, "  Redis URL:         %s\n", cfg.Session.RedisURL)
			}
			fmt.Fprintf(out, "  Debug dir:         %s\n", valueOrDefault(cfg.DebugDir, "(not set)"))
			fmt.Fprintf(out, "  Metrics file:      %s\n", valueOrDefault(cfg.MetricsFile, "(not set)"))
			fmt.Fprintf(out, "  Debug:             %t\n", cfg.Debug)
			return nil
		},
	}
	c.Flags().BoolVar(&outputYAML, "yaml", false, "Output as YAML")
	return c
}

func newConfigInitCommand(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		Long:  `Create a new configuration file with default values if one doesn't exist.`,
		RunE: func(c *cobra.Command, args []string) error {
			configPath, err := config.ConfigPath()
			if err != nil {
				return fmt.Errorf("getting config path: %w", err)
			}

			if _, err := os.Stat(configPath); err == nil {
				fmt.Fprintf(out, "Configuration file already exists: %s\n", configPath)
				fmt.Fprintln(out, "Use 'minutes config show' to view current settings.")
				return nil
			}

			defaultCfg := config.DefaultConfig()
			if err := config.SaveConfig(defaultCfg); err != nil {
				return fmt.Errorf("saving configuration: %w", err)
			}

			fmt.Fprintf(out, "Created configuration file: %s\n", configPath)
			fmt.Fprintln(out, "\nDefault settings:")
			fmt.Fprintf(out, "  Timeout:        %s\n", defaultCfg.Timeout)
			fmt.Fprintf(out, "  Output format:  %s\n", defaultCfg.OutputFormat)
			fmt.Fprintf(out, "  Summarizer:     %s\n", defaultCfg.Summarizer.Backend)
			return nil
		},
	}
}

func newConfigSetCommand(out io.Writer) *cobra.Command {
	long := `Set a configuration value in the config file.

Available keys:
`
	for _, k := range config.Keys() {
		long += "  " + k + "\n"
	}
	long += `
Examples:
  minutes config set timeout 10m
  minutes config set summarizer.backend openai
  minutes config set summarizer.base_url http://localhost:11434/v1
  minutes config set session.backend redis
  minutes config set diarization.merge_threshold 0.9`

	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  long,
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			currentCfg, err := config.LoadFile()
			if err != nil {
				return err
			}
			if err := currentCfg.Set(key, value); err != nil {
				return err
			}
			if err := currentCfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveConfig(currentCfg); err != nil {
				return fmt.Errorf("saving configuration: %w", err)
			}

			fmt.Fprintf(out, "Set %s = %s\n", key, value)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(v)
}

func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

// errorMessage formats err for stderr, adding the suggested action for
// pipeline errors.
func errorMessage(err error) string {
	msg := fmt.Sprintf("Error: %v\n", err)
	var pe *mnerrors.PipelineError
	if errors.As(err, &pe) {
		msg += fmt.Sprintf("  Code: %s (%s)\n", pe.Code, mnerrors.GetDescription(pe.Code))
		msg += fmt.Sprintf("  Try:  %s\n", mnerrors.GetSuggestedAction(pe.Code))
	}
	return msg
}

func main() {
	// Set up signal handling for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
		<-sigChan
		os.Exit(130)
	}()

	deps := cmd.DefaultDeps()
	err := newRootCommand(deps).ExecuteContext(ctx)
	_ = deps.Close()
	if err != nil {
		fmt.Fprint(os.Stderr, errorMessage(err))
		os.Exit(1)
	}
}
