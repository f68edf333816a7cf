package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/otherjamesbrown/minutes-cli/credentials"
)

// NewAuthCommand creates the 'auth' command group.
func NewAuthCommand(deps *CommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the summarizer API key",
		Long: `Manage the API key used by the openai summarizer backend.

The key is stored encrypted in ~/.minutes/credentials.yaml. The encryption
key comes from MINUTES_ENCRYPTION_KEY, the system keyring, or a key derived
from MINUTES_PASSPHRASE when no keyring is available.

Environment variables take precedence over the stored key:
  MINUTES_API_KEY, then OPENAI_API_KEY.`,
	}

	cmd.AddCommand(newAuthLoginCommand(deps))
	cmd.AddCommand(newAuthLogoutCommand(deps))
	cmd.AddCommand(newAuthStatusCommand(deps))
	return cmd
}

func newAuthLoginCommand(deps *CommandDeps) *cobra.Command {
	var (
		apiKey         string
		baseURL        string
		nonInteractive bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key",
		Long: `Store an API key for the summarizer backend.

Examples:
  # Interactive login (prompts for the key without echo)
  minutes auth login

  # Key from a flag
  minutes auth login --api-key sk-abc123...

  # Key from the environment
  OPENAI_API_KEY=sk-abc123... minutes auth login

  # OpenAI-compatible endpoint
  minutes auth login --api-key sk-abc123... --base-url http://localhost:8000/v1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := deps.credentialStore()
			if err != nil {
				return err
			}

			key := apiKey
			if key == "" {
				for _, env := range []string{credentials.EnvAPIKey, credentials.EnvOpenAIAPIKey} {
					if v := os.Getenv(env); v != "" {
						key = v
						fmt.Fprintf(deps.Stdout, "Using API key from %s environment variable\n", env)
						break
					}
				}
			}
			if key == "" {
				if nonInteractive {
					return fmt.Errorf("no API key provided and --non-interactive flag set")
				}
				key, err = promptForAPIKey(deps.Stdin, deps.Stdout)
				if err != nil {
					return fmt.Errorf("reading API key: %w", err)
				}
			}
			if err := validateAPIKey(key); err != nil {
				return fmt.Errorf("invalid API key: %w", err)
			}

			creds := &credentials.Credentials{
				Provider: credentials.ProviderOpenAI,
				APIKey:   key,
				BaseURL:  baseURL,
			}
			if err := store.Save(creds); err != nil {
				return fmt.Errorf("saving credentials: %w", err)
			}

			fmt.Fprintln(deps.Stdout, "Login successful!")
			fmt.Fprintf(deps.Stdout, "  API Key: %s\n", credentials.MaskAPIKey(key))
			if baseURL != "" {
				fmt.Fprintf(deps.Stdout, "  Base URL: %s\n", baseURL)
			}
			fmt.Fprintf(deps.Stdout, "  Encryption: %s\n", store.KeyDescription())
			if path, err := credentials.CredentialsPath(); err == nil {
				fmt.Fprintf(deps.Stdout, "\nCredentials stored in: %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key to store")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Endpoint the key belongs to")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Fail instead of prompting for input")
	return cmd
}

// promptForAPIKey reads a key without echo when in is a terminal, and a
// plain line otherwise.
func promptForAPIKey(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "API Key: ")
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func validateAPIKey(key string) error {
	if key == "" {
		return fmt.Errorf("API key is empty")
	}
	if len(key) < 8 {
		return fmt.Errorf("API key is too short")
	}
	if strings.ContainsAny(key, " \t\n") {
		return fmt.Errorf("API key contains whitespace")
	}
	return nil
}

func newAuthLogoutCommand(deps *CommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key",
		Long: `Remove the stored API key. Environment variables are not affected.

Examples:
  minutes auth logout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := deps.credentialStore()
			if err != nil {
				return err
			}
			if !store.Exists() {
				fmt.Fprintln(deps.Stdout, "No stored credentials found.")
				return nil
			}
			if err := store.Delete(); err != nil {
				return fmt.Errorf("removing credentials: %w", err)
			}
			fmt.Fprintln(deps.Stdout, "Logged out successfully.")

			for _, env := range []string{credentials.EnvAPIKey, credentials.EnvOpenAIAPIKey} {
				if os.Getenv(env) != "" {
					fmt.Fprintf(deps.Stdout, "\nNote: %s environment variable is still set.\n", env)
				}
			}
			return nil
		},
	}
}

func newAuthStatusCommand(deps *CommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which API key is active",
		Long: `Display the environment and stored API keys, masked, and which one the
summarizer will use.

Examples:
  minutes auth status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := deps.Stdout
			fmt.Fprintln(w, "Authentication Status")
			fmt.Fprintln(w, "=====================")
			fmt.Fprintln(w)

			active := ""
			fmt.Fprintln(w, "Environment Variables:")
			for _, env := range []string{credentials.EnvAPIKey, credentials.EnvOpenAIAPIKey} {
				v := os.Getenv(env)
				if v == "" {
					fmt.Fprintf(w, "  %s: (not set)\n", env)
					continue
				}
				mark := ""
				if active == "" {
					active = env
					mark = " (active)"
				}
				fmt.Fprintf(w, "  %s: %s%s\n", env, credentials.MaskAPIKey(v), mark)
			}
			fmt.Fprintln(w)

			store, err := deps.credentialStore()
			if err != nil {
				fmt.Fprintf(w, "Stored Credentials: unavailable (%v)\n", err)
				return nil
			}
			creds, err := store.Load()
			switch {
			case errors.Is(err, credentials.ErrNoCredentials):
				fmt.Fprintln(w, "Stored Credentials: None")
			case err != nil:
				return fmt.Errorf("loading credentials: %w", err)
			default:
				fmt.Fprintln(w, "Stored Credentials:")
				fmt.Fprintf(w, "  Provider: %s\n", creds.Provider)
				fmt.Fprintf(w, "  API Key: %s\n", credentials.MaskAPIKey(creds.APIKey))
				if creds.BaseURL != "" {
					fmt.Fprintf(w, "  Base URL: %s\n", creds.BaseURL)
				}
				fmt.Fprintf(w, "  Last Updated: %s\n", creds.LastUpdated.Format(time.RFC3339))
				if active == "" {
					active = "stored credentials"
				}
			}

			fmt.Fprintln(w)
			if active == "" {
				fmt.Fprintln(w, "Not authenticated. The openai summarizer will fall back to extractive summaries.")
				fmt.Fprintln(w, "Run 'minutes auth login' to store a key.")
				return nil
			}
			fmt.Fprintf(w, "Active Credential Source: %s\n", active)
			return nil
		},
	}
}
