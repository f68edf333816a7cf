package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/minutes-cli/config"
	"github.com/otherjamesbrown/minutes-cli/pkg/minutes"
	"github.com/otherjamesbrown/minutes-cli/pkg/session"
)

// NewSessionCommand creates the 'session' command group.
func NewSessionCommand(deps *CommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Review and edit stored meeting records",
		Long: `Work with records kept by 'minutes process --session'.

Sessions live in the configured session store (session.backend) and expire
after session.ttl without changes. Field paths for 'set' are dot separated:

  summary
  metadata.title | date | time | venue | organizer | recorder
  next_meeting.date | time | venue | agenda
  attendees.N.name | attendees.N.role
  agenda.N.title
  decisions.N
  action_items.N.task | responsible | deadline | status

Examples:
  minutes session show ms-1a2b3c4d5e6f7g8h
  minutes session set ms-1a2b3c4d5e6f7g8h metadata.venue "Room 4"
  minutes session add-action ms-1a2b3c4d5e6f7g8h --task "Send budget" --responsible Bob
  minutes session export ms-1a2b3c4d5e6f7g8h --out minutes.txt
  minutes session reset ms-1a2b3c4d5e6f7g8h`,
	}

	cmd.AddCommand(newSessionShowCommand(deps))
	cmd.AddCommand(newSessionSetCommand(deps))
	cmd.AddCommand(newSessionAddActionCommand(deps))
	cmd.AddCommand(newSessionExportCommand(deps))
	cmd.AddCommand(newSessionResetCommand(deps))
	return cmd
}

func newSessionShowCommand(deps *CommandDeps) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a session's record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.config()
			if err != nil {
				return err
			}
			format, err := resolveFormat(output, cfg)
			if err != nil {
				return err
			}
			s, err := getSession(cmd.Context(), deps, args[0])
			if err != nil {
				return err
			}
			return writeOutput(deps.Stdout, format, s, func(w io.Writer) error {
				fmt.Fprintf(w, "Session %s (source %s, updated %s)\n\n", s.ID, s.Source, s.UpdatedAt.Format("2006-01-02 15:04"))
				return minutes.RenderText(w, s.Record, deps.now())
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: text, json, yaml")
	return cmd
}

func newSessionSetCommand(deps *CommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <path> <value>",
		Short: "Change one field of a session's record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, path, value := args[0], args[1], args[2]
			_, err := updateSession(cmd.Context(), deps, "set", id, func(r *minutes.Record) error {
				return setField(r, path, value)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(deps.Stdout, "Updated %s\n", path)
			return nil
		},
	}
}

// setField applies one edit and rejects it if the record stops validating.
func setField(r *minutes.Record, path, value string) error {
	next := r.Clone()
	if err := next.Set(path, value); err != nil {
		return err
	}
	if err := minutes.Validate(next); err != nil {
		return err
	}
	*r = *next
	return nil
}

func newSessionAddActionCommand(deps *CommandDeps) *cobra.Command {
	var task, responsible, deadline, status string
	cmd := &cobra.Command{
		Use:   "add-action <id>",
		Short: "Append an action item to a session's record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := newActionItem(task, responsible, deadline, status)
			if err != nil {
				return err
			}
			s, err := updateSession(cmd.Context(), deps, "add-action", args[0], func(r *minutes.Record) error {
				return r.AddActionItem(item)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(deps.Stdout, "Added action item %d\n", len(s.Record.ActionItems))
			return nil
		},
	}
	cmd.Flags().StringVar(&task, "task", "", "Task description (required)")
	cmd.Flags().StringVar(&responsible, "responsible", "", "Person responsible")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline")
	cmd.Flags().StringVar(&status, "status", "", "Status: Pending, In progress, Completed, Upcoming")
	cmd.MarkFlagRequired("task")
	return cmd
}

func newActionItem(task, responsible, deadline, status string) (minutes.ActionItem, error) {
	if task == "" {
		return minutes.ActionItem{}, fmt.Errorf("task is required")
	}
	item := minutes.ActionItem{Task: task, Responsible: responsible, Deadline: deadline}
	if status != "" {
		st, err := minutes.StrictStatus(status)
		if err != nil {
			return minutes.ActionItem{}, err
		}
		item.Status = st
	}
	return item, nil
}

func newSessionExportCommand(deps *CommandDeps) *cobra.Command {
	var output, outPath string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Sanitize a session's record and write the final minutes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.config()
			if err != nil {
				return err
			}
			format, err := resolveFormat(output, cfg)
			if err != nil {
				return err
			}
			s, err := getSession(cmd.Context(), deps, args[0])
			if err != nil {
				return err
			}
			return exportRecord(deps, s.Record, format, outPath)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: text, json, yaml")
	cmd.Flags().StringVar(&outPath, "out", "", "Write to this file instead of stdout")
	return cmd
}

// exportRecord writes the sanitized form of rec to outPath, or stdout.
func exportRecord(deps *CommandDeps, rec *minutes.Record, format config.OutputFormat, outPath string) error {
	clean := minutes.Sanitize(rec)
	w := deps.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}
	if err := writeOutput(w, format, clean, func(w io.Writer) error {
		return minutes.RenderText(w, clean, deps.now())
	}); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(deps.Stderr, "Wrote %s\n", outPath)
	}
	return nil
}

func newSessionResetCommand(deps *CommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <id>",
		Short: "Discard a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := deps.sessionStore(cmd.Context())
			if err != nil {
				return err
			}
			err = store.Delete(cmd.Context(), args[0])
			deps.metrics().RecordSessionOp("reset", err)
			if err != nil {
				return err
			}
			fmt.Fprintf(deps.Stdout, "Session %s discarded\n", args[0])
			return nil
		},
	}
}

func getSession(ctx context.Context, deps *CommandDeps, id string) (*session.Session, error) {
	store, err := deps.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	s, err := store.Get(ctx, id)
	deps.metrics().RecordSessionOp("get", err)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func updateSession(ctx context.Context, deps *CommandDeps, op, id string, fn func(r *minutes.Record) error) (*session.Session, error) {
	store, err := deps.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	s, err := session.Update(ctx, store, id, fn)
	deps.metrics().RecordSessionOp(op, err)
	return s, err
}
