package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/minutes-cli/config"
	"github.com/otherjamesbrown/minutes-cli/pkg/minutes"
)

const reviewHelp = `Commands:
  show                              print the current minutes
  set <path> <value>                change a field (see 'minutes session --help' for paths)
  remove <path>                     delete a list entry, e.g. decisions.2
  add-decision <text>               append a decision
  add-attendee <name> [| role]      append an attendee
  add-action <task> [| responsible [| deadline [| status]]]
                                    append an action item
  export [file]                     write the sanitized minutes
  help                              show this help
  quit                              leave the review`

// NewReviewCommand creates the 'review' command.
func NewReviewCommand(deps *CommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}
	opts := &processOptions{}

	cmd := &cobra.Command{
		Use:   "review <transcript>",
		Short: "Process a transcript and edit the minutes interactively",
		Long: `Process a transcript, then open an editing prompt on the resulting record.

The record is kept in the session store while you edit, so with the redis
backend it can be resumed later with 'minutes session'. Edits are validated
as they are made; 'export' runs the sanitizer and writes the final minutes.

` + reviewHelp + `

Examples:
  minutes review meeting.txt
  minutes review --segments call.json --audio call.wav --diarize`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && args[0] == "-" {
				return fmt.Errorf("review reads commands from stdin; pass the transcript as a file")
			}
			cfg, in, res, err := processTranscript(cmd.Context(), deps, opts, args)
			if err != nil {
				return err
			}
			s, err := saveSession(cmd.Context(), deps, res.Record, in.Source, res.RunID)
			if err != nil {
				return err
			}
			format, err := resolveFormat(opts.output, cfg)
			if err != nil {
				return err
			}
			r := &reviewer{deps: deps, id: s.ID, format: format, in: deps.Stdin, out: deps.Stdout}
			return r.run(cmd.Context())
		},
	}
	opts.register(cmd)
	return cmd
}

// reviewer is the line-oriented editing loop over one session.
type reviewer struct {
	deps   *CommandDeps
	id     string
	format config.OutputFormat
	in     io.Reader
	out    io.Writer
}

func (r *reviewer) run(ctx context.Context) error {
	fmt.Fprintf(r.out, "Session %s. Type 'help' for commands.\n", r.id)
	if err := r.show(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, "minutes> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		done, err := r.exec(ctx, line)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
		if done {
			return nil
		}
	}
}

// exec runs one command line. done reports a request to leave.
func (r *reviewer) exec(ctx context.Context, line string) (done bool, err error) {
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "quit", "exit", "q":
		fmt.Fprintf(r.out, "Session %s kept; export it with 'minutes session export %s'.\n", r.id, r.id)
		return true, nil
	case "help", "?":
		fmt.Fprintln(r.out, reviewHelp)
		return false, nil
	case "show":
		return false, r.show(ctx)
	case "set":
		path, value, ok := strings.Cut(rest, " ")
		if !ok || path == "" {
			return false, fmt.Errorf("usage: set <path> <value>")
		}
		return false, r.edit(ctx, "set", func(rec *minutes.Record) error {
			return setField(rec, path, strings.TrimSpace(value))
		}, "Updated "+path)
	case "remove", "rm":
		if rest == "" {
			return false, fmt.Errorf("usage: remove <path>")
		}
		return false, r.edit(ctx, "remove", func(rec *minutes.Record) error {
			return rec.Remove(rest)
		}, "Removed "+rest)
	case "add-decision":
		if rest == "" {
			return false, fmt.Errorf("usage: add-decision <text>")
		}
		return false, r.edit(ctx, "add-decision", func(rec *minutes.Record) error {
			return rec.AddDecision(rest)
		}, "Added decision")
	case "add-attendee":
		fields := splitPipe(rest, 2)
		if fields[0] == "" {
			return false, fmt.Errorf("usage: add-attendee <name> [| role]")
		}
		return false, r.edit(ctx, "add-attendee", func(rec *minutes.Record) error {
			return rec.AddAttendee(minutes.Attendee{Name: fields[0], Role: fields[1]})
		}, "Added attendee "+fields[0])
	case "add-action":
		fields := splitPipe(rest, 4)
		item, err := newActionItem(fields[0], fields[1], fields[2], fields[3])
		if err != nil {
			return false, err
		}
		return false, r.edit(ctx, "add-action", func(rec *minutes.Record) error {
			return rec.AddActionItem(item)
		}, "Added action item")
	case "export":
		s, err := getSession(ctx, r.deps, r.id)
		if err != nil {
			return false, err
		}
		return false, exportRecord(r.deps, s.Record, r.format, rest)
	default:
		return false, fmt.Errorf("unknown command %q (type 'help')", verb)
	}
}

func (r *reviewer) show(ctx context.Context) error {
	s, err := getSession(ctx, r.deps, r.id)
	if err != nil {
		return err
	}
	return minutes.RenderText(r.out, s.Record, r.deps.now())
}

func (r *reviewer) edit(ctx context.Context, op string, fn func(*minutes.Record) error, msg string) error {
	if _, err := updateSession(ctx, r.deps, op, r.id, fn); err != nil {
		return err
	}
	fmt.Fprintln(r.out, msg)
	return nil
}

// splitPipe splits s on "|" into exactly n trimmed fields.
func splitPipe(s string, n int) []string {
	parts := strings.SplitN(s, "|", n)
	out := make([]string, n)
	for i := range parts {
		out[i] = strings.TrimSpace(parts[i])
	}
	return out
}
