package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gridline/internal/controller"
	"github.com/roach88/gridline/internal/record"
)

// BrowseOptions holds flags for the browse command.
type BrowseOptions struct {
	*RootOptions
	Endpoint string
	Rows     int
}

// NewBrowseCommand creates the browse command.
func NewBrowseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BrowseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Interactively browse and edit the remote collection",
		Long: `Interactively browse and edit the remote collection.

Reads one command per line from stdin and re-renders the table after each.
Mutations apply locally first and replay to the endpoint in the background;
sync failures surface as notifications without rolling the table back.

Commands:
  search <term>        filter rows (empty term clears the filter)
  rows <n>             set rows per page
  next | prev          page navigation
  goto <n>             jump to a page
  add                  insert a default row at the top
  delete <id>          remove a row
  edit <id> <field> <value>
                       commit a value to name, age or country
  date <id> <iso>      pick a date (YYYY-MM-DD) for a row
  dismiss              close the date picker without selecting
  sync                 wait for in-flight replays
  show                 re-render without changing anything
  quit                 exit`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "remote collection base URL (overrides config)")
	cmd.Flags().IntVar(&opts.Rows, "rows", 0, "rows per page (overrides config)")

	return cmd
}

func runBrowse(opts *BrowseOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	ctrl, err := buildController(opts.RootOptions, opts.Endpoint, opts.Rows)
	if err != nil {
		return err
	}
	if err := ctrl.Load(cmd.Context()); err != nil {
		return WrapExitError(ExitCommandError, "failed to fetch collection", err)
	}
	defer ctrl.Flush()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	out := cmd.OutOrStdout()

	if err := writeSnapshot(formatter, ctrl.Snapshot()); err != nil {
		return err
	}

	// The REPL goroutine is the controller's single writer; every
	// command runs to completion before the next line is read.
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		if err := applyCommand(ctrl, out, line); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if err := writeSnapshot(formatter, ctrl.Snapshot()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "reading input", err)
	}
	return nil
}

// applyCommand parses one REPL line and applies it to the controller.
// Rejected navigation and unknown ids are no-ops, not errors, matching
// the controller contract; only malformed commands fail.
func applyCommand(ctrl *controller.Controller, out io.Writer, line string) error {
	fields := strings.Fields(line)
	verb, args := fields[0], fields[1:]

	switch verb {
	case "search":
		ctrl.Search(strings.Join(args, " "))
	case "rows":
		n, err := parseIntArg(args, 0, "rows <n>")
		if err != nil {
			return err
		}
		if !ctrl.SetRowsPerPage(n) {
			fmt.Fprintln(out, "rows per page must be positive")
		}
	case "next":
		ctrl.NextPage()
	case "prev":
		ctrl.PrevPage()
	case "goto":
		n, err := parseIntArg(args, 0, "goto <n>")
		if err != nil {
			return err
		}
		ctrl.GoToPage(n)
	case "add":
		rec := ctrl.Add()
		fmt.Fprintf(out, "added record %d\n", rec.ID)
	case "delete":
		id, err := parseIntArg(args, 0, "delete <id>")
		if err != nil {
			return err
		}
		ctrl.Delete(id)
	case "edit":
		if len(args) < 3 {
			return fmt.Errorf("usage: edit <id> <field> <value>")
		}
		id, err := parseIntArg(args, 0, "edit <id> <field> <value>")
		if err != nil {
			return err
		}
		f, err := record.ParseField(args[1])
		if err != nil {
			return err
		}
		if err := ctrl.BeginEdit(id, f); err != nil {
			return err
		}
		return ctrl.CommitEdit(strings.Join(args[2:], " "))
	case "date":
		if len(args) != 2 {
			return fmt.Errorf("usage: date <id> <iso-date>")
		}
		id, err := parseIntArg(args, 0, "date <id> <iso-date>")
		if err != nil {
			return err
		}
		if _, err := ctrl.OpenDatePicker(id); err != nil {
			return err
		}
		return ctrl.SelectDate(args[1])
	case "dismiss":
		ctrl.DismissPicker()
	case "sync":
		ctrl.Flush()
	case "show":
		// Re-render only.
	case "help":
		fmt.Fprintln(out, "commands: search rows next prev goto add delete edit date dismiss sync show quit")
	default:
		return fmt.Errorf("unknown command %q (try help)", verb)
	}
	return nil
}

func parseIntArg(args []string, idx int, usage string) (int, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	n, err := strconv.Atoi(args[idx])
	if err != nil {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	return n, nil
}
