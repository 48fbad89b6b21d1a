package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gridline/internal/harness"
)

// ScenarioOptions holds flags for the scenario command.
type ScenarioOptions struct {
	*RootOptions
	ShowRender bool
}

// NewScenarioCommand creates the scenario command.
func NewScenarioCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScenarioOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scenario <file>...",
		Short: "Run YAML conformance scenarios against an in-memory gateway",
		Long: `Run YAML conformance scenarios against an in-memory gateway.

Each scenario seeds a collection, drives the controller through a sequence
of steps with a frozen clock, and asserts on the final snapshot. Exit code
is 1 when any assertion fails and 2 when a scenario cannot run at all.

Example:
  gridline scenario testdata/scenarios/browse-pages.yaml
  gridline scenario --render scenarios/*.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.ShowRender, "render", false, "print each scenario's final rendered snapshot")

	return cmd
}

// scenarioReport is the per-scenario JSON payload.
type scenarioReport struct {
	Name     string   `json:"name"`
	Passed   bool     `json:"passed"`
	Failures []string `json:"failures,omitempty"`
	Rendered string   `json:"rendered,omitempty"`
}

func runScenarios(opts *ScenarioOptions, paths []string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	failed := 0
	reports := make([]scenarioReport, 0, len(paths))
	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load scenario", err)
		}

		formatter.VerboseLog("running scenario %s (%d steps)", scenario.Name, len(scenario.Steps))
		result, err := harness.Run(scenario)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("scenario %s failed to run", scenario.Name), err)
		}

		report := scenarioReport{
			Name:     scenario.Name,
			Passed:   result.Passed(),
			Failures: result.Failures,
		}
		if opts.ShowRender {
			report.Rendered = result.Rendered
		}
		reports = append(reports, report)
		if !result.Passed() {
			failed++
		}

		if formatter.Format != "json" {
			printScenarioReport(formatter, report)
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(reports); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "%d/%d scenarios passed\n", len(reports)-failed, len(reports))
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", failed))
	}
	return nil
}

func printScenarioReport(f *OutputFormatter, report scenarioReport) {
	status := "PASS"
	if !report.Passed {
		status = "FAIL"
	}
	fmt.Fprintf(f.Writer, "%s  %s\n", status, report.Name)
	for _, failure := range report.Failures {
		fmt.Fprintf(f.Writer, "      %s\n", failure)
	}
	if report.Rendered != "" {
		fmt.Fprintln(f.Writer, report.Rendered)
	}
}
