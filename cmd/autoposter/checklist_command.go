package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"autoposter/internal/analyzer"
	"autoposter/internal/checklist"
)

type checklistOutput struct {
	Completed int              `json:"completed"`
	Total     int              `json:"total"`
	Steps     []checklist.Step `json:"steps"`
}

func newChecklistCommand(ctx *commandContext) *cobra.Command {
	var flags formFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Show which wizard steps a form completes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx := commandRunContext(cmd)
			// URL analysis is local, so the checklist skips the simulated latency.
			state, err := flags.build(runCtx, cmd, formDefaults(cfg), analyzer.New(0).Analyze)
			if err != nil {
				return err
			}

			steps := checklist.Evaluate(state, false)
			completed, total := checklist.Summary(steps)
			if jsonOutput {
				return writeJSON(cmd, checklistOutput{Completed: completed, Total: total, Steps: steps})
			}

			rows := make([][]string, 0, len(steps))
			for _, step := range steps {
				rows = append(rows, []string{strconv.Itoa(step.Index), step.Label, checkMark(step.Completed)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"#", "Step", "Done"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
			fmt.Fprintf(out, "Progress %d/%d\n", completed, total)
			if next, ok := checklist.Next(steps); ok {
				fmt.Fprintf(out, "Next step: %s\n", next.Label)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the checklist as JSON")
	return cmd
}

func checkMark(done bool) string {
	if done {
		return "✓"
	}
	return ""
}
