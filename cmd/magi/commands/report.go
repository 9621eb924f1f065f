package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NethermindEth/magi/insights"
)

// ReportCmd deliberates and then writes the tactical report
var ReportCmd = &cobra.Command{
	Use:   "report <proposal>",
	Short: "Deliberate and generate a tactical report",
	Long:  `Run one council deliberation with a language model and write a tactical report on the outcome. Requires an API key.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		opts := appOptions{onRetry: retryPrinter(cmd.ErrOrStderr())}
		a, err := newApp(ctx, opts)
		if err != nil {
			return err
		}
		defer a.Close()

		reporter := a.reporter(opts.onRetry)
		if !reporter.Available() {
			return fmt.Errorf("cannot write report: %w", insights.ErrAPIKeyRequired)
		}

		council, err := a.council(opts)
		if err != nil {
			return err
		}
		session, err := council.Deliberate(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printSession(out, session)

		report, err := reporter.GenerateReport(ctx, session)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nTACTICAL REPORT\n\n%s\n", report.Report)
		return nil
	},
}
