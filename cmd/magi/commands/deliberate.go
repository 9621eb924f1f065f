package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NethermindEth/magi/core"
)

var (
	deliberateJSON bool
	deliberateSeed int64
)

// DeliberateCmd runs the council once
var DeliberateCmd = &cobra.Command{
	Use:   "deliberate <proposal>",
	Short: "Submit a proposal to the council",
	Long:  `Run one council deliberation and print each member's vote and the combined outcome.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		opts := appOptions{
			draw:    seededDraw(deliberateSeed, cmd.Flags().Changed("seed")),
			onRetry: retryPrinter(cmd.ErrOrStderr()),
		}
		a, err := newApp(ctx, opts)
		if err != nil {
			return err
		}
		defer a.Close()

		council, err := a.council(opts)
		if err != nil {
			return err
		}

		session, err := council.Deliberate(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if deliberateJSON {
			_, err = out.Write(append(core.EncodeJSON(session), '\n'))
			return err
		}
		printSession(out, session)
		return nil
	},
}

func init() {
	DeliberateCmd.Flags().BoolVar(&deliberateJSON, "json", false, "Print the session as JSON")
	DeliberateCmd.Flags().Int64Var(&deliberateSeed, "seed", 0, "Seed the offline simulator for a repeatable verdict")
}
