package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NethermindEth/magi/core"
)

// PersonalitiesCmd lists the council members
var PersonalitiesCmd = &cobra.Command{
	Use:   "personalities",
	Short: "List the council members",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "MAGI Council:")
		for _, p := range core.Personalities() {
			fmt.Fprintf(out, "\n%s (%s)\n", p.Designation, p.Role)
			fmt.Fprintf(out, "  Traits: %s\n", strings.Join(p.Traits, ", "))
			fmt.Fprintf(out, "  Rejects at random: %.0f%%\n", p.RejectProbability*100)
		}
	},
}
