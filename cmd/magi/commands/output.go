package commands

import (
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/NethermindEth/magi/core"
	"github.com/NethermindEth/magi/simulator"
)

// seededDraw returns a deterministic random source, or nil for the default
func seededDraw(seed int64, set bool) simulator.DrawFunc {
	if !set {
		return nil
	}
	return rand.New(rand.NewSource(seed)).Float64
}

func retryPrinter(w io.Writer) func(attempt, maxAttempts int, err error) {
	return func(attempt, maxAttempts int, _ error) {
		fmt.Fprintf(w, "RETRYING (%d/%d)...\n", attempt+1, maxAttempts)
	}
}

func printSession(w io.Writer, s *core.Session) {
	fmt.Fprintf(w, "MAGI SYSTEM :: %s\n", strings.ToUpper(string(s.Source)))
	fmt.Fprintf(w, "PROPOSAL: %s\n\n", s.Proposal)

	if s.Verdict.IsValid && s.Verdict.Votes != nil {
		for _, p := range core.Personalities() {
			v := s.Verdict.Votes.Of(p.Name)
			mark := "DENY"
			if v.Vote {
				mark = "APPROVE"
			}
			fmt.Fprintf(w, "%-12s %-8s %s\n", p.Designation, mark, v.Reason)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "RESULT: %s\n", s.Outcome.Label)
	if s.Outcome.Detail != "" {
		fmt.Fprintf(w, "DETAIL: %s\n", s.Outcome.Detail)
	}
	if s.Outcome.Warning != "" {
		fmt.Fprintln(w, s.Outcome.Warning)
	}
	fmt.Fprintln(w, s.Outcome.Announcement)
}
