// Package simulator decides proposals offline when no language model is
// configured. Decisions come from a fixed keyword table plus one uniform
// random draw per council member.
package simulator

import (
	"context"
	"math/rand"
	"strings"
	"unicode/utf8"

	"github.com/NethermindEth/magi/core"
)

// DrawFunc returns a uniform value in [0, 1).
type DrawFunc func() float64

// Simulator is a council backend that never leaves the process.
type Simulator struct {
	draw DrawFunc
}

// New returns a Simulator using draw, or math/rand when draw is nil.
func New(draw DrawFunc) *Simulator {
	if draw == nil {
		draw = rand.Float64
	}
	return &Simulator{draw: draw}
}

// Decide evaluates proposal. It never fails; the error is there so the
// simulator satisfies the same contract as the model-backed deciders.
func (s *Simulator) Decide(_ context.Context, proposal string) (core.Verdict, error) {
	return Simulate(proposal, s.draw), nil
}

// Simulate evaluates a proposal and returns a fresh verdict.
func Simulate(proposal string, draw DrawFunc) core.Verdict {
	if draw == nil {
		draw = rand.Float64
	}

	q := strings.ToLower(strings.TrimSpace(proposal))
	ko := IsKorean(q)
	lex := english
	if ko {
		lex = korean
	}

	if !qualifies(q) {
		return core.InvalidVerdict(lex.invalid)
	}

	if containsAny(q, selfDestructTokens) {
		return core.ValidVerdict(core.Votes{
			Melchior:  core.Vote{Vote: true, Reason: lex.lastResort},
			Balthasar: core.Vote{Vote: true, Reason: lex.endSuffering},
			Casper:    core.Vote{Vote: false, Reason: lex.wantToLive},
		})
	}

	votes := core.Votes{
		Melchior:  core.Vote{Vote: draw() > core.Melchior.RejectProbability, Reason: lex.melchiorReason},
		Balthasar: core.Vote{Vote: draw() > core.Balthasar.RejectProbability, Reason: lex.balthasarReason},
		Casper:    core.Vote{Vote: draw() > core.Casper.RejectProbability, Reason: lex.casperReason},
	}

	for _, o := range casperOverrides {
		if containsAny(q, o.tokens) {
			votes.Casper = core.Vote{Vote: o.vote, Reason: o.reason(ko)}
		}
	}

	return core.ValidVerdict(votes)
}

// IsKorean reports whether text contains a Hangul jamo or syllable.
func IsKorean(text string) bool {
	for _, r := range text {
		switch {
		case r >= 'ㄱ' && r <= 'ㅎ', r >= 'ㅏ' && r <= 'ㅣ', r >= '가' && r <= '힣':
			return true
		}
	}
	return false
}

func qualifies(q string) bool {
	n := utf8.RuneCountInString(q)
	if n < minLength {
		return false
	}
	return !(n < greetingLength && containsAny(q, fillerTokens))
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
