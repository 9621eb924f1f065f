package core

import (
	"errors"
	"fmt"
)

// Vote is a single personality's decision on a proposal
type Vote struct {
	Vote   bool   `json:"vote"`
	Reason string `json:"reason"`
}

// Votes holds exactly one vote per council personality
type Votes struct {
	Melchior  Vote `json:"melchior"`
	Balthasar Vote `json:"balthasar"`
	Casper    Vote `json:"casper"`
}

// Verdict represents the outcome of evaluating a proposal.
// ErrorMessage is set only when IsValid is false, Votes only when it is true.
type Verdict struct {
	IsValid      bool   `json:"isValid"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Votes        *Votes `json:"votes,omitempty"`
}

var (
	ErrMissingVotes    = errors.New("valid verdict carries no votes")
	ErrUnexpectedVotes = errors.New("invalid verdict carries votes")
	ErrEmptyVoteReason = errors.New("vote reason is empty")
)

// InvalidVerdict rejects a proposal with a human-readable message
func InvalidVerdict(message string) Verdict {
	return Verdict{IsValid: false, ErrorMessage: message}
}

// ValidVerdict wraps a full set of votes
func ValidVerdict(votes Votes) Verdict {
	return Verdict{IsValid: true, Votes: &votes}
}

// Validate checks that a verdict obtained from an external source has the
// same shape the simulator produces.
func (v Verdict) Validate() error {
	if !v.IsValid {
		if v.Votes != nil {
			return ErrUnexpectedVotes
		}
		return nil
	}
	if v.Votes == nil {
		return ErrMissingVotes
	}
	for _, p := range Personalities() {
		if v.Votes.Of(p.Name).Reason == "" {
			return fmt.Errorf("%s: %w", p.Name, ErrEmptyVoteReason)
		}
	}
	return nil
}

// Of returns the vote cast by the named personality.
func (v Votes) Of(name string) Vote {
	switch name {
	case MelchiorName:
		return v.Melchior
	case BalthasarName:
		return v.Balthasar
	case CasperName:
		return v.Casper
	}
	return Vote{}
}

// Approvals counts the approving votes
func (v Votes) Approvals() int {
	n := 0
	for _, vote := range []Vote{v.Melchior, v.Balthasar, v.Casper} {
		if vote.Vote {
			n++
		}
	}
	return n
}
