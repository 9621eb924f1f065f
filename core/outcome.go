package core

import "fmt"

// OutcomeKind classifies the council's combined decision
type OutcomeKind string

const (
	Unanimous OutcomeKind = "unanimous"
	Majority  OutcomeKind = "majority"
	Rejected  OutcomeKind = "rejected"
	Invalid   OutcomeKind = "invalid"
)

// Cue names the effect a front end plays for an outcome
type Cue string

const (
	CueApprove Cue = "approve"
	CueDeny    Cue = "deny"
	CueError   Cue = "error"
	CueAlarm   Cue = "alarm"
)

const defaultInvalidDetail = "NOT A PROPOSAL"

// Outcome is the tallied result of a verdict
type Outcome struct {
	Kind         OutcomeKind `json:"kind"`
	Approvals    int         `json:"approvals"`
	Conditional  bool        `json:"conditional,omitempty"`
	Label        string      `json:"label"`
	Detail       string      `json:"detail,omitempty"`
	Warning      string      `json:"warning,omitempty"`
	Cue          Cue         `json:"cue"`
	Announcement string      `json:"announcement"`
}

// Tally combines the three votes of a verdict into a single outcome.
func Tally(v Verdict) Outcome {
	if !v.IsValid || v.Votes == nil {
		detail := v.ErrorMessage
		if detail == "" {
			detail = defaultInvalidDetail
		}
		return Outcome{
			Kind:         Invalid,
			Label:        "INVALID DATA",
			Detail:       detail,
			Cue:          CueError,
			Announcement: "Invalid Data. Unable to process.",
		}
	}

	votes := *v.Votes
	yes := votes.Approvals()
	switch {
	case yes == 3:
		return Outcome{
			Kind:         Unanimous,
			Approvals:    yes,
			Label:        "UNANIMOUS APPROVAL",
			Cue:          CueApprove,
			Announcement: "Unanimous Approval. Motion Carried.",
		}
	case yes >= 1:
		out := Outcome{
			Kind:         Majority,
			Approvals:    yes,
			Label:        fmt.Sprintf("MAJORITY VOTE (%d/3)", yes),
			Cue:          CueApprove,
			Announcement: "Majority Vote. Motion Approved Conditionally.",
		}
		// casper alone breaking an otherwise united council
		if votes.Melchior.Vote && votes.Balthasar.Vote && !votes.Casper.Vote {
			out.Conditional = true
			out.Label += " (CONDITIONAL)"
			out.Warning = fmt.Sprintf("WARNING: %s has betrayed the consensus.", Casper.Designation)
		}
		return out
	default:
		return Outcome{
			Kind:         Rejected,
			Label:        "REJECTED",
			Cue:          CueDeny,
			Announcement: "Motion Rejected.",
		}
	}
}
