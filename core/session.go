package core

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies what produced a verdict
type Source string

const (
	SourceSimulation Source = "simulation"
	SourceGemini     Source = "gemini"
	SourceOpenAI     Source = "openai"
)

// Session records one council deliberation so later steps (reports,
// history) receive the proposal and verdict explicitly.
type Session struct {
	ID        string    `json:"id"`
	Proposal  string    `json:"proposal"`
	Verdict   Verdict   `json:"verdict"`
	Outcome   Outcome   `json:"outcome"`
	Source    Source    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	Report    string    `json:"report,omitempty"`
}

// NewSession tallies the verdict and stamps a fresh session
func NewSession(proposal string, verdict Verdict, source Source) *Session {
	return &Session{
		ID:        uuid.New().String(),
		Proposal:  proposal,
		Verdict:   verdict,
		Outcome:   Tally(verdict),
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}

// FromLLM reports whether an external model decided the session
func (s *Session) FromLLM() bool {
	return s.Source != SourceSimulation && s.Source != ""
}
