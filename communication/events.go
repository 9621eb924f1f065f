package communication

import (
	"context"
	"errors"
	"time"

	"github.com/NethermindEth/magi/core"
)

const (
	EventVerdict         = "VERDICT"
	EventInvalidProposal = "INVALID_PROPOSAL"
	EventReportReady     = "REPORT_READY"
	EventSystemError     = "SYSTEM_ERROR"
)

// Event is what the council announces to connected front ends
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Publisher delivers council events somewhere
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NewEvent stamps a new event
func NewEvent(eventType string, payload interface{}) Event {
	return Event{Type: eventType, Payload: payload, Timestamp: time.Now().UTC()}
}

// SessionEvent picks the event type matching the session's verdict
func SessionEvent(s *core.Session) Event {
	if !s.Verdict.IsValid {
		return NewEvent(EventInvalidProposal, s)
	}
	return NewEvent(EventVerdict, s)
}

// ReportEvent announces a finished report for a session
func ReportEvent(sessionID, report string) Event {
	return NewEvent(EventReportReady, map[string]string{
		"session_id": sessionID,
		"report":     report,
	})
}

// Publishers fans one event out to several publishers
type Publishers []Publisher

func (ps Publishers) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range ps {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
