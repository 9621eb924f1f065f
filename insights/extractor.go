package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NethermindEth/magi/ai"
	"github.com/NethermindEth/magi/core"
	"github.com/NethermindEth/magi/storage"
)

var (
	ErrAPIKeyRequired = errors.New("API KEY REQUIRED FOR REPORT")
	ErrNoDecision     = errors.New("no council decision to report on")
	ErrReportFailed   = errors.New("REPORT GENERATION FAILED")
)

// TacticalReport is a narrative write-up of one council session
type TacticalReport struct {
	SessionID   string    `json:"session_id"`
	Proposal    string    `json:"proposal"`
	Decision    string    `json:"decision"`
	Report      string    `json:"report"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Reporter writes tactical reports with a language model
type Reporter struct {
	llm    ai.LLM
	store  storage.Store
	policy ai.RetryPolicy
	logger *zap.Logger
}

// NewReporter creates a reporter. llm may be nil, in which case every
// request fails with ErrAPIKeyRequired; store may be nil.
func NewReporter(llm ai.LLM, store storage.Store, policy ai.RetryPolicy, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{llm: llm, store: store, policy: policy, logger: logger}
}

// Available reports whether a model is configured
func (r *Reporter) Available() bool {
	return r.llm != nil
}

// GenerateReport writes the report for session and, with a store
// configured, saves it back onto the session.
func (r *Reporter) GenerateReport(ctx context.Context, session *core.Session) (*TacticalReport, error) {
	if r.llm == nil {
		return nil, ErrAPIKeyRequired
	}
	if session == nil || !session.Verdict.IsValid {
		return nil, ErrNoDecision
	}

	prompt := ai.ReportPrompt(session.Proposal, session.Outcome.Label)

	var text string
	err := ai.Retry(ctx, r.policy, func(ctx context.Context) error {
		out, err := r.llm.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		if strings.TrimSpace(out) == "" {
			return ErrReportFailed
		}
		text = out
		return nil
	})
	if err != nil {
		r.logger.Error("Report generation failed", zap.String("session", session.ID), zap.Error(err))
		return nil, fmt.Errorf("ERROR GENERATING REPORT: %w", err)
	}

	session.Report = text
	if r.store != nil {
		if err := r.store.SaveSession(session); err != nil {
			r.logger.Warn("Failed to store report", zap.String("session", session.ID), zap.Error(err))
		}
	}

	r.logger.Info("Report generated", zap.String("session", session.ID), zap.Int("length", len(text)))
	return &TacticalReport{
		SessionID:   session.ID,
		Proposal:    session.Proposal,
		Decision:    session.Outcome.Label,
		Report:      text,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// ReportByID loads a stored session and reports on it
func (r *Reporter) ReportByID(ctx context.Context, sessionID string) (*TacticalReport, error) {
	if r.store == nil {
		return nil, storage.ErrNotFound
	}
	session, err := r.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	return r.GenerateReport(ctx, session)
}
