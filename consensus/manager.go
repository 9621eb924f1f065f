// Package consensus runs council deliberations: it picks the deciding
// backend, tallies the verdict, and hands the resulting session to the
// store, the event publishers and any result subscribers.
package consensus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/NethermindEth/magi/ai"
	"github.com/NethermindEth/magi/communication"
	"github.com/NethermindEth/magi/core"
	"github.com/NethermindEth/magi/simulator"
	"github.com/NethermindEth/magi/storage"
)

// DefaultSimulationDelay mirrors the processing pause shown before an
// offline verdict.
const DefaultSimulationDelay = 2 * time.Second

var ErrProposalRequired = errors.New("PROPOSAL REQUIRED")

// Decider produces a verdict for a proposal.
type Decider interface {
	Decide(ctx context.Context, proposal string) (core.Verdict, error)
}

// Council decides proposals. It is safe for concurrent use.
type Council struct {
	decider         Decider
	source          core.Source
	simulationDelay time.Duration
	store           storage.Store
	publishers      []communication.Publisher
	logger          *zap.Logger

	llm    ai.LLM
	draw   simulator.DrawFunc
	policy ai.RetryPolicy

	mu          sync.RWMutex
	subscribers []chan *core.Session
}

// Option configures a Council.
type Option func(*Council)

// WithLLM makes the council ask a language model instead of simulating.
func WithLLM(llm ai.LLM, source core.Source) Option {
	return func(c *Council) {
		c.llm = llm
		c.source = source
	}
}

// WithDraw injects the simulator's random source.
func WithDraw(draw simulator.DrawFunc) Option {
	return func(c *Council) { c.draw = draw }
}

// WithSimulationDelay sets the pause before an offline verdict.
func WithSimulationDelay(d time.Duration) Option {
	return func(c *Council) { c.simulationDelay = d }
}

// WithRetryPolicy overrides the model retry policy.
func WithRetryPolicy(p ai.RetryPolicy) Option {
	return func(c *Council) { c.policy = p }
}

// WithStore persists every finished session.
func WithStore(s storage.Store) Option {
	return func(c *Council) { c.store = s }
}

// WithPublisher announces every finished session.
func WithPublisher(p communication.Publisher) Option {
	return func(c *Council) { c.publishers = append(c.publishers, p) }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Council) { c.logger = l }
}

// NewCouncil builds a council. Without WithLLM it runs the offline simulator.
func NewCouncil(opts ...Option) *Council {
	c := &Council{
		source:          core.SourceSimulation,
		simulationDelay: DefaultSimulationDelay,
		policy:          ai.DeliberationPolicy(),
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.llm != nil {
		c.decider = ai.NewDecider(c.llm, c.policy)
	} else {
		c.source = core.SourceSimulation
		c.decider = simulator.New(c.draw)
	}
	return c
}

// Source reports what decides this council's proposals.
func (c *Council) Source() core.Source {
	return c.source
}

// Deliberate decides proposal and returns the recorded session. An invalid
// proposal is a normal session; errors mean the backend itself failed.
func (c *Council) Deliberate(ctx context.Context, proposal string) (*core.Session, error) {
	if strings.TrimSpace(proposal) == "" {
		return nil, ErrProposalRequired
	}

	logger := c.logger.With(zap.String("source", string(c.source)))
	logger.Info("Deliberating proposal", zap.Int("length", len(proposal)))

	if c.source == core.SourceSimulation && c.simulationDelay > 0 {
		timer := time.NewTimer(c.simulationDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	verdict, err := c.decider.Decide(ctx, proposal)
	if err != nil {
		logger.Error("Council backend failed", zap.Error(err))
		return nil, fmt.Errorf("council %s failed: %w", c.source, err)
	}

	session := core.NewSession(proposal, verdict, c.source)
	logger.Info("Council reached a verdict",
		zap.String("session", session.ID),
		zap.String("outcome", session.Outcome.Label))

	if c.store != nil {
		if err := c.store.SaveSession(session); err != nil {
			logger.Warn("Failed to store session", zap.String("session", session.ID), zap.Error(err))
		}
	}

	c.announce(ctx, communication.SessionEvent(session))
	c.notifySubscribers(session)
	return session, nil
}

// Announce sends an event to every publisher; failures are logged only.
func (c *Council) Announce(ctx context.Context, event communication.Event) {
	c.announce(ctx, event)
}

func (c *Council) announce(ctx context.Context, event communication.Event) {
	for _, p := range c.publishers {
		if err := p.Publish(ctx, event); err != nil {
			c.logger.Warn("Failed to publish event", zap.String("type", event.Type), zap.Error(err))
		}
	}
}

// ReportAvailable reports whether a tactical report can be written for s.
// Only model-decided, valid sessions qualify.
func (c *Council) ReportAvailable(s *core.Session) bool {
	return s != nil && s.FromLLM() && s.Verdict.IsValid
}

// SubscribeResult delivers every future session to ch. Sends never block;
// a full channel misses the session.
func (c *Council) SubscribeResult(ch chan *core.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, ch)
}

func (c *Council) notifySubscribers(s *core.Session) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, ch := range c.subscribers {
		select {
		case ch <- s:
		default:
			c.logger.Debug("Dropping session for slow subscriber", zap.String("session", s.ID))
		}
	}
}
