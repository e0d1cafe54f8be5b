// Package planner implements the planning workflow engine: the session
// registry, the per-participant preference collection state machine, the
// per-session plan lifecycle state machine, and the status aggregator.
package planner

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"group-planner/internal/models"
	"group-planner/internal/notify"
	"group-planner/internal/oracle"
	"group-planner/internal/questions"
	"group-planner/internal/storage"
)

// DefaultContinuationThreshold is the number of recorded responses after
// which a participant is asked whether they want to keep going.
const DefaultContinuationThreshold = 5

// Config carries optional engine settings.
type Config struct {
	// Questions overrides the canonical question catalog. Nil uses the
	// built-in list.
	Questions *questions.Catalog
	// ContinuationThreshold overrides DefaultContinuationThreshold when
	// positive.
	ContinuationThreshold int
	Logger                zerolog.Logger
}

// Engine coordinates multi-party event planning. Each session is the unit
// of serialization: transitions touching one session's participants or
// plans run under that session's lock, while different sessions proceed in
// parallel. Notification sends are best-effort; state is authoritative.
type Engine struct {
	store     storage.Store
	notifier  notify.Notifier
	oracle    oracle.PlanOracle
	questions *questions.Catalog
	threshold int
	log       zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a planning engine.
func New(store storage.Store, notifier notify.Notifier, planOracle oracle.PlanOracle, cfg Config) *Engine {
	catalog := cfg.Questions
	if catalog == nil {
		catalog = questions.Default()
	}
	threshold := cfg.ContinuationThreshold
	if threshold <= 0 {
		threshold = DefaultContinuationThreshold
	}
	return &Engine{
		store:     store,
		notifier:  notifier,
		oracle:    planOracle,
		questions: catalog,
		threshold: threshold,
		log:       cfg.Logger.With().Str("component", "planner").Logger(),
		locks:     make(map[string]*sync.Mutex),
	}
}

// Questions exposes the canonical question catalog for surfaces that
// present all questions at once.
func (e *Engine) Questions() *questions.Catalog { return e.questions }

// lockSession acquires the session's mutex and returns its unlock func.
func (e *Engine) lockSession(sessionID string) func() {
	e.mu.Lock()
	lock, ok := e.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[sessionID] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// deliver sends a message and logs a failure instead of returning it.
// Delivery failures never roll back a committed transition.
func (e *Engine) deliver(ctx context.Context, contact string, channel models.Channel, msg notify.Message) {
	if err := e.notifier.Deliver(ctx, contact, channel, msg); err != nil {
		e.log.Warn().Err(err).
			Str("channel", string(channel)).
			Str("to", contact).
			Msg("Delivery failed")
	}
}

// channelFor resolves the channel for a participant: the preferred method
// when set, otherwise inferred from the contact format at send time.
func channelFor(p models.Participant) models.Channel {
	if p.PreferredMethod != "" && p.PreferredMethod != models.ChannelNone {
		return p.PreferredMethod
	}
	return notify.InferChannel(p.Contact)
}
