package hsmq

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/petrijr/hsmq/internal/engine"
	"github.com/petrijr/hsmq/internal/hsm"
	"github.com/petrijr/hsmq/internal/journal"
	"github.com/petrijr/hsmq/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Engine               = api.Engine
	Message              = api.Message
	Params               = api.Params
	Action               = api.Action
	ActionResult         = api.ActionResult
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver
	SQLiteJournal        = journal.SQLiteJournal
	TransitionRecord     = journal.TransitionRecord
	MessageRecord        = journal.MessageRecord
)

// Re-export common helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
	Ok                   = api.Ok
	Fail                 = api.Fail
	NewResponse          = api.NewResponse
	NewTimeoutResponse   = api.NewTimeoutResponse
	ParseRequest         = api.ParseRequest
)

// InfiniteTimeout is the sentinel for messages without a timeout budget.
const InfiniteTimeout = api.InfiniteTimeout

// State variant names, for use with Engine.Within and for matching
// against StateName paths.
const (
	StateOff          = hsm.StateOff
	StateOperational  = hsm.StateOperational
	StateInitializing = hsm.StateInitializing
	StateIdle         = hsm.StateIdle
	StateTracking     = hsm.StateTracking
	StateError        = hsm.StateError
	StateSearching    = hsm.StateSearching
	StateLocked       = hsm.StateLocked
	StateMeasuring    = hsm.StateMeasuring
)

// Config describes how to construct an Engine.
type Config struct {
	// Observer receives state and message lifecycle callbacks.
	Observer Observer

	// Logger is used for worker diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// PollInterval bounds the worker's per-iteration wait, and therefore
	// how promptly Stop is observed. Defaults to 100ms.
	PollInterval time.Duration
}

// Engine constructors
// These wrap the internal/engine package so external callers never need
// to import internal packages.

// NewEngine returns a stopped Engine with the state model at Off and no
// actions registered.
func NewEngine() Engine {
	return engine.New(engine.Config{})
}

// NewEngineWithObserver returns an Engine reporting to the given Observer.
func NewEngineWithObserver(obs Observer) Engine {
	return engine.New(engine.Config{Observer: obs})
}

// NewEngineWithConfig returns an Engine built from the given configuration.
func NewEngineWithConfig(cfg Config) Engine {
	return engine.New(engine.Config{
		Observer:     cfg.Observer,
		Logger:       cfg.Logger,
		PollInterval: cfg.PollInterval,
	})
}

// NewSQLiteJournal returns an Observer that appends state transitions and
// processed messages to the given SQLite database. Pass it to
// NewEngineWithObserver (or combine via NewCompositeObserver).
func NewSQLiteJournal(db *sql.DB) (*SQLiteJournal, error) {
	return journal.NewSQLiteJournal(db)
}
