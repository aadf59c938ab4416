package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from the engine for logging and metrics.
//
// All callbacks are invoked on the engine's worker goroutine (state hooks
// additionally from the constructing goroutine, once, at engine creation).
// Implementations must be fast and must never fail or block; heavy work
// should be done asynchronously so as not to delay message processing.
type Observer interface {
	// OnStateEnter is called when a state variant becomes active. name is
	// the variant's own name, not the full path; for composite states the
	// ancestor's entry is reported before the sub-state's.
	OnStateEnter(name string)

	// OnStateExit is called when a state variant is left. The deepest
	// active sub-state's exit is reported first, then each ancestor's.
	OnStateExit(name string)

	// OnTransition is called after a state change completed, with the
	// ::-joined state paths before and after and the event that caused it.
	// Internal transitions (handled without a state change) do not report.
	OnTransition(from, to, event string)

	// OnMessageStart is called when the dispatcher begins processing a
	// message, after the pre-dispatch timeout check.
	OnMessageStart(msg *Message)

	// OnMessageDone is called after a message was processed. resp is the
	// produced response, nil when the message did not need a reply.
	OnMessageDone(msg *Message, resp *Message, d time.Duration)

	// OnMessageDropped is called when a message is discarded without
	// processing: pre-dispatch timeout, timed out while buffered, or
	// malformed wire input.
	OnMessageDropped(msg *Message, reason string)

	// OnMessageBuffered is called when a sync message is moved to the side
	// buffer because another sync message is mid-processing.
	OnMessageBuffered(msg *Message)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnStateEnter(name string)                                   {}
func (NoopObserver) OnStateExit(name string)                                    {}
func (NoopObserver) OnTransition(from, to, event string)                        {}
func (NoopObserver) OnMessageStart(msg *Message)                                {}
func (NoopObserver) OnMessageDone(msg *Message, resp *Message, d time.Duration) {}
func (NoopObserver) OnMessageDropped(msg *Message, reason string)               {}
func (NoopObserver) OnMessageBuffered(msg *Message)                             {}

// CompositeObserver fans out callbacks to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards callbacks to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnStateEnter(name string) {
	for _, o := range c.observers {
		o.OnStateEnter(name)
	}
}

func (c *CompositeObserver) OnStateExit(name string) {
	for _, o := range c.observers {
		o.OnStateExit(name)
	}
}

func (c *CompositeObserver) OnTransition(from, to, event string) {
	for _, o := range c.observers {
		o.OnTransition(from, to, event)
	}
}

func (c *CompositeObserver) OnMessageStart(msg *Message) {
	for _, o := range c.observers {
		o.OnMessageStart(msg)
	}
}

func (c *CompositeObserver) OnMessageDone(msg *Message, resp *Message, d time.Duration) {
	for _, o := range c.observers {
		o.OnMessageDone(msg, resp, d)
	}
}

func (c *CompositeObserver) OnMessageDropped(msg *Message, reason string) {
	for _, o := range c.observers {
		o.OnMessageDropped(msg, reason)
	}
}

func (c *CompositeObserver) OnMessageBuffered(msg *Message) {
	for _, o := range c.observers {
		o.OnMessageBuffered(msg)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs state and message
// lifecycle events using the provided slog.Logger. If logger is nil,
// slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnStateEnter(name string) {
	o.Logger.Debug("state_enter", slog.String("state", name))
}

func (o *LoggingObserver) OnStateExit(name string) {
	o.Logger.Debug("state_exit", slog.String("state", name))
}

func (o *LoggingObserver) OnTransition(from, to, event string) {
	o.Logger.Info("transition",
		slog.String("from", from),
		slog.String("to", to),
		slog.String("event", event),
	)
}

func (o *LoggingObserver) OnMessageStart(msg *Message) {
	o.Logger.Debug("message_start",
		slog.Uint64("id", msg.ID),
		slog.String("name", msg.Name),
		slog.Bool("sync", msg.Sync),
		slog.Duration("age", msg.Age()),
	)
}

func (o *LoggingObserver) OnMessageDone(msg *Message, resp *Message, d time.Duration) {
	attrs := []slog.Attr{
		slog.Uint64("id", msg.ID),
		slog.String("name", msg.Name),
		slog.Duration("duration", d),
	}
	if resp != nil {
		attrs = append(attrs, slog.Bool("success", resp.Success))
		if !resp.Success {
			attrs = append(attrs, slog.String("error", resp.Error))
		}
	}
	o.Logger.LogAttrs(context.Background(), slog.LevelDebug, "message_done", attrs...)
}

func (o *LoggingObserver) OnMessageDropped(msg *Message, reason string) {
	o.Logger.Warn("message_dropped",
		slog.Uint64("id", msg.ID),
		slog.String("name", msg.Name),
		slog.String("reason", reason),
	)
}

func (o *LoggingObserver) OnMessageBuffered(msg *Message) {
	o.Logger.Debug("message_buffered",
		slog.Uint64("id", msg.ID),
		slog.String("name", msg.Name),
	)
}

// BasicMetrics collects simple counters and aggregate processing durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	transitions       atomic.Int64
	messagesProcessed atomic.Int64
	messagesFailed    atomic.Int64
	messagesDropped   atomic.Int64
	messagesBuffered  atomic.Int64
	totalProcessing   atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	Transitions       int64
	MessagesProcessed int64
	MessagesFailed    int64
	MessagesDropped   int64
	MessagesBuffered  int64
	AvgProcessing     time.Duration
}

func (m *BasicMetrics) OnTransition(from, to, event string) {
	m.transitions.Add(1)
}

func (m *BasicMetrics) OnMessageDone(msg *Message, resp *Message, d time.Duration) {
	m.messagesProcessed.Add(1)
	m.totalProcessing.Add(d.Nanoseconds())
	if resp != nil && !resp.Success {
		m.messagesFailed.Add(1)
	}
}

func (m *BasicMetrics) OnMessageDropped(msg *Message, reason string) {
	m.messagesDropped.Add(1)
}

func (m *BasicMetrics) OnMessageBuffered(msg *Message) {
	m.messagesBuffered.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	processed := m.messagesProcessed.Load()
	totalNs := m.totalProcessing.Load()

	var avg time.Duration
	if processed > 0 {
		avg = time.Duration(totalNs / processed)
	}

	return BasicMetricsSnapshot{
		Transitions:       m.transitions.Load(),
		MessagesProcessed: processed,
		MessagesFailed:    m.messagesFailed.Load(),
		MessagesDropped:   m.messagesDropped.Load(),
		MessagesBuffered:  m.messagesBuffered.Load(),
		AvgProcessing:     avg,
	}
}
