// Package hsmq provides a threaded hierarchical state-machine engine
// with a message-correlated command/event protocol.
//
// A single logical actor — a simulated device controller — exposes its
// behavior exclusively through messages placed on a queue, processes
// them one at a time on a dedicated worker goroutine, and returns
// results either synchronously (blocking the caller) or asynchronously
// (via a pollable response queue).
//
// # Core Concepts
//
// The hsmq programming model is intentionally small:
//
//  1. Engine
//  2. Message
//  3. Action
//  4. Observer
//  5. Controller
//
// # Engine
//
// The Engine owns a three-level nested state model
// (Off | Operational ▸ Initializing/Idle/Tracking/Error ▸
// Searching/Locked/Measuring) and a single worker goroutine that drains
// the message queue. Each message is classified by name: state-changing
// events are applied against the transition table; everything else is
// looked up in the action registry. The canonical state identifier is
// the ::-joined path of active variants, e.g.
// "Operational::Tracking::Locked".
//
// Producers on any goroutine submit messages three ways:
//
//   - SendAsync: fire-and-forget, returns the correlation id
//   - Send: blocks until the worker resolves the message or the timeout
//     elapses, whichever comes first
//   - SendJSON: raw wire-format requests, responses retrieved later by
//     id from the response queue
//
// # Message
//
// Message is the unified envelope for requests and responses, correlated
// by a per-engine monotonic id. The sync flag governs the worker's
// buffering discipline (sync messages arriving while a sync message is
// mid-processing are deferred); it is independent of whether the caller
// blocks.
//
// # Action
//
// Actions are externally supplied, state-restricted operations — the
// tracker package provides the simulated laser-tracker set (Home,
// GetPosition, SetLaserPower, Compensate, GetStatus, MoveRelative).
// The engine enforces only the envelope contract; state validation and
// simulated device work live entirely in the executor.
//
// # Observer
//
// Observers receive state entry/exit hooks, transitions, and message
// lifecycle callbacks. LoggingObserver writes structured slog output,
// BasicMetrics collects counters, and SQLiteJournal appends transitions
// and processed messages to SQLite. Combine them with
// NewCompositeObserver.
//
// # Controller
//
// Controller bundles an Engine with the tracker action set and typed
// convenience calls, the quickest way to drive the simulated device:
//
//	ctrl := hsmq.NewController()
//	ctrl.Start()
//	defer ctrl.Stop()
//
//	ctrl.PowerOn()
//	ctrl.SendEvent("InitComplete", nil)
//	resp := ctrl.Home(100)
//
// For examples, see the /examples directory.
package hsmq
