package api

import "time"

// Engine is the message-driven state machine engine API.
//
// All behavior is exposed through messages: producers submit them from any
// goroutine, a single worker processes them one at a time against the
// nested state model, and responses come back either through the blocking
// Send path or through the pollable response queue.
type Engine interface {
	// Start launches the worker goroutine. Calling Start while running is
	// a no-op.
	Start()

	// Stop signals the worker to finish its current iteration and waits
	// for it to exit. In-flight work is not interrupted. Calling Stop
	// while stopped is a no-op.
	Stop()

	// IsRunning reports whether the worker goroutine is running.
	IsRunning() bool

	// RegisterAction registers an action by name. Registering a duplicate
	// name is an error.
	RegisterAction(a Action) error

	// SendAsync enqueues a fire-and-forget message and returns its
	// correlation id immediately. No response is ever produced.
	SendAsync(name string, params Params, sync bool) uint64

	// Send enqueues a message and blocks the calling goroutine until the
	// worker resolves it or timeout elapses, whichever comes first. On
	// timeout a synthesized timeout response is returned and any late
	// resolution is diverted to the response queue. timeout == 0 waits
	// without bound.
	Send(name string, params Params, sync bool, timeout time.Duration) Message

	// SendJSON submits a raw wire-format request. Returns the assigned
	// correlation id, or 0 if the input was malformed (logged, dropped,
	// never surfaced as a protocol error).
	SendJSON(data []byte) uint64

	// TryResponse pops the next response from the response queue, if any.
	TryResponse() (Message, bool)

	// WaitResponse waits up to timeout for the response matching id,
	// re-queuing responses with other ids.
	WaitResponse(id uint64, timeout time.Duration) (Message, bool)

	// StateName returns the ::-joined path of active state variants,
	// e.g. "Operational::Tracking::Locked". Safe from any goroutine.
	StateName() string

	// Within reports whether the named state variant is anywhere on the
	// active state path.
	Within(variant string) bool
}
