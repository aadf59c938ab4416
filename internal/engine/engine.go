// Package engine implements the worker dispatcher: a single goroutine
// that owns the state model, drains the message queue, classifies each
// message as a state transition or an action invocation, and routes
// responses back to blocked callers or the response queue.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petrijr/hsmq/internal/hsm"
	"github.com/petrijr/hsmq/internal/msgqueue"
	"github.com/petrijr/hsmq/pkg/api"
)

const defaultPollInterval = 100 * time.Millisecond

// Config describes how to construct an Engine. The zero value is usable.
type Config struct {
	// Observer receives lifecycle callbacks. Defaults to NoopObserver.
	Observer api.Observer

	// Logger is used for worker-loop diagnostics (dropped messages,
	// malformed input). Defaults to slog.Default().
	Logger *slog.Logger

	// PollInterval bounds how long the worker waits for a message per
	// iteration, and therefore how promptly Stop is observed with no
	// traffic. Defaults to 100ms.
	PollInterval time.Duration
}

// Engine is the dispatcher implementation behind api.Engine.
type Engine struct {
	machine   *hsm.Machine
	queue     *msgqueue.Queue[api.Message]
	responses *msgqueue.Queue[api.Message]

	actionsMu sync.RWMutex
	actions   map[string]api.Action

	// Correlation table: id -> one-shot buffered channel. An entry is
	// inserted by a blocking Send and removed either when the worker
	// resolves it or when the caller times out.
	waitersMu sync.Mutex
	waiters   map[uint64]chan api.Message

	// Side buffer for sync messages that arrive while a sync message is
	// mid-processing. Touched only from the worker goroutine's call
	// chain, but locked anyway so inspection stays safe.
	bufferMu       sync.Mutex
	buffer         []api.Message
	syncInProgress atomic.Bool

	lifecycleMu sync.Mutex
	started     bool
	running     atomic.Bool
	wg          sync.WaitGroup

	nextID atomic.Uint64

	obs          api.Observer
	log          *slog.Logger
	pollInterval time.Duration
}

// Ensure Engine implements the public interface.
var _ api.Engine = (*Engine)(nil)

// New constructs a stopped Engine with the state model initialized to Off.
func New(cfg Config) *Engine {
	obs := cfg.Observer
	if obs == nil {
		obs = api.NoopObserver{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}

	return &Engine{
		machine:      hsm.New(obs),
		queue:        msgqueue.New[api.Message](),
		responses:    msgqueue.New[api.Message](),
		actions:      make(map[string]api.Action),
		waiters:      make(map[uint64]chan api.Message),
		obs:          obs,
		log:          logger,
		pollInterval: poll,
	}
}

// RegisterAction registers an action by name. Names must be unique and
// must not shadow an event name, since events are classified first.
func (e *Engine) RegisterAction(a api.Action) error {
	name := a.Name()
	if name == "" {
		return fmt.Errorf("action name is required")
	}
	if hsm.IsEventName(name) {
		return fmt.Errorf("action name collides with event: %s", name)
	}

	e.actionsMu.Lock()
	defer e.actionsMu.Unlock()
	if _, exists := e.actions[name]; exists {
		return fmt.Errorf("action already registered: %s", name)
	}
	e.actions[name] = a
	return nil
}

// Start launches the worker goroutine. No-op while already running.
func (e *Engine) Start() {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()
	if e.started {
		return
	}
	e.started = true
	e.running.Store(true)
	e.wg.Add(1)
	go e.run()
	e.log.Debug("worker started")
}

// Stop signals the worker and waits for its current iteration to finish.
// In-flight work is not interrupted. No-op while already stopped.
func (e *Engine) Stop() {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()
	if !e.started {
		return
	}
	e.started = false
	e.running.Store(false)
	e.wg.Wait()
	e.log.Debug("worker stopped")
}

// IsRunning reports whether the worker goroutine is running.
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// StateName returns the ::-joined active state path.
func (e *Engine) StateName() string {
	return e.machine.StateName()
}

// Within reports whether the named variant is on the active state path.
func (e *Engine) Within(variant string) bool {
	return e.machine.Within(variant)
}

// Machine exposes the state model for in-process inspection and tests.
func (e *Engine) Machine() *hsm.Machine {
	return e.machine
}

// SendAsync enqueues a fire-and-forget message and returns its id.
func (e *Engine) SendAsync(name string, params api.Params, sync bool) uint64 {
	id := e.nextID.Add(1)
	msg := api.NewMessage(id, name, params)
	msg.Sync = sync
	e.queue.Push(msg)
	return id
}

// Send enqueues a message, registers a correlation slot, and blocks until
// the worker resolves it or timeout elapses. On timeout the slot is
// removed and a synthesized timeout response is returned; a late
// resolution then falls back to the response queue.
func (e *Engine) Send(name string, params api.Params, sync bool, timeout time.Duration) api.Message {
	id := e.nextID.Add(1)
	msg := api.NewMessage(id, name, params)
	msg.Sync = sync
	msg.NeedsReply = true
	if timeout > 0 {
		msg.TimeoutMs = uint32(timeout / time.Millisecond)
	}

	ch := make(chan api.Message, 1)
	e.waitersMu.Lock()
	e.waiters[id] = ch
	e.waitersMu.Unlock()

	e.queue.Push(msg)

	if timeout <= 0 {
		return <-ch
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		return resp
	case <-timer.C:
		e.waitersMu.Lock()
		_, present := e.waiters[id]
		if present {
			delete(e.waiters, id)
		}
		e.waitersMu.Unlock()
		if !present {
			// The worker claimed the slot just as the timer fired; the
			// response is already buffered in the channel.
			return <-ch
		}
		return api.NewTimeoutResponse(id)
	}
}

// SendJSON submits a raw wire-format request. Malformed input is logged
// and dropped; the returned id is 0 in that case.
func (e *Engine) SendJSON(data []byte) uint64 {
	msg, err := api.ParseRequest(data)
	if err != nil {
		e.log.Warn("malformed message dropped", slog.Any("error", err))
		e.obs.OnMessageDropped(&api.Message{}, "malformed wire input")
		return 0
	}
	if msg.ID == 0 {
		msg.ID = e.nextID.Add(1)
	}
	e.queue.Push(msg)
	return msg.ID
}

// TryResponse pops the next response from the response queue, if any.
func (e *Engine) TryResponse() (api.Message, bool) {
	return e.responses.TryPop()
}

// WaitResponse waits up to timeout for the response matching id. A popped
// response with a different id is put back at the front of the queue.
func (e *Engine) WaitResponse(id uint64, timeout time.Duration) (api.Message, bool) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return api.Message{}, false
		}
		resp, ok := e.responses.WaitPopFor(remaining)
		if !ok {
			continue
		}
		if resp.ID == id {
			return resp, true
		}
		e.responses.PushFront(resp)
		// Back off so a single mismatched response does not spin hot.
		time.Sleep(time.Millisecond)
	}
}

// run is the worker loop. The bounded pop keeps Stop responsive even with
// no traffic.
func (e *Engine) run() {
	defer e.wg.Done()
	for e.running.Load() {
		msg, ok := e.queue.WaitPopFor(e.pollInterval)
		if !ok {
			continue
		}
		e.process(msg)
	}
}

// process handles one envelope: pre-expiry check, sync buffering, handler
// dispatch, response routing, then the buffered-batch drain.
func (e *Engine) process(msg api.Message) {
	// The queueing delay exceeded the message's budget before processing
	// began: the sender has given up, so no response is produced.
	if msg.NeedsReply && msg.TimedOut() {
		e.log.Warn("message timed out before processing",
			slog.Uint64("id", msg.ID),
			slog.String("name", msg.Name),
			slog.Duration("age", msg.Age()),
		)
		e.obs.OnMessageDropped(&msg, "timed out before processing")
		e.releaseWaiter(msg.ID)
		return
	}

	// Only reachable while draining a buffered batch: the worker
	// processes one queue item fully before popping the next.
	if e.syncInProgress.Load() && msg.Sync {
		e.obs.OnMessageBuffered(&msg)
		e.bufferMu.Lock()
		e.buffer = append(e.buffer, msg)
		e.bufferMu.Unlock()
		return
	}

	if msg.Sync {
		e.syncInProgress.Store(true)
	}

	e.obs.OnMessageStart(&msg)
	start := time.Now()

	resp := e.handle(msg)

	if msg.NeedsReply {
		e.resolve(resp)
		e.obs.OnMessageDone(&msg, &resp, time.Since(start))
	} else {
		e.obs.OnMessageDone(&msg, nil, time.Since(start))
	}

	if msg.Sync {
		e.syncInProgress.Store(false)
		e.drainBuffer()
	}
}

// handle classifies the message and produces its response. Decoding as an
// event is attempted first; otherwise the action registry is consulted.
func (e *Engine) handle(msg api.Message) api.Message {
	if ev, ok := hsm.Decode(msg.Name, msg.Params); ok {
		handled, changed := e.machine.Apply(ev)
		result := api.Params{
			"handled":      handled,
			"state":        e.machine.StateName(),
			"stateChanged": changed,
		}
		if !handled {
			return api.NewResponse(msg.ID, false, result, "Event not handled in current state")
		}
		return api.NewResponse(msg.ID, true, result, "")
	}

	e.actionsMu.RLock()
	action, ok := e.actions[msg.Name]
	e.actionsMu.RUnlock()
	if !ok {
		return api.NewResponse(msg.ID, false, api.Params{}, "Unknown message: "+msg.Name)
	}

	res := action.Execute(e.machine.StateName(), msg.Params)
	return api.NewResponse(msg.ID, res.Success, res.Result, res.Err)
}

// resolve delivers a response to the waiting correlation slot, or to the
// response queue when no caller is waiting (fire-and-forget with reply,
// or a caller that already timed out).
func (e *Engine) resolve(resp api.Message) {
	e.waitersMu.Lock()
	ch, ok := e.waiters[resp.ID]
	if ok {
		ch <- resp // buffered, never blocks
		delete(e.waiters, resp.ID)
	}
	e.waitersMu.Unlock()

	if !ok {
		e.responses.Push(resp)
	}
}

// releaseWaiter resolves a discarded message's correlation slot with a
// timeout response, so a blocked caller cannot hang on a request that
// will never be processed. Nothing reaches the response queue.
func (e *Engine) releaseWaiter(id uint64) {
	e.waitersMu.Lock()
	defer e.waitersMu.Unlock()
	if ch, ok := e.waiters[id]; ok {
		ch <- api.NewTimeoutResponse(id)
		delete(e.waiters, id)
	}
}

// drainBuffer processes the side buffer accumulated while a sync message
// was in flight, skipping entries whose budget expired in the meantime.
func (e *Engine) drainBuffer() {
	e.bufferMu.Lock()
	pending := e.buffer
	e.buffer = nil
	e.bufferMu.Unlock()

	if len(pending) > 0 {
		e.log.Debug("draining buffered messages", slog.Int("count", len(pending)))
	}

	for _, m := range pending {
		if m.NeedsReply && m.TimedOut() {
			e.obs.OnMessageDropped(&m, "timed out while buffered")
			e.releaseWaiter(m.ID)
			continue
		}
		e.process(m)
	}
}
