package hsm

import (
	"sync"

	"github.com/petrijr/hsmq/pkg/api"
)

// Machine is the nested state model. It is created once at engine
// construction, initialized to Off, and mutated exclusively by the
// engine's worker goroutine. State reads are safe from any goroutine.
//
// Entry/exit hooks are reported through the observer: exits deepest
// sub-variant first, then each ancestor; entries each ancestor first,
// then the deepest sub-variant. Hooks are side-effecting only and cannot
// fail.
type Machine struct {
	mu    sync.Mutex
	state topState
	obs   api.Observer
}

// New creates a Machine in the Off state and reports Off's entry hook.
func New(obs api.Observer) *Machine {
	if obs == nil {
		obs = api.NoopObserver{}
	}
	m := &Machine{state: &off{}, obs: obs}
	m.obs.OnStateEnter(StateOff)
	return m
}

// StateName returns the ::-joined path of active variant names,
// e.g. "Operational::Tracking::Locked".
func (m *Machine) StateName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return pathOf(m.state)
}

// Within reports whether the named variant is anywhere on the active
// state path.
func (m *Machine) Within(variant string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range activePath(m.state) {
		if name == variant {
			return true
		}
	}
	return false
}

// MeasurementCount returns the number of points recorded in the current
// measurement session. ok is false unless Measuring is active.
func (m *Machine) MeasurementCount() (count int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	op, isOp := m.state.(*operational)
	if !isOp {
		return 0, false
	}
	tr, isTr := op.sub.(*tracking)
	if !isTr {
		return 0, false
	}
	me, isMe := tr.sub.(*measuring)
	if !isMe {
		return 0, false
	}
	return me.count, true
}

// LastPoint returns the most recently recorded measurement point. ok is
// false unless Measuring is active and at least one point was recorded.
func (m *Machine) LastPoint() (x, y, z float64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if op, isOp := m.state.(*operational); isOp {
		if tr, isTr := op.sub.(*tracking); isTr {
			if me, isMe := tr.sub.(*measuring); isMe && me.count > 0 {
				return me.lastX, me.lastY, me.lastZ, true
			}
		}
	}
	return 0, 0, 0, false
}

// Apply dispatches the event against the current active variant chain.
// At each level, transitions owned by that level are checked before
// recursing into the active sub-variant.
//
// handled is false when no transition matches in the current state; the
// model is then guaranteed unchanged. changed is false for internal
// transitions (Measuring handling MeasurementComplete records the point
// without a state change).
func (m *Machine) Apply(ev Event) (handled, changed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := pathOf(m.state)
	handled, changed = m.dispatch(ev)
	if changed {
		m.obs.OnTransition(from, pathOf(m.state), ev.EventName())
	}
	return handled, changed
}

func (m *Machine) dispatch(ev Event) (bool, bool) {
	switch s := m.state.(type) {
	case *off:
		if _, ok := ev.(PowerOn); ok {
			m.transitionTop(s, &operational{sub: &initializing{}})
			return true, true
		}
		return false, false

	case *operational:
		// PowerOff is owned by the Operational level and wins over any
		// sub-state handler.
		if _, ok := ev.(PowerOff); ok {
			m.transitionTop(s, &off{})
			return true, true
		}
		return m.dispatchOperational(s, ev)
	}
	return false, false
}

func (m *Machine) dispatchOperational(op *operational, ev Event) (bool, bool) {
	switch sub := op.sub.(type) {
	case *initializing:
		switch e := ev.(type) {
		case InitComplete:
			m.transitionOperational(op, &idle{})
			return true, true
		case InitFailed:
			m.transitionOperational(op, &errorState{code: -1, description: e.Reason})
			return true, true
		}

	case *idle:
		switch e := ev.(type) {
		case StartSearch:
			m.transitionOperational(op, &tracking{sub: &searching{}})
			return true, true
		case ErrorOccurred:
			m.transitionOperational(op, &errorState{code: e.Code, description: e.Description})
			return true, true
		}

	case *tracking:
		// Tracking-level handlers are checked before delegating deeper.
		switch e := ev.(type) {
		case ReturnToIdle:
			m.transitionOperational(op, &idle{})
			return true, true
		case ErrorOccurred:
			m.transitionOperational(op, &errorState{code: e.Code, description: e.Description})
			return true, true
		}
		return m.dispatchTracking(sub, ev)

	case *errorState:
		if _, ok := ev.(Reset); ok {
			m.transitionOperational(op, &initializing{})
			return true, true
		}
	}
	return false, false
}

func (m *Machine) dispatchTracking(tr *tracking, ev Event) (bool, bool) {
	switch sub := tr.sub.(type) {
	case *searching:
		if e, ok := ev.(TargetFound); ok {
			m.transitionTracking(tr, &locked{distanceMM: e.DistanceMM})
			return true, true
		}

	case *locked:
		switch ev.(type) {
		case StartMeasure:
			m.transitionTracking(tr, &measuring{})
			return true, true
		case TargetLost:
			m.transitionTracking(tr, &searching{})
			return true, true
		}

	case *measuring:
		switch e := ev.(type) {
		case MeasurementComplete:
			// Internal transition: record the point, no state change and
			// no entry/exit hooks.
			sub.count++
			sub.lastX, sub.lastY, sub.lastZ = e.X, e.Y, e.Z
			return true, false
		case StopMeasure:
			m.transitionTracking(tr, &locked{})
			return true, true
		case TargetLost:
			m.transitionTracking(tr, &searching{})
			return true, true
		}
	}
	return false, false
}

// transitionTop replaces the top-level state, exiting the full old path
// and entering the full new one.
func (m *Machine) transitionTop(old topState, next topState) {
	m.exitTop(old)
	m.state = next
	m.enterTop(next)
}

// transitionOperational replaces the Operational sub-state; the
// Operational ancestor itself stays active.
func (m *Machine) transitionOperational(op *operational, next opState) {
	m.exitOperational(op.sub)
	op.sub = next
	m.enterOperational(next)
}

// transitionTracking replaces the Tracking sub-state; both ancestors stay
// active.
func (m *Machine) transitionTracking(tr *tracking, next trackState) {
	m.obs.OnStateExit(tr.sub.trackName())
	tr.sub = next
	m.obs.OnStateEnter(next.trackName())
}

func (m *Machine) enterTop(s topState) {
	m.obs.OnStateEnter(s.topName())
	if op, ok := s.(*operational); ok {
		m.enterOperational(op.sub)
	}
}

func (m *Machine) exitTop(s topState) {
	if op, ok := s.(*operational); ok {
		m.exitOperational(op.sub)
	}
	m.obs.OnStateExit(s.topName())
}

func (m *Machine) enterOperational(s opState) {
	m.obs.OnStateEnter(s.opName())
	if tr, ok := s.(*tracking); ok {
		m.obs.OnStateEnter(tr.sub.trackName())
	}
}

func (m *Machine) exitOperational(s opState) {
	if tr, ok := s.(*tracking); ok {
		m.obs.OnStateExit(tr.sub.trackName())
	}
	m.obs.OnStateExit(s.opName())
}
