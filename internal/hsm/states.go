package hsm

// State hierarchy:
//
//	Off
//	Operational
//	├── Initializing
//	├── Idle
//	├── Tracking
//	│   ├── Searching
//	│   ├── Locked
//	│   └── Measuring
//	└── Error
//
// Each level is a sealed interface; exactly one variant is active per
// level at any time. A composite's sub-variant is meaningful only while
// the composite itself is active.

const (
	StateOff          = "Off"
	StateOperational  = "Operational"
	StateInitializing = "Initializing"
	StateIdle         = "Idle"
	StateTracking     = "Tracking"
	StateError        = "Error"
	StateSearching    = "Searching"
	StateLocked       = "Locked"
	StateMeasuring    = "Measuring"
)

type topState interface {
	topName() string
}

type opState interface {
	opName() string
}

type trackState interface {
	trackName() string
}

type off struct{}

func (off) topName() string { return StateOff }

type operational struct {
	sub opState
}

func (operational) topName() string { return StateOperational }

type initializing struct {
	progress int
}

func (initializing) opName() string { return StateInitializing }

type idle struct{}

func (idle) opName() string { return StateIdle }

type tracking struct {
	sub trackState
}

func (tracking) opName() string { return StateTracking }

type errorState struct {
	code        int
	description string
}

func (errorState) opName() string { return StateError }

type searching struct {
	angle float64
}

func (searching) trackName() string { return StateSearching }

type locked struct {
	distanceMM float64
}

func (locked) trackName() string { return StateLocked }

type measuring struct {
	count               int
	lastX, lastY, lastZ float64
}

func (measuring) trackName() string { return StateMeasuring }

// pathOf builds the ::-joined path of active variant names.
func pathOf(s topState) string {
	op, ok := s.(*operational)
	if !ok {
		return s.topName()
	}
	path := op.topName() + "::" + op.sub.opName()
	if tr, ok := op.sub.(*tracking); ok {
		path += "::" + tr.sub.trackName()
	}
	return path
}

// activePath lists the active variant names from top to deepest.
func activePath(s topState) []string {
	op, ok := s.(*operational)
	if !ok {
		return []string{s.topName()}
	}
	path := []string{op.topName(), op.sub.opName()}
	if tr, ok := op.sub.(*tracking); ok {
		path = append(path, tr.sub.trackName())
	}
	return path
}
