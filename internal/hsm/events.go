package hsm

import (
	"github.com/petrijr/hsmq/pkg/api"
)

// Event is a state-changing message decoded from (name, params).
// The set of events is closed; Decode is the only constructor used by the
// dispatcher.
type Event interface {
	EventName() string
}

type PowerOn struct{}
type PowerOff struct{}
type InitComplete struct{}

type InitFailed struct {
	Reason string
}

type StartSearch struct{}

type TargetFound struct {
	DistanceMM float64
}

type TargetLost struct{}
type StartMeasure struct{}
type StopMeasure struct{}

type MeasurementComplete struct {
	X, Y, Z float64
}

type ErrorOccurred struct {
	Code        int
	Description string
}

type Reset struct{}
type ReturnToIdle struct{}

func (PowerOn) EventName() string             { return "PowerOn" }
func (PowerOff) EventName() string            { return "PowerOff" }
func (InitComplete) EventName() string        { return "InitComplete" }
func (InitFailed) EventName() string          { return "InitFailed" }
func (StartSearch) EventName() string         { return "StartSearch" }
func (TargetFound) EventName() string         { return "TargetFound" }
func (TargetLost) EventName() string          { return "TargetLost" }
func (StartMeasure) EventName() string        { return "StartMeasure" }
func (StopMeasure) EventName() string         { return "StopMeasure" }
func (MeasurementComplete) EventName() string { return "MeasurementComplete" }
func (ErrorOccurred) EventName() string       { return "ErrorOccurred" }
func (Reset) EventName() string               { return "Reset" }
func (ReturnToIdle) EventName() string        { return "ReturnToIdle" }

// decoders maps event names to decode functions. Populated once at
// package init; names that are not in this table are not events and fall
// through to the action registry.
var decoders = map[string]func(api.Params) Event{
	"PowerOn":      func(api.Params) Event { return PowerOn{} },
	"PowerOff":     func(api.Params) Event { return PowerOff{} },
	"InitComplete": func(api.Params) Event { return InitComplete{} },
	"InitFailed": func(p api.Params) Event {
		return InitFailed{Reason: p.String("errorReason", "")}
	},
	"StartSearch": func(api.Params) Event { return StartSearch{} },
	"TargetFound": func(p api.Params) Event {
		return TargetFound{DistanceMM: p.Float("distance_mm", 0)}
	},
	"TargetLost":   func(api.Params) Event { return TargetLost{} },
	"StartMeasure": func(api.Params) Event { return StartMeasure{} },
	"StopMeasure":  func(api.Params) Event { return StopMeasure{} },
	"MeasurementComplete": func(p api.Params) Event {
		return MeasurementComplete{
			X: p.Float("x", 0),
			Y: p.Float("y", 0),
			Z: p.Float("z", 0),
		}
	},
	"ErrorOccurred": func(p api.Params) Event {
		return ErrorOccurred{
			Code:        p.Int("errorCode", 0),
			Description: p.String("description", ""),
		}
	},
	"Reset":        func(api.Params) Event { return Reset{} },
	"ReturnToIdle": func(api.Params) Event { return ReturnToIdle{} },
}

// Decode interprets (name, params) as a state-changing event. Returns
// false when the name is not an event name.
func Decode(name string, params api.Params) (Event, bool) {
	dec, ok := decoders[name]
	if !ok {
		return nil, false
	}
	return dec(params), true
}

// IsEventName reports whether name is a state-changing event name.
func IsEventName(name string) bool {
	_, ok := decoders[name]
	return ok
}
