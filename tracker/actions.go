// Package tracker supplies the simulated laser-tracker actions: state-
// restricted operations registered with the engine. The engine itself
// knows nothing about them beyond the Action boundary; all state
// validation lives in the executors.
package tracker

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/petrijr/hsmq/pkg/api"
)

// Home moves the tracker to its home position. Valid only in Idle.
// Synchronous: the worker is occupied for the duration of the move.
type Home struct {
	// BaseDelay is the homing time at 100% speed. Defaults to 1s.
	BaseDelay time.Duration
}

func (Home) Name() string { return "Home" }
func (Home) Sync() bool   { return true }

func (h Home) Execute(currentState string, params api.Params) api.ActionResult {
	if !strings.Contains(currentState, "Idle") {
		return api.Fail(fmt.Sprintf("Home command only valid in Idle state (current: %s)", currentState))
	}

	speed := params.Float("speed", 100.0)
	if speed <= 0 || speed > 100 {
		return api.Fail("Speed must be between 0 and 100")
	}

	base := h.BaseDelay
	if base == 0 {
		base = time.Second
	}
	time.Sleep(time.Duration(float64(base) / (speed / 100.0)))

	return api.Ok(api.Params{
		"position": api.Params{
			"azimuth":   0.0,
			"elevation": 0.0,
		},
		"state": currentState,
	})
}

// GetPosition reads the current position. Valid in Idle and any Tracking
// sub-state; not available in Off, Initializing or Error.
type GetPosition struct{}

func (GetPosition) Name() string { return "GetPosition" }
func (GetPosition) Sync() bool   { return false }

func (GetPosition) Execute(currentState string, params api.Params) api.ActionResult {
	if strings.Contains(currentState, "Off") ||
		strings.Contains(currentState, "Initializing") ||
		strings.Contains(currentState, "Error") {
		return api.Fail("GetPosition not available in " + currentState)
	}

	return api.Ok(api.Params{
		"position": api.Params{
			"x":         1234.567,
			"y":         2345.678,
			"z":         345.789,
			"azimuth":   45.123,
			"elevation": 12.456,
		},
	})
}

// SetLaserPower adjusts the laser power. Valid in any Operational state.
type SetLaserPower struct{}

func (SetLaserPower) Name() string { return "SetLaserPower" }
func (SetLaserPower) Sync() bool   { return false }

func (SetLaserPower) Execute(currentState string, params api.Params) api.ActionResult {
	if strings.Contains(currentState, "Off") {
		return api.Fail("SetLaserPower not available when powered off")
	}

	power := params.Float("powerLevel", 1.0)
	if power < 0.0 || power > 1.0 {
		return api.Fail("Power level must be between 0.0 and 1.0")
	}

	return api.Ok(api.Params{"powerLevel": power})
}

// Compensate applies environmental compensation. Valid in Idle or Locked.
// Synchronous: simulates the compensation calculation.
type Compensate struct {
	// Delay is the simulated calculation time. Defaults to 500ms.
	Delay time.Duration
}

func (Compensate) Name() string { return "Compensate" }
func (Compensate) Sync() bool   { return true }

func (c Compensate) Execute(currentState string, params api.Params) api.ActionResult {
	if !strings.Contains(currentState, "Idle") && !strings.Contains(currentState, "Locked") {
		return api.Fail("Compensate only valid in Idle or Locked state")
	}

	temp := params.Float("temperature", 20.0)
	pressure := params.Float("pressure", 1013.25)

	delay := c.Delay
	if delay == 0 {
		delay = 500 * time.Millisecond
	}
	time.Sleep(delay)

	factor := 1.0 + ((temp - 20.0) * 0.000001) + ((pressure - 1013.25) * 0.0000001)

	return api.Ok(api.Params{
		"compensationFactor": factor,
		"applied":            true,
	})
}

// GetStatus reports system status. Valid in any state.
type GetStatus struct{}

func (GetStatus) Name() string { return "GetStatus" }
func (GetStatus) Sync() bool   { return false }

func (GetStatus) Execute(currentState string, params api.Params) api.ActionResult {
	return api.Ok(api.Params{
		"state":   currentState,
		"healthy": !strings.Contains(currentState, "Error"),
		"powered": !strings.Contains(currentState, "Off"),
	})
}

// MoveRelative moves the tracker head by a relative amount. Valid in Idle
// or Locked. Synchronous: the simulated move time grows with distance.
type MoveRelative struct {
	// UnitDelay is the move time per degree of angular distance.
	// Defaults to 10ms.
	UnitDelay time.Duration
}

func (MoveRelative) Name() string { return "MoveRelative" }
func (MoveRelative) Sync() bool   { return true }

func (m MoveRelative) Execute(currentState string, params api.Params) api.ActionResult {
	if !strings.Contains(currentState, "Idle") && !strings.Contains(currentState, "Locked") {
		return api.Fail("MoveRelative only valid in Idle or Locked state")
	}

	azimuth := params.Float("azimuth", 0.0)
	elevation := params.Float("elevation", 0.0)

	unit := m.UnitDelay
	if unit == 0 {
		unit = 10 * time.Millisecond
	}
	moveTime := time.Duration(math.Sqrt(azimuth*azimuth+elevation*elevation) * float64(unit))
	time.Sleep(moveTime)

	return api.Ok(api.Params{
		"movedAz":    azimuth,
		"movedEl":    elevation,
		"moveTimeMs": float64(moveTime / time.Millisecond),
	})
}

// All returns the full action set with default delays.
func All() []api.Action {
	return []api.Action{
		Home{},
		GetPosition{},
		SetLaserPower{},
		Compensate{},
		GetStatus{},
		MoveRelative{},
	}
}

// RegisterAll registers the full action set with the engine.
func RegisterAll(e api.Engine) error {
	for _, a := range All() {
		if err := e.RegisterAction(a); err != nil {
			return err
		}
	}
	return nil
}
