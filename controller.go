package hsmq

import (
	"time"

	"github.com/petrijr/hsmq/tracker"
)

// Default wait budgets for the typed convenience calls. Events resolve
// quickly; commands may occupy the worker with simulated device work.
const (
	DefaultEventTimeout   = 5 * time.Second
	DefaultCommandTimeout = 30 * time.Second
)

// Controller bundles an Engine with the simulated laser-tracker action
// set registered, plus typed convenience calls for the common events and
// commands.
//
// Typical usage:
//
//	ctrl := hsmq.NewController()
//	ctrl.Start()
//	defer ctrl.Stop()
//
//	ctrl.PowerOn()
//	ctrl.SendEvent("InitComplete", nil)
//	resp := ctrl.Home(100)
type Controller struct {
	// Engine is the underlying message engine. Raw messages and custom
	// actions go through it directly.
	Engine Engine
}

// NewController constructs a Controller with a default Engine and the
// full tracker action set.
func NewController() *Controller {
	return NewControllerWithConfig(Config{})
}

// NewControllerWithConfig constructs a Controller with the given engine
// configuration.
func NewControllerWithConfig(cfg Config) *Controller {
	eng := NewEngineWithConfig(cfg)
	// A fresh engine cannot hold duplicate registrations.
	if err := tracker.RegisterAll(eng); err != nil {
		panic("hsmq: registering tracker actions: " + err.Error())
	}
	return &Controller{Engine: eng}
}

// Start launches the engine's worker goroutine.
func (c *Controller) Start() { c.Engine.Start() }

// Stop stops the engine's worker goroutine.
func (c *Controller) Stop() { c.Engine.Stop() }

// StateName returns the current ::-joined state path.
func (c *Controller) StateName() string { return c.Engine.StateName() }

// SendEvent sends a state-changing event and waits for its response.
func (c *Controller) SendEvent(name string, params Params) Message {
	return c.Engine.Send(name, params, false, DefaultEventTimeout)
}

// SendEventAsync sends a state-changing event fire-and-forget.
func (c *Controller) SendEventAsync(name string, params Params) uint64 {
	return c.Engine.SendAsync(name, params, false)
}

// PowerOn powers the tracker on.
func (c *Controller) PowerOn() Message {
	return c.SendEvent("PowerOn", nil)
}

// PowerOff powers the tracker off from any operational state.
func (c *Controller) PowerOff() Message {
	return c.SendEvent("PowerOff", nil)
}

// Home moves the tracker to its home position at the given speed
// percentage. Valid only in Idle.
func (c *Controller) Home(speed float64) Message {
	return c.Engine.Send("Home", Params{"speed": speed}, true, DefaultCommandTimeout)
}

// Position reads the current position.
func (c *Controller) Position() Message {
	return c.Engine.Send("GetPosition", nil, false, DefaultCommandTimeout)
}

// SetLaserPower adjusts the laser power level (0.0 to 1.0).
func (c *Controller) SetLaserPower(level float64) Message {
	return c.Engine.Send("SetLaserPower", Params{"powerLevel": level}, false, DefaultCommandTimeout)
}

// Compensate applies environmental compensation.
func (c *Controller) Compensate(temperature, pressure, humidity float64) Message {
	return c.Engine.Send("Compensate", Params{
		"temperature": temperature,
		"pressure":    pressure,
		"humidity":    humidity,
	}, true, DefaultCommandTimeout)
}

// Status reports the system status; valid in any state.
func (c *Controller) Status() Message {
	return c.Engine.Send("GetStatus", nil, false, DefaultCommandTimeout)
}

// MoveRelative moves the tracker head by the given relative angles.
func (c *Controller) MoveRelative(azimuth, elevation float64) Message {
	return c.Engine.Send("MoveRelative", Params{
		"azimuth":   azimuth,
		"elevation": elevation,
	}, true, DefaultCommandTimeout)
}
