package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/hsmq/pkg/api"
)

// Shrunken delays keep the simulated device work out of the test runtime.
const testDelay = time.Millisecond

func TestHome(t *testing.T) {
	h := Home{BaseDelay: testDelay}

	res := h.Execute("Operational::Idle", api.Params{"speed": 100.0})
	require.True(t, res.Success)
	pos, ok := res.Result["position"].(api.Params)
	require.True(t, ok)
	require.Equal(t, 0.0, pos.Float("azimuth", -1))
	require.Equal(t, 0.0, pos.Float("elevation", -1))
	require.Equal(t, "Operational::Idle", res.Result.String("state", ""))

	// Defaults to full speed when unspecified.
	res = h.Execute("Operational::Idle", api.Params{})
	require.True(t, res.Success)
}

func TestHome_RejectedOutsideIdle(t *testing.T) {
	h := Home{BaseDelay: testDelay}

	for _, state := range []string{
		"Off",
		"Operational::Initializing",
		"Operational::Tracking::Searching",
		"Operational::Tracking::Locked",
		"Operational::Error",
	} {
		res := h.Execute(state, api.Params{"speed": 50.0})
		require.False(t, res.Success, "Home must be rejected in %s", state)
		require.Contains(t, res.Err, "only valid in Idle")
		require.Contains(t, res.Err, state, "error names the offending state")
	}
}

func TestHome_SpeedValidation(t *testing.T) {
	h := Home{BaseDelay: testDelay}

	for _, speed := range []float64{0, -5, 100.1, 1000} {
		res := h.Execute("Operational::Idle", api.Params{"speed": speed})
		require.False(t, res.Success, "speed %v", speed)
		require.Equal(t, "Speed must be between 0 and 100", res.Err)
	}
}

func TestGetPosition(t *testing.T) {
	a := GetPosition{}

	for _, state := range []string{
		"Operational::Idle",
		"Operational::Tracking::Searching",
		"Operational::Tracking::Locked",
		"Operational::Tracking::Measuring",
	} {
		res := a.Execute(state, nil)
		require.True(t, res.Success, state)
		pos := res.Result["position"].(api.Params)
		require.Equal(t, 1234.567, pos.Float("x", 0))
		require.Equal(t, 2345.678, pos.Float("y", 0))
		require.Equal(t, 345.789, pos.Float("z", 0))
	}

	for _, state := range []string{"Off", "Operational::Initializing", "Operational::Error"} {
		res := a.Execute(state, nil)
		require.False(t, res.Success, state)
		require.Contains(t, res.Err, "not available in")
	}
}

func TestSetLaserPower(t *testing.T) {
	a := SetLaserPower{}

	res := a.Execute("Operational::Idle", api.Params{"powerLevel": 0.8})
	require.True(t, res.Success)
	require.Equal(t, 0.8, res.Result.Float("powerLevel", 0))

	res = a.Execute("Off", api.Params{"powerLevel": 0.8})
	require.False(t, res.Success)

	for _, level := range []float64{-0.1, 1.1, 5} {
		res = a.Execute("Operational::Idle", api.Params{"powerLevel": level})
		require.False(t, res.Success, "level %v", level)
		require.Equal(t, "Power level must be between 0.0 and 1.0", res.Err)
	}
}

func TestCompensate(t *testing.T) {
	a := Compensate{Delay: testDelay}

	res := a.Execute("Operational::Idle", api.Params{
		"temperature": 25.0,
		"pressure":    1020.0,
		"humidity":    55.0,
	})
	require.True(t, res.Success)
	require.True(t, res.Result.Bool("applied", false))
	want := 1.0 + 5.0*0.000001 + 6.75*0.0000001
	require.InDelta(t, want, res.Result.Float("compensationFactor", 0), 1e-12)

	// Reference conditions yield the identity factor.
	res = a.Execute("Operational::Tracking::Locked", api.Params{})
	require.True(t, res.Success)
	require.Equal(t, 1.0, res.Result.Float("compensationFactor", 0))

	for _, state := range []string{"Off", "Operational::Tracking::Searching", "Operational::Error"} {
		res = a.Execute(state, nil)
		require.False(t, res.Success, state)
	}
}

func TestGetStatus(t *testing.T) {
	a := GetStatus{}

	res := a.Execute("Off", nil)
	require.True(t, res.Success)
	require.Equal(t, "Off", res.Result.String("state", ""))
	require.True(t, res.Result.Bool("healthy", false))
	require.False(t, res.Result.Bool("powered", true))

	res = a.Execute("Operational::Error", nil)
	require.True(t, res.Success)
	require.False(t, res.Result.Bool("healthy", true))
	require.True(t, res.Result.Bool("powered", false))

	res = a.Execute("Operational::Tracking::Locked", nil)
	require.True(t, res.Success)
	require.True(t, res.Result.Bool("healthy", false))
	require.True(t, res.Result.Bool("powered", false))
}

func TestMoveRelative(t *testing.T) {
	a := MoveRelative{UnitDelay: testDelay}

	res := a.Execute("Operational::Idle", api.Params{"azimuth": 3.0, "elevation": 4.0})
	require.True(t, res.Success)
	require.Equal(t, 3.0, res.Result.Float("movedAz", 0))
	require.Equal(t, 4.0, res.Result.Float("movedEl", 0))
	require.Equal(t, 5.0, res.Result.Float("moveTimeMs", 0), "3-4-5 triangle at 1ms per degree")

	res = a.Execute("Operational::Tracking::Locked", api.Params{})
	require.True(t, res.Success)
	require.Equal(t, 0.0, res.Result.Float("moveTimeMs", -1))

	res = a.Execute("Off", api.Params{"azimuth": 1.0})
	require.False(t, res.Success)
}

func TestRegisterAll(t *testing.T) {
	names := make(map[string]bool)
	for _, a := range All() {
		require.NotEmpty(t, a.Name())
		require.False(t, names[a.Name()], "duplicate action %s", a.Name())
		names[a.Name()] = true
	}
	require.Len(t, names, 6)

	// Homing and moves occupy the worker; reads do not.
	require.True(t, Home{}.Sync())
	require.True(t, Compensate{}.Sync())
	require.True(t, MoveRelative{}.Sync())
	require.False(t, GetPosition{}.Sync())
	require.False(t, GetStatus{}.Sync())
	require.False(t, SetLaserPower{}.Sync())
}
