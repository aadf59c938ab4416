package hsm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/hsmq/pkg/api"
)

func TestDecode_AllEventNames(t *testing.T) {
	names := []string{
		"PowerOn", "PowerOff", "InitComplete", "InitFailed",
		"StartSearch", "TargetFound", "TargetLost",
		"StartMeasure", "StopMeasure", "MeasurementComplete",
		"ErrorOccurred", "Reset", "ReturnToIdle",
	}

	for _, name := range names {
		ev, ok := Decode(name, nil)
		require.True(t, ok, "Decode(%s)", name)
		require.Equal(t, name, ev.EventName())
		require.True(t, IsEventName(name))
	}
}

func TestDecode_Payloads(t *testing.T) {
	ev, ok := Decode("TargetFound", api.Params{"distance_mm": 5000.0})
	require.True(t, ok)
	require.Equal(t, TargetFound{DistanceMM: 5000.0}, ev)

	ev, ok = Decode("InitFailed", api.Params{"errorReason": "Motor calibration failed"})
	require.True(t, ok)
	require.Equal(t, InitFailed{Reason: "Motor calibration failed"}, ev)

	ev, ok = Decode("MeasurementComplete", api.Params{"x": 100.1, "y": 200.2, "z": 50.5})
	require.True(t, ok)
	require.Equal(t, MeasurementComplete{X: 100.1, Y: 200.2, Z: 50.5}, ev)

	// JSON numbers arrive as float64; errorCode still decodes as int.
	ev, ok = Decode("ErrorOccurred", api.Params{"errorCode": 42.0, "description": "Encoder glitch"})
	require.True(t, ok)
	require.Equal(t, ErrorOccurred{Code: 42, Description: "Encoder glitch"}, ev)
}

func TestDecode_MissingPayloadDefaults(t *testing.T) {
	ev, ok := Decode("TargetFound", api.Params{})
	require.True(t, ok)
	require.Equal(t, TargetFound{DistanceMM: 0}, ev)

	ev, ok = Decode("ErrorOccurred", nil)
	require.True(t, ok)
	require.Equal(t, ErrorOccurred{}, ev)
}

func TestDecode_NotAnEvent(t *testing.T) {
	for _, name := range []string{"Home", "GetPosition", "GetStatus", "", "powerOn", "PowerOn "} {
		_, ok := Decode(name, nil)
		require.False(t, ok, "Decode(%q) must not match", name)
		require.False(t, IsEventName(name))
	}
}
