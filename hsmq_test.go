package hsmq_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/petrijr/hsmq"
	"github.com/petrijr/hsmq/tracker"
)

func TestEngine_FullDeviceCycle(t *testing.T) {
	metrics := &hsmq.BasicMetrics{}
	e := hsmq.NewEngineWithObserver(metrics)
	require.NoError(t, tracker.RegisterAll(e))
	e.Start()
	defer e.Stop()

	steps := []struct {
		event  string
		params hsmq.Params
		want   string
	}{
		{"PowerOn", nil, "Operational::Initializing"},
		{"InitComplete", nil, "Operational::Idle"},
		{"StartSearch", nil, "Operational::Tracking::Searching"},
		{"TargetFound", hsmq.Params{"distance_mm": 5000.0}, "Operational::Tracking::Locked"},
		{"StartMeasure", nil, "Operational::Tracking::Measuring"},
		{"StopMeasure", nil, "Operational::Tracking::Locked"},
		{"ReturnToIdle", nil, "Operational::Idle"},
		{"PowerOff", nil, "Off"},
	}

	for _, s := range steps {
		resp := e.Send(s.event, s.params, false, time.Second)
		require.True(t, resp.Success, s.event)
		require.Equal(t, s.want, resp.Params.String("state", ""))
		require.Equal(t, s.want, e.StateName())
	}

	snap := metrics.Snapshot()
	require.Equal(t, int64(8), snap.Transitions)
	require.Equal(t, int64(8), snap.MessagesProcessed)
	require.Zero(t, snap.MessagesFailed)
}

func TestEngine_CommandRejectedInWrongState(t *testing.T) {
	e := hsmq.NewEngine()
	require.NoError(t, tracker.RegisterAll(e))
	e.Start()
	defer e.Stop()

	// Home is a state-restricted command: in Off it must fail cleanly
	// without touching the state model.
	resp := e.Send("Home", hsmq.Params{"speed": 50.0}, true, time.Second)
	require.False(t, resp.Success)
	require.Contains(t, resp.Error, "only valid in Idle")
	require.Contains(t, resp.Error, "Off")
	require.Equal(t, "Off", e.StateName())
}

func TestEngine_WithinFromOutside(t *testing.T) {
	e := hsmq.NewEngine()
	e.Start()
	defer e.Stop()

	e.Send("PowerOn", nil, false, time.Second)
	e.Send("InitComplete", nil, false, time.Second)
	e.Send("StartSearch", nil, false, time.Second)

	require.True(t, e.Within(hsmq.StateOperational))
	require.True(t, e.Within(hsmq.StateTracking))
	require.True(t, e.Within(hsmq.StateSearching))
	require.False(t, e.Within(hsmq.StateOff))
	require.False(t, e.Within(hsmq.StateLocked))
}

func TestEngine_JSONRoundTrip(t *testing.T) {
	e := hsmq.NewEngine()
	e.Start()
	defer e.Stop()

	id := e.SendJSON([]byte(`{"id": 1, "name": "PowerOn", "needsReply": true}`))
	require.Equal(t, uint64(1), id)

	resp, ok := e.WaitResponse(id, time.Second)
	require.True(t, ok)
	require.True(t, resp.Success)
	require.Equal(t, "Operational::Initializing", resp.Params.String("state", ""))
}

func TestEngine_SQLiteJournalIntegration(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "hsmq.db"))
	require.NoError(t, err)
	defer db.Close()

	j, err := hsmq.NewSQLiteJournal(db)
	require.NoError(t, err)

	metrics := &hsmq.BasicMetrics{}
	e := hsmq.NewEngineWithObserver(hsmq.NewCompositeObserver(j, metrics))
	e.Start()
	defer e.Stop()

	e.Send("PowerOn", nil, false, time.Second)
	e.Send("InitComplete", nil, false, time.Second)
	e.Send("StartSearch", nil, false, time.Second) // handled
	e.Send("StartMeasure", nil, false, time.Second) // not handled in Searching

	transitions, err := j.ListTransitions()
	require.NoError(t, err)
	require.Len(t, transitions, 3)
	require.Equal(t, "PowerOn", transitions[0].Event)
	require.Equal(t, "Off", transitions[0].From)
	require.Equal(t, "Operational::Tracking::Searching", transitions[2].To)

	messages, err := j.ListMessages()
	require.NoError(t, err)
	require.Len(t, messages, 4)
	require.True(t, messages[0].Success)
	require.False(t, messages[3].Success)
	require.Equal(t, "Event not handled in current state", messages[3].Error)

	require.Equal(t, int64(3), metrics.Snapshot().Transitions)
}
