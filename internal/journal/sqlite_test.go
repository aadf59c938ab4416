package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/petrijr/hsmq/pkg/api"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteJournal_Transitions(t *testing.T) {
	db := openTestDB(t)
	j, err := NewSQLiteJournal(db)
	require.NoError(t, err)
	require.NotEmpty(t, j.SessionID())

	j.OnTransition("Off", "Operational::Initializing", "PowerOn")
	j.OnTransition("Operational::Initializing", "Operational::Idle", "InitComplete")

	recs, err := j.ListTransitions()
	require.NoError(t, err)
	require.Len(t, recs, 2)

	require.Equal(t, "Off", recs[0].From)
	require.Equal(t, "Operational::Initializing", recs[0].To)
	require.Equal(t, "PowerOn", recs[0].Event)
	require.Equal(t, "InitComplete", recs[1].Event)
	require.False(t, recs[0].At.IsZero())
	require.False(t, recs[1].At.Before(recs[0].At))
}

func TestSQLiteJournal_Messages(t *testing.T) {
	db := openTestDB(t)
	j, err := NewSQLiteJournal(db)
	require.NoError(t, err)

	msg := api.NewMessage(7, "Home", api.Params{"speed": 50.0})
	ok := api.NewResponse(7, true, api.Params{}, "")
	j.OnMessageDone(&msg, &ok, 12*time.Millisecond)

	msg2 := api.NewMessage(8, "StartSearch", nil)
	fail := api.NewResponse(8, false, api.Params{}, "Event not handled in current state")
	j.OnMessageDone(&msg2, &fail, time.Millisecond)

	// Fire-and-forget: no response, recorded as successful.
	msg3 := api.NewMessage(9, "PowerOff", nil)
	j.OnMessageDone(&msg3, nil, time.Microsecond)

	recs, err := j.ListMessages()
	require.NoError(t, err)
	require.Len(t, recs, 3)

	require.Equal(t, uint64(7), recs[0].MessageID)
	require.Equal(t, "Home", recs[0].Name)
	require.True(t, recs[0].Success)
	require.Equal(t, 12*time.Millisecond, recs[0].Duration)

	require.False(t, recs[1].Success)
	require.Equal(t, "Event not handled in current state", recs[1].Error)

	require.True(t, recs[2].Success)
	require.Empty(t, recs[2].Error)
}

func TestSQLiteJournal_SessionIsolation(t *testing.T) {
	db := openTestDB(t)

	j1, err := NewSQLiteJournal(db)
	require.NoError(t, err)
	j2, err := NewSQLiteJournal(db)
	require.NoError(t, err)
	require.NotEqual(t, j1.SessionID(), j2.SessionID())

	j1.OnTransition("Off", "Operational::Initializing", "PowerOn")
	j2.OnTransition("Operational::Idle", "Off", "PowerOff")

	recs1, err := j1.ListTransitions()
	require.NoError(t, err)
	require.Len(t, recs1, 1)
	require.Equal(t, "PowerOn", recs1[0].Event)

	recs2, err := j2.ListTransitions()
	require.NoError(t, err)
	require.Len(t, recs2, 1)
	require.Equal(t, "PowerOff", recs2[0].Event)
}

func TestSQLiteJournal_EmptySession(t *testing.T) {
	db := openTestDB(t)
	j, err := NewSQLiteJournal(db)
	require.NoError(t, err)

	recs, err := j.ListTransitions()
	require.NoError(t, err)
	require.Empty(t, recs)

	msgs, err := j.ListMessages()
	require.NoError(t, err)
	require.Empty(t, msgs)
}
