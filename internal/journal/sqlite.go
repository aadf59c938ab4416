// Package journal persists engine telemetry to SQLite: state transitions
// and processed messages, append-only. Nothing is read back at startup;
// the engine itself stays purely in-memory.
package journal

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/petrijr/hsmq/pkg/api"
)

// SQLiteJournal is an api.Observer backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing the
// driver, e.g.:
//
//	import _ "modernc.org/sqlite"
//
// Each journal instance gets a fresh session id, so rows written by
// successive runs against the same database file stay distinguishable.
type SQLiteJournal struct {
	api.NoopObserver

	db        *sql.DB
	sessionID string
	log       *slog.Logger
}

// Ensure SQLiteJournal implements Observer.
var _ api.Observer = (*SQLiteJournal)(nil)

// TransitionRecord is one journaled state transition.
type TransitionRecord struct {
	At    time.Time
	From  string
	To    string
	Event string
}

// MessageRecord is one journaled processed message.
type MessageRecord struct {
	At        time.Time
	MessageID uint64
	Name      string
	Success   bool
	Error     string
	Duration  time.Duration
}

// NewSQLiteJournal initializes the required schema in the given database
// and returns a journal with a fresh session id.
func NewSQLiteJournal(db *sql.DB) (*SQLiteJournal, error) {
	j := &SQLiteJournal{
		db:        db,
		sessionID: uuid.NewString(),
		log:       slog.Default(),
	}
	if err := j.initSchema(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *SQLiteJournal) initSchema() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS hsm_transitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			at INTEGER NOT NULL,
			from_state TEXT NOT NULL,
			to_state TEXT NOT NULL,
			event TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_hsm_transitions_session ON hsm_transitions(session_id, id);
		CREATE TABLE IF NOT EXISTS hsm_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			at INTEGER NOT NULL,
			message_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			success INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			duration_ns INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_hsm_messages_session ON hsm_messages(session_id, id);
	`)
	return err
}

// SessionID returns this journal's session identifier.
func (j *SQLiteJournal) SessionID() string {
	return j.sessionID
}

// OnTransition appends a transition row. Write failures are logged, not
// propagated; observer callbacks cannot fail.
func (j *SQLiteJournal) OnTransition(from, to, event string) {
	_, err := j.db.Exec(`
		INSERT INTO hsm_transitions (session_id, at, from_state, to_state, event)
		VALUES (?, ?, ?, ?, ?)`,
		j.sessionID,
		time.Now().UnixNano(),
		from,
		to,
		event,
	)
	if err != nil {
		j.log.Warn("journal transition write failed", slog.Any("error", err))
	}
}

// OnMessageDone appends a message row. resp is nil for fire-and-forget
// messages; those are recorded as successful with no error text.
func (j *SQLiteJournal) OnMessageDone(msg *api.Message, resp *api.Message, d time.Duration) {
	success := true
	errText := ""
	if resp != nil {
		success = resp.Success
		errText = resp.Error
	}
	_, err := j.db.Exec(`
		INSERT INTO hsm_messages (session_id, at, message_id, name, success, error, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.sessionID,
		time.Now().UnixNano(),
		msg.ID,
		msg.Name,
		success,
		errText,
		d.Nanoseconds(),
	)
	if err != nil {
		j.log.Warn("journal message write failed", slog.Any("error", err))
	}
}

// ListTransitions returns this session's transitions in append order.
func (j *SQLiteJournal) ListTransitions() ([]TransitionRecord, error) {
	rows, err := j.db.Query(`
		SELECT at, from_state, to_state, event
		FROM hsm_transitions
		WHERE session_id = ?
		ORDER BY id ASC`, j.sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransitionRecord
	for rows.Next() {
		var (
			atN  int64
			from string
			to   string
			ev   string
		)
		if err := rows.Scan(&atN, &from, &to, &ev); err != nil {
			return nil, err
		}
		out = append(out, TransitionRecord{
			At:    time.Unix(0, atN),
			From:  from,
			To:    to,
			Event: ev,
		})
	}
	return out, rows.Err()
}

// ListMessages returns this session's processed messages in append order.
func (j *SQLiteJournal) ListMessages() ([]MessageRecord, error) {
	rows, err := j.db.Query(`
		SELECT at, message_id, name, success, error, duration_ns
		FROM hsm_messages
		WHERE session_id = ?
		ORDER BY id ASC`, j.sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MessageRecord
	for rows.Next() {
		var (
			atN     int64
			msgID   int64
			name    string
			success bool
			errText string
			durNs   int64
		)
		if err := rows.Scan(&atN, &msgID, &name, &success, &errText, &durNs); err != nil {
			return nil, err
		}
		out = append(out, MessageRecord{
			At:        time.Unix(0, atN),
			MessageID: uint64(msgID),
			Name:      name,
			Success:   success,
			Error:     errText,
			Duration:  time.Duration(durNs),
		})
	}
	return out, rows.Err()
}
