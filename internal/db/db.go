// Package db is the event store for hazard warnings. Each analysis pass
// that produces a warn status or a TTC-qualified alert can be recorded
// here for offline reporting.
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps the sqlite connection used by the hazard event store.
type DB struct {
	*sql.DB
}

// HazardEvent is one recorded warning observation.
type HazardEvent struct {
	EventID      string
	SessionID    string
	Zone         string
	Status       string
	MinDistanceM float64
	TTCSeconds   sql.NullFloat64
	Dispatched   bool
	Timestamp    time.Time
}

// NewDB opens (creating if necessary) the sqlite database at path.
// Schema setup is the migration layer's job; see MigrateUp.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}

	// sqlite allows one writer; the consumer loop is the only writer here
	// but report tools may read concurrently.
	if _, err := conn.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying sqlite pragmas: %w", err)
	}

	return &DB{conn}, nil
}

// RecordHazardEvent inserts one warning observation and returns its ID.
func (db *DB) RecordHazardEvent(e HazardEvent) (string, error) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	_, err := db.Exec(`
		INSERT INTO hazard_events
			(event_id, session_id, zone, status, min_distance_m, ttc_seconds, dispatched, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EventID, e.SessionID, e.Zone, e.Status, e.MinDistanceM, e.TTCSeconds, e.Dispatched, e.Timestamp.UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("recording hazard event: %w", err)
	}
	return e.EventID, nil
}

// EventsSince returns events recorded at or after the given time, oldest
// first, limited to limit rows (0 means no limit).
func (db *DB) EventsSince(since time.Time, limit int) ([]HazardEvent, error) {
	query := `
		SELECT event_id, session_id, zone, status, min_distance_m, ttc_seconds, dispatched, timestamp
		FROM hazard_events
		WHERE timestamp >= ?
		ORDER BY timestamp ASC`
	args := []interface{}{since.UnixNano()}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying hazard events: %w", err)
	}
	defer rows.Close()

	var events []HazardEvent
	for rows.Next() {
		var e HazardEvent
		var ts int64
		if err := rows.Scan(&e.EventID, &e.SessionID, &e.Zone, &e.Status, &e.MinDistanceM, &e.TTCSeconds, &e.Dispatched, &ts); err != nil {
			return nil, fmt.Errorf("scanning hazard event: %w", err)
		}
		e.Timestamp = time.Unix(0, ts).UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents returns the number of recorded events for rate checks.
func (db *DB) CountEvents() (int64, error) {
	var n int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM hazard_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting hazard events: %w", err)
	}
	return n, nil
}
