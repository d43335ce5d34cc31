package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.MigrateUp("migrations"); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	return db
}

func TestMigrateUpIdempotent(t *testing.T) {
	db := openTestDB(t)

	// Migrating an up-to-date database is a no-op, not an error.
	if err := db.MigrateUp("migrations"); err != nil {
		t.Fatalf("second MigrateUp: %v", err)
	}

	version, dirty, err := db.MigrateVersion("migrations")
	if err != nil {
		t.Fatalf("MigrateVersion: %v", err)
	}
	if dirty {
		t.Error("migration state dirty after clean MigrateUp")
	}
	if version == 0 {
		t.Error("version = 0 after MigrateUp, want applied version")
	}
}

func TestRecordAndQueryEvents(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2025, 8, 10, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := db.RecordHazardEvent(HazardEvent{
			SessionID:    "session-1",
			Zone:         "center",
			Status:       "warn",
			MinDistanceM: 1.2 - float64(i)*0.1,
			TTCSeconds:   sql.NullFloat64{Float64: 3.0, Valid: true},
			Dispatched:   i == 2,
			Timestamp:    base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("RecordHazardEvent %d: %v", i, err)
		}
	}

	count, err := db.CountEvents()
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if count != 3 {
		t.Errorf("CountEvents = %d, want 3", count)
	}

	events, err := db.EventsSince(base.Add(time.Second), 0)
	if err != nil {
		t.Fatalf("EventsSince: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("EventsSince returned %d events, want 2", len(events))
	}
	if events[0].Timestamp.After(events[1].Timestamp) {
		t.Error("events not ordered oldest first")
	}
	if events[0].Zone != "center" || events[0].Status != "warn" {
		t.Errorf("event = %+v, want center/warn", events[0])
	}
	if !events[1].Dispatched {
		t.Error("dispatched flag lost in round trip")
	}
	if !events[0].TTCSeconds.Valid || events[0].TTCSeconds.Float64 != 3.0 {
		t.Errorf("ttc = %+v, want valid 3.0", events[0].TTCSeconds)
	}
}

func TestRecordGeneratesEventID(t *testing.T) {
	db := openTestDB(t)

	id, err := db.RecordHazardEvent(HazardEvent{
		SessionID: "s", Zone: "left", Status: "warn", MinDistanceM: 0.8,
	})
	if err != nil {
		t.Fatalf("RecordHazardEvent: %v", err)
	}
	if id == "" {
		t.Error("empty event ID generated")
	}
}

func TestEventsSinceLimit(t *testing.T) {
	db := openTestDB(t)
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if _, err := db.RecordHazardEvent(HazardEvent{
			SessionID: "s", Zone: "right", Status: "warn", MinDistanceM: 0.5,
			Timestamp: base.Add(time.Duration(i) * time.Millisecond),
		}); err != nil {
			t.Fatalf("RecordHazardEvent: %v", err)
		}
	}

	events, err := db.EventsSince(base, 2)
	if err != nil {
		t.Fatalf("EventsSince: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("limit ignored: got %d events, want 2", len(events))
	}
}

func TestEventsSinceEmpty(t *testing.T) {
	db := openTestDB(t)
	events, err := db.EventsSince(time.Now().Add(time.Hour), 0)
	if err != nil {
		t.Fatalf("EventsSince: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events from the future, want 0", len(events))
	}
}
