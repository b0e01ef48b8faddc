package journal

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/scribe/internal/engine"
	"github.com/starford/scribe/internal/testutil"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "scribe-journal-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM attempts`).Scan(&count); err != nil {
		t.Fatalf("attempts table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM failures`).Scan(&count); err != nil {
		t.Fatalf("failures table missing: %v", err)
	}
}

func TestRecordAndRecent(t *testing.T) {
	db := testDB(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		e := Entry{Profile: "/p", File: "/p/notes.md", Trigger: "timer", Number: i, Bytes: 10 * i, At: at.Add(time.Duration(i) * time.Second)}
		if i == 3 {
			e.OK = true
		} else {
			e.Error = "disk full"
		}
		if err := db.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	_ = db.Record(Entry{Profile: "/other", OK: true, At: at})

	got, err := db.Recent("/p", 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Number != 3 || !got[0].OK || got[0].Bytes != 30 {
		t.Errorf("newest = %+v", got[0])
	}
	if got[1].OK || got[1].Error != "disk full" {
		t.Errorf("second = %+v", got[1])
	}
	if !got[0].At.Equal(at.Add(3 * time.Second)) {
		t.Errorf("at = %v", got[0].At)
	}

	all, err := db.Recent("", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("all = %d, want 4", len(all))
	}
}

func TestStats(t *testing.T) {
	db := testDB(t)
	s, err := db.Stats("/p")
	if err != nil {
		t.Fatal(err)
	}
	if s.Attempts != 0 || s.LastSuccess != nil {
		t.Errorf("empty stats = %+v", s)
	}

	ok := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_ = db.Record(Entry{Profile: "/p", OK: true, At: ok})
	_ = db.Record(Entry{Profile: "/p", Error: "x", At: ok.Add(time.Minute)})

	s, err = db.Stats("/p")
	if err != nil {
		t.Fatal(err)
	}
	if s.Attempts != 2 || s.Failed != 1 {
		t.Errorf("stats = %+v", s)
	}
	if s.LastSuccess == nil || !s.LastSuccess.Equal(ok) {
		t.Errorf("last success = %v", s.LastSuccess)
	}
}

func TestListener(t *testing.T) {
	db := testDB(t)
	l := NewListener(db, testutil.Logger())

	l.SaveAttempted(engine.Attempt{Profile: "/p", File: "/p/notes.md", Trigger: engine.TriggerFlush, Number: 1, Err: errors.New("read-only")})
	l.SaveAttempted(engine.Attempt{Profile: "/p", Trigger: engine.TriggerTimer, Number: 1, Checksum: "abc"})
	l.SaveFailed(engine.FailureReport{Path: "/p/notes.md", Attempts: 3, Err: errors.New("read-only")})

	got, err := db.Recent("/p", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d", len(got))
	}
	if got[1].Trigger != "flush" || got[1].OK || got[1].Error != "read-only" {
		t.Errorf("flush entry = %+v", got[1])
	}
	if got[0].Checksum != "abc" || !got[0].OK {
		t.Errorf("timer entry = %+v", got[0])
	}

	fails, err := db.Failures(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(fails) != 1 || fails[0].Attempts != 3 || fails[0].Path != "/p/notes.md" {
		t.Errorf("failures = %+v", fails)
	}
}
