package progress

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func open(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "progress.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreSaveGet(t *testing.T) {
	s := open(t)
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "ep1"); ok || err != nil {
		t.Fatalf("Get on empty store: ok=%v err=%v", ok, err)
	}
	if err := s.Save(ctx, "ep1", 42.5, 1400); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, "ep1", 100, 1400); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	e, ok, err := s.Get(ctx, "ep1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if e.Position != 100 || e.Duration != 1400 {
		t.Errorf("entry: got %+v, want position 100 duration 1400", e)
	}
	if !e.Updated.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("Updated: got %v", e.Updated)
	}

	if err := s.Delete(ctx, "ep1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "ep1"); ok {
		t.Error("Get after Delete: got an entry")
	}
}

func TestResumeAt(t *testing.T) {
	tests := []struct {
		pos, dur float64
		want     float64
	}{
		{120, 1400, 120},
		{1375, 1400, 0},
		{1369, 1400, 1369},
		{50, 0, 50},
	}
	for _, tt := range tests {
		e := Entry{Position: tt.pos, Duration: tt.dur}
		if got := e.ResumeAt(); got != tt.want {
			t.Errorf("ResumeAt(%v/%v): got %v, want %v", tt.pos, tt.dur, got, tt.want)
		}
	}
}

func TestRecorderThrottles(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	r := NewRecorder(s, time.Hour)

	r.Record("ep1", 1, 100)
	r.Record("ep1", 2, 100)
	r.Record("ep1", 3, 100)
	e, _, _ := s.Get(ctx, "ep1")
	if e.Position != 1 {
		t.Errorf("throttled position: got %v, want 1", e.Position)
	}

	r.Flush()
	e, _, _ = s.Get(ctx, "ep1")
	if e.Position != 3 {
		t.Errorf("flushed position: got %v, want 3", e.Position)
	}
}

func TestRecorderFlushesOnKeyChange(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	r := NewRecorder(s, time.Hour)

	r.Record("ep1", 1, 100)
	r.Record("ep1", 7, 100)
	r.Record("ep2", 4, 100)

	e, _, _ := s.Get(ctx, "ep1")
	if e.Position != 7 {
		t.Errorf("ep1: got %v, want 7", e.Position)
	}
	if _, ok, _ := s.Get(ctx, "ep2"); ok {
		t.Error("ep2 should still be throttled")
	}
}
