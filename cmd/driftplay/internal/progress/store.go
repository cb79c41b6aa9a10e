// Package progress persists watch positions so playback can resume.
package progress

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
	_ "modernc.org/sqlite"

	"github.com/go-drift/player/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS watch_progress (
	key        TEXT PRIMARY KEY,
	position_s REAL NOT NULL,
	duration_s REAL NOT NULL,
	updated_at INTEGER NOT NULL
)`

// finishedTail is how close to the end a position counts as watched.
const finishedTail = 30.0

// Entry is a stored position.
type Entry struct {
	Key      string
	Position float64
	Duration float64
	Updated  time.Time
}

// ResumeAt returns where playback should start: the stored position, or 0
// when the episode was watched to the end.
func (e Entry) ResumeAt() float64 {
	if e.Duration > 0 && e.Position >= e.Duration-finishedTail {
		return 0
	}
	return e.Position
}

// Store is a sqlite-backed progress store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create progress directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open progress db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate progress db: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Save records the position for key.
func (s *Store) Save(ctx context.Context, key string, pos, dur float64) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO watch_progress (key, position_s, duration_s, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE
SET position_s=excluded.position_s, duration_s=excluded.duration_s, updated_at=excluded.updated_at`,
		key, pos, dur, s.now().Unix())
	return err
}

// Get returns the stored entry for key.
func (s *Store) Get(ctx context.Context, key string) (Entry, bool, error) {
	e := Entry{Key: key}
	var updated int64
	err := s.db.QueryRowContext(ctx, `
SELECT position_s, duration_s, updated_at FROM watch_progress WHERE key = ?`, key).
		Scan(&e.Position, &e.Duration, &updated)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	e.Updated = time.Unix(updated, 0)
	return e, true, nil
}

// Delete forgets key.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM watch_progress WHERE key = ?`, key)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Recorder throttles position updates into a Store. It is meant to be fed
// from the player's OnTimeUpdate and is not safe for concurrent use.
type Recorder struct {
	store     *Store
	sometimes *rate.Sometimes
	timeout   time.Duration

	key      string
	pos, dur float64
}

// NewRecorder writes at most once per interval.
func NewRecorder(store *Store, interval time.Duration) *Recorder {
	return &Recorder{
		store:     store,
		sometimes: &rate.Sometimes{Interval: interval},
		timeout:   2 * time.Second,
	}
}

// Record notes the position of key, writing it when the interval allows.
// Switching keys flushes the previous one first.
func (r *Recorder) Record(key string, pos, dur float64) {
	if r.key != "" && key != r.key {
		r.Flush()
	}
	r.key, r.pos, r.dur = key, pos, dur
	r.sometimes.Do(r.write)
}

// Flush writes the last recorded position immediately.
func (r *Recorder) Flush() {
	if r.key == "" {
		return
	}
	r.write()
}

func (r *Recorder) write() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.store.Save(ctx, r.key, r.pos, r.dur); err != nil {
		errors.Report(&errors.PlayerError{
			Op:     "progress.Save",
			Kind:   errors.KindBackend,
			Source: r.key,
			Err:    err,
		})
	}
}
