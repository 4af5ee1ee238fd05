// Package sqlite provides a settings source backed by an embedded SQLite
// database. It implements both the Watcher and Sink contracts of
// github.com/zoobzio/dial over a single-row settings table, detecting
// external changes by polling a revision counter.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/zoobzio/clockz"
	_ "modernc.org/sqlite"
)

// DefaultPoll is the default interval for change detection.
const DefaultPoll = time.Second

const schema = `CREATE TABLE IF NOT EXISTS settings (
	id   INTEGER PRIMARY KEY CHECK (id = 1),
	data BLOB    NOT NULL,
	rev  INTEGER NOT NULL DEFAULT 1
)`

// Source reads and writes serialized settings in a SQLite database.
type Source struct {
	db    *sql.DB
	poll  time.Duration
	clock clockz.Clock
}

// New opens (creating if needed) the database at path and ensures the
// settings table exists.
func New(path string) (*Source, error) {
	params := make(url.Values)
	params.Add("_journal_mode", "WAL")
	params.Add("_busy_timeout", "5000")
	params.Add("mode", "rwc")

	db, err := sql.Open("sqlite", "file:"+path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create settings table: %w", err)
	}

	return &Source{
		db:    db,
		poll:  DefaultPoll,
		clock: clockz.RealClock,
	}, nil
}

// Poll sets the change detection interval. Default: 1s.
// Must be called before Watch().
func (s *Source) Poll(d time.Duration) *Source {
	s.poll = d
	return s
}

// Clock sets a custom clock for poll scheduling.
// Must be called before Watch().
func (s *Source) Clock(clock clockz.Clock) *Source {
	s.clock = clock
	return s
}

// Watch returns a channel that emits the stored settings immediately (if
// any exist) and again whenever the revision counter advances. The channel
// is closed when the context is canceled.
func (s *Source) Watch(ctx context.Context) (<-chan []byte, error) {
	out := make(chan []byte)

	go func() {
		defer close(out)

		lastRev := int64(-1)
		for {
			data, rev, err := s.read(ctx)
			if err == nil && rev != lastRev {
				lastRev = rev
				select {
				case out <- data:
				case <-ctx.Done():
					return
				}
			}

			timer := s.clock.NewTimer(s.poll)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C():
			}
		}
	}()

	return out, nil
}

// Store replaces the stored settings and advances the revision counter.
func (s *Source) Store(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO settings (id, data, rev) VALUES (1, ?, 1)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, rev = settings.rev + 1`, data)
	if err != nil {
		return fmt.Errorf("failed to store settings: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Source) Close() error {
	return s.db.Close()
}

func (s *Source) read(ctx context.Context) ([]byte, int64, error) {
	var data []byte
	var rev int64
	err := s.db.QueryRowContext(ctx, `SELECT data, rev FROM settings WHERE id = 1`).Scan(&data, &rev)
	if err != nil {
		return nil, 0, err
	}
	return data, rev, nil
}
