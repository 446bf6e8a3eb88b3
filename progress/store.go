package progress

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides database operations for reader progress.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the progress database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open progress db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			visitor_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			lesson_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			screen TEXT,
			timestamp DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_events_lesson ON events(lesson_id, kind);
		CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// GetSetting returns the value for key, or "" if unset.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting upserts a settings key.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// RecordEvent stores one progress event. Completes are deduplicated per
// visitor and lesson: re-reading a finished lesson is not a new completion.
func (s *Store) RecordEvent(e Event) error {
	if e.Kind == EventComplete {
		var n int
		err := s.db.QueryRow(`SELECT COUNT(*) FROM events WHERE visitor_id = ? AND lesson_id = ? AND kind = ?`,
			e.VisitorID, e.LessonID, EventComplete).Scan(&n)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
	}
	_, err := s.db.Exec(`INSERT INTO events (visitor_id, session_id, lesson_id, kind, screen, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		e.VisitorID, e.SessionID, e.LessonID, e.Kind, e.Screen, e.Timestamp.UTC())
	return err
}

// StatsByLesson aggregates views, completions, and distinct readers per lesson.
func (s *Store) StatsByLesson() ([]LessonStats, error) {
	rows, err := s.db.Query(`
		SELECT lesson_id,
		       SUM(CASE WHEN kind = 'view' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN kind = 'complete' THEN 1 ELSE 0 END),
		       COUNT(DISTINCT visitor_id)
		FROM events
		GROUP BY lesson_id
		ORDER BY lesson_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []LessonStats
	for rows.Next() {
		var st LessonStats
		if err := rows.Scan(&st.LessonID, &st.Views, &st.Completes, &st.Readers); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// CompletedLessons returns the lesson ids a visitor has completed.
func (s *Store) CompletedLessons(visitorID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT lesson_id FROM events WHERE visitor_id = ? AND kind = ? ORDER BY lesson_id`,
		visitorID, EventComplete)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteOlderThan removes events past the retention window and returns the
// number of rows deleted.
func (s *Store) DeleteOlderThan(days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res, err := s.db.Exec(`DELETE FROM events WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartCleanupScheduler deletes events older than retentionDays on every
// interval tick. The returned stop function ends the scheduler.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_, _ = s.DeleteOlderThan(retentionDays)
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}
