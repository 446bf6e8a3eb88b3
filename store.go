package courseengine

import (
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database and provides CRUD operations for lessons.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent read/write access, set a busy timeout
	// so writers wait instead of returning SQLITE_BUSY immediately, and tune
	// performance: synchronous=NORMAL is safe with WAL and avoids an fsync
	// per transaction; larger cache and mmap reduce disk I/O.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS lessons (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    requires TEXT NOT NULL,
    tags TEXT NOT NULL,
    summary TEXT NOT NULL,
    updated TEXT NOT NULL,
    weight INTEGER NOT NULL DEFAULT 0,
    content TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT '',
    draft INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS figures (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`ALTER TABLE lessons ADD COLUMN source TEXT NOT NULL DEFAULT '';`); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
			return nil
		}
		return err
	}
	return nil
}

func scanLesson(scan func(dest ...any) error) (Lesson, error) {
	var id, name, requires, tags, summary, updated, content, source string
	var weight, draft int
	if err := scan(&id, &name, &requires, &tags, &summary, &updated, &weight, &content, &source, &draft); err != nil {
		return Lesson{}, err
	}
	return Lesson{
		ID:       id,
		Name:     name,
		Requires: ParseList(requires),
		Tags:     ParseList(tags),
		Summary:  summary,
		Updated:  updated,
		Weight:   weight,
		Content:  content,
		Source:   source,
		Link:     "/lesson/" + id,
		Draft:    draft == 1,
	}, nil
}

const lessonColumns = `id, name, requires, tags, summary, updated, weight, content, source, draft`

// ListLessons returns all published lessons ordered by weight then name.
// If tag is non-empty, results are filtered to lessons carrying that tag.
func (s *Store) ListLessons(tag string) ([]Lesson, error) {
	var rows *sql.Rows
	var err error
	if tag == "" {
		rows, err = s.db.Query(`SELECT ` + lessonColumns + ` FROM lessons WHERE draft = 0 ORDER BY weight, name`)
	} else {
		normalized := strings.ToLower(strings.TrimSpace(tag))
		rows, err = s.db.Query(`SELECT `+lessonColumns+` FROM lessons WHERE draft = 0 AND instr(lower(tags), ',' || ? || ',') > 0 ORDER BY weight, name`, normalized)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []Lesson
	for rows.Next() {
		l, err := scanLesson(rows.Scan)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// ListAllLessons returns every lesson (published and drafts) ordered by weight then name.
func (s *Store) ListAllLessons() ([]Lesson, error) {
	rows, err := s.db.Query(`SELECT ` + lessonColumns + ` FROM lessons ORDER BY weight, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []Lesson
	for rows.Next() {
		l, err := scanLesson(rows.Scan)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// ListTags returns a sorted, deduplicated slice of all tags from published lessons.
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM lessons WHERE draft = 0`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseList(tags) {
			set[strings.ToLower(t)] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var result []string
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// GetLesson returns a single published lesson by id.
func (s *Store) GetLesson(id string) (Lesson, error) {
	row := s.db.QueryRow(`SELECT `+lessonColumns+` FROM lessons WHERE id = ? AND draft = 0`, id)
	return scanLesson(row.Scan)
}

// GetLessonAny returns a lesson by id regardless of draft status (for admin).
func (s *Store) GetLessonAny(id string) (Lesson, error) {
	row := s.db.QueryRow(`SELECT `+lessonColumns+` FROM lessons WHERE id = ?`, id)
	return scanLesson(row.Scan)
}

// SaveLesson upserts a lesson. Tags are normalized to lowercase; requires
// entries keep their case since lesson ids are case-sensitive.
func (s *Store) SaveLesson(l Lesson) error {
	normalizedTags := make([]string, len(l.Tags))
	for i, t := range l.Tags {
		normalizedTags[i] = strings.ToLower(strings.TrimSpace(t))
	}
	draft := 0
	if l.Draft {
		draft = 1
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO lessons (id, name, requires, tags, summary, updated, weight, content, source, draft) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, JoinList(l.Requires), JoinList(normalizedTags), l.Summary, l.Updated, l.Weight, l.Content, l.Source, draft)
	return err
}

// DeleteLesson removes a lesson by id.
func (s *Store) DeleteLesson(id string) error {
	_, err := s.db.Exec(`DELETE FROM lessons WHERE id = ?`, id)
	return err
}

// ReplaceAll swaps the whole lesson table for the given corpus in one
// transaction, so readers never observe a half-synced course.
func (s *Store) ReplaceAll(lessons []Lesson) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM lessons`); err != nil {
		return err
	}
	for _, l := range lessons {
		normalizedTags := make([]string, len(l.Tags))
		for i, t := range l.Tags {
			normalizedTags[i] = strings.ToLower(strings.TrimSpace(t))
		}
		draft := 0
		if l.Draft {
			draft = 1
		}
		if _, err := tx.Exec(`INSERT INTO lessons (id, name, requires, tags, summary, updated, weight, content, source, draft) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.Name, JoinList(l.Requires), JoinList(normalizedTags), l.Summary, l.Updated, l.Weight, l.Content, l.Source, draft); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListFigures returns all uploaded figures, newest first.
func (s *Store) ListFigures() ([]Figure, error) {
	rows, err := s.db.Query(`SELECT filename, original_name, width, height, size, uploaded_at FROM figures ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var figures []Figure
	for rows.Next() {
		var f Figure
		if err := rows.Scan(&f.Filename, &f.OriginalName, &f.Width, &f.Height, &f.Size, &f.UploadedAt); err != nil {
			return nil, err
		}
		figures = append(figures, f)
	}
	return figures, rows.Err()
}

// SaveFigure records an uploaded figure's metadata.
func (s *Store) SaveFigure(f Figure) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO figures (filename, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		f.Filename, f.OriginalName, f.Width, f.Height, f.Size, f.UploadedAt)
	return err
}

// DeleteFigure removes a figure record by filename.
func (s *Store) DeleteFigure(filename string) error {
	_, err := s.db.Exec(`DELETE FROM figures WHERE filename = ?`, filename)
	return err
}

// ParseList splits a comma-delimited list column (e.g. ",go,testing,") into a slice.
func ParseList(val string) []string {
	val = strings.Trim(val, ",")
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// JoinList encodes a slice as a comma-delimited list column with sentinel
// commas on both ends, so instr-based tag matching stays exact.
func JoinList(vals []string) string {
	return "," + strings.Join(vals, ",") + ","
}
