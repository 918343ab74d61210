// Package history persists analysis outcomes in a local SQLite
// database so past checks can be listed and summarized.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS checks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	filename TEXT NOT NULL,
	checked_at TIMESTAMP NOT NULL,
	result TEXT NOT NULL,
	confidence INTEGER NOT NULL,
	language TEXT NOT NULL,
	patterns TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks(checked_at DESC);
`

// Entry is one recorded analysis.
type Entry struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	CheckedAt  time.Time `json:"checkedAt"`
	Result     string    `json:"result"`
	Confidence int       `json:"confidence"`
	Language   string    `json:"language"`
	Patterns   []string  `json:"patterns"`
}

// Stats summarizes all recorded analyses.
type Stats struct {
	Total          int            `json:"total"`
	ByResult       map[string]int `json:"byResult"`
	MeanConfidence float64        `json:"meanConfidence"`
}

// Store wraps the SQLite database.
type Store struct {
	db     *sql.DB
	logger hclog.Logger
}

// Open opens (creating if needed) the history database at path.
func Open(path string, logger hclog.Logger) (*Store, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", path, err)
	}
	// modernc sqlite serializes writes itself; one connection avoids
	// SQLITE_BUSY under concurrent appends.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	logger.Debug("history database ready", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append records one analysis outcome.
func (s *Store) Append(ctx context.Context, e Entry) error {
	patterns, err := json.Marshal(e.Patterns)
	if err != nil {
		return fmt.Errorf("encode patterns: %w", err)
	}
	if e.CheckedAt.IsZero() {
		e.CheckedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO checks (filename, checked_at, result, confidence, language, patterns)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Filename, e.CheckedAt, e.Result, e.Confidence, e.Language, string(patterns))
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	s.logger.Debug("recorded check", "filename", e.Filename, "result", e.Result, "confidence", e.Confidence)
	return nil
}

// Recent returns the latest entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, checked_at, result, confidence, language, patterns
		 FROM checks ORDER BY checked_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var patterns string
		if err := rows.Scan(&e.ID, &e.Filename, &e.CheckedAt, &e.Result, &e.Confidence, &e.Language, &patterns); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if err := json.Unmarshal([]byte(patterns), &e.Patterns); err != nil {
			s.logger.Warn("corrupt patterns column", "id", e.ID, "error", err)
			e.Patterns = nil
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return entries, nil
}

// Stats computes aggregate counts over all entries.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByResult: make(map[string]int)}

	rows, err := s.db.QueryContext(ctx,
		`SELECT result, COUNT(*), AVG(confidence) FROM checks GROUP BY result`)
	if err != nil {
		return nil, fmt.Errorf("query history stats: %w", err)
	}
	defer rows.Close()

	weightedSum := 0.0
	for rows.Next() {
		var result string
		var count int
		var avg sql.NullFloat64
		if err := rows.Scan(&result, &count, &avg); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stats.ByResult[result] = count
		stats.Total += count
		if avg.Valid {
			weightedSum += avg.Float64 * float64(count)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}

	if stats.Total > 0 {
		stats.MeanConfidence = weightedSum / float64(stats.Total)
	}
	return stats, nil
}
