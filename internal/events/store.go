// Package events is the append-only experiment event log, one SQLite row per
// answered question. Every append opens the database, writes a single row and
// closes it again, so independent processes can log concurrently without
// shared connection state.
package events

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"pdfqa/internal/qaerrors"
)

//go:embed schema.sql
var schemaSQL string

// MaxAnswerLen bounds the stored answer text. Longer answers are truncated
// at the store boundary, never at read time.
const MaxAnswerLen = 2000

// Event is one persisted question-answer record with experiment metadata.
// Vote feedback arrives as a new appended event, never as an update.
type Event struct {
	ID          int64     `json:"id,omitempty"`
	Timestamp   time.Time `json:"ts"`
	SessionID   string    `json:"session_id"`
	Experiment  string    `json:"experiment"`
	Variant     string    `json:"variant"`
	Question    string    `json:"question"`
	TopK        int       `json:"top_k"`
	LatencyMS   int64     `json:"latency_ms"`
	Citations   string    `json:"citations"`
	SourcePages []int     `json:"source_pages"`
	Answer      string    `json:"answer"`
	UserVote    string    `json:"user_vote,omitempty"` // "", "up" or "down"
}

// Measurement is the raw projection the analyzer aggregates over.
type Measurement struct {
	Experiment string
	Variant    string
	LatencyMS  int64
	UserVote   string
}

// VoteCount is one row of the vote breakdown.
type VoteCount struct {
	Experiment string `json:"experiment"`
	Variant    string `json:"variant"`
	UserVote   string `json:"user_vote"`
	Count      int    `json:"count"`
}

// Store is a handle on the event log file. It holds no open connection.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// open creates the backing file and schema if absent and returns a
// connection. Callers must close it.
func (s *Store) open() (*sql.DB, error) {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, qaerrors.NewStorageError(s.path, err)
		}
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, qaerrors.NewStorageError(s.path, err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, qaerrors.NewStorageError(s.path, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, qaerrors.NewStorageError(s.path, err)
	}
	return db, nil
}

// Append writes one event. The answer is truncated to MaxAnswerLen runes and
// an empty vote is stored as NULL. A zero timestamp is filled with the
// current UTC time.
func (s *Store) Append(ctx context.Context, ev Event) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	pages, err := json.Marshal(ev.SourcePages)
	if err != nil {
		return qaerrors.NewStorageError(s.path, err)
	}
	answer := ev.Answer
	if runes := []rune(answer); len(runes) > MaxAnswerLen {
		answer = string(runes[:MaxAnswerLen])
	}
	var vote sql.NullString
	if ev.UserVote != "" {
		vote = sql.NullString{String: ev.UserVote, Valid: true}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO events (ts, session_id, experiment, variant, question, top_k, latency_ms, citations, source_pages, answer, user_vote)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ts.UTC().Format(time.RFC3339Nano), ev.SessionID, ev.Experiment, ev.Variant, ev.Question,
		ev.TopK, ev.LatencyMS, ev.Citations, string(pages), answer, vote)
	if err != nil {
		return qaerrors.NewStorageError(s.path, err)
	}
	return nil
}

// Events returns the full rows for the given experiment names, oldest first.
// With no names it returns everything.
func (s *Store) Events(ctx context.Context, experiments ...string) ([]Event, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := `
		SELECT id, ts, session_id, experiment, variant, question, top_k, latency_ms, citations, source_pages, answer, user_vote
		FROM events`
	where, args := experimentFilter(experiments)
	rows, err := db.QueryContext(ctx, query+where+" ORDER BY id", args...)
	if err != nil {
		return nil, qaerrors.NewStorageError(s.path, err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		var ts, pages string
		var vote sql.NullString
		if err := rows.Scan(&ev.ID, &ts, &ev.SessionID, &ev.Experiment, &ev.Variant, &ev.Question,
			&ev.TopK, &ev.LatencyMS, &ev.Citations, &pages, &ev.Answer, &vote); err != nil {
			return nil, qaerrors.NewStorageError(s.path, err)
		}
		if ev.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, qaerrors.NewStorageError(s.path, fmt.Errorf("parse ts %q: %w", ts, err))
		}
		if pages != "" && pages != "null" {
			if err := json.Unmarshal([]byte(pages), &ev.SourcePages); err != nil {
				return nil, qaerrors.NewStorageError(s.path, fmt.Errorf("parse source_pages %q: %w", pages, err))
			}
		}
		if vote.Valid {
			ev.UserVote = vote.String
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Measurements returns the raw variant/latency/vote projection for the given
// experiment names. It performs no aggregation.
func (s *Store) Measurements(ctx context.Context, experiments ...string) ([]Measurement, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	where, args := experimentFilter(experiments)
	rows, err := db.QueryContext(ctx, `
		SELECT experiment, variant, latency_ms, user_vote FROM events`+where, args...)
	if err != nil {
		return nil, qaerrors.NewStorageError(s.path, err)
	}
	defer rows.Close()

	var out []Measurement
	for rows.Next() {
		var m Measurement
		var vote sql.NullString
		if err := rows.Scan(&m.Experiment, &m.Variant, &m.LatencyMS, &vote); err != nil {
			return nil, qaerrors.NewStorageError(s.path, err)
		}
		if vote.Valid {
			m.UserVote = vote.String
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// VoteBreakdown returns counts of voted rows grouped by experiment, variant
// and vote, most frequent first.
func (s *Store) VoteBreakdown(ctx context.Context) ([]VoteCount, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT experiment, variant, user_vote, count(*)
		FROM events
		WHERE user_vote IS NOT NULL
		GROUP BY experiment, variant, user_vote
		ORDER BY count(*) DESC`)
	if err != nil {
		return nil, qaerrors.NewStorageError(s.path, err)
	}
	defer rows.Close()

	var out []VoteCount
	for rows.Next() {
		var vc VoteCount
		if err := rows.Scan(&vc.Experiment, &vc.Variant, &vc.UserVote, &vc.Count); err != nil {
			return nil, qaerrors.NewStorageError(s.path, err)
		}
		out = append(out, vc)
	}
	return out, rows.Err()
}

func experimentFilter(experiments []string) (string, []any) {
	if len(experiments) == 0 {
		return "", nil
	}
	args := make([]any, len(experiments))
	for i, e := range experiments {
		args[i] = e
	}
	placeholders := strings.Repeat("?, ", len(experiments)-1) + "?"
	return " WHERE experiment IN (" + placeholders + ")", args
}
