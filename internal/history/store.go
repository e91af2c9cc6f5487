// Package history persists the outcome of every launched hook command.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/playhook/internal/log"
	"github.com/mattjoyce/playhook/internal/shellevents"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 1000

	// timeLayout is fixed width so started_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Record is one row of the execution log.
type Record struct {
	ID         string    `json:"id"`
	Event      string    `json:"event"`
	Command    string    `json:"command"`
	Mode       string    `json:"mode"`
	ExitCode   int       `json:"exit_code"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}

// Store writes outcomes to the exec_log table.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ shellevents.Observer = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, logger: log.WithComponent("history")}
}

// Observe records outcome. Write failures are logged and dropped.
func (s *Store) Observe(ctx context.Context, outcome shellevents.Outcome) {
	if _, err := s.Insert(ctx, outcome); err != nil {
		s.logger.Error("failed to record execution", "event", string(outcome.Event), "error", err)
	}
}

// Insert stores outcome and returns the new record id.
func (s *Store) Insert(ctx context.Context, outcome shellevents.Outcome) (string, error) {
	id := uuid.NewString()

	var errText any
	if outcome.Err != nil {
		errText = outcome.Err.Error()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO exec_log(id, event, command, mode, exit_code, error, started_at, duration_ms)
VALUES(?, ?, ?, ?, ?, ?, ?, ?);
`, id, string(outcome.Event), outcome.Command, string(outcome.Mode), outcome.ExitCode, errText,
		outcome.StartedAt.UTC().Format(timeLayout), outcome.Duration.Milliseconds())
	if err != nil {
		return "", fmt.Errorf("insert exec_log: %w", err)
	}
	return id, nil
}

// List returns the most recent records, newest first. A limit <= 0 uses
// DefaultListLimit; limits above MaxListLimit are capped.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, event, command, mode, exit_code, error, started_at, duration_ms
FROM exec_log
ORDER BY started_at DESC, rowid DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query exec_log: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r       Record
			errText sql.NullString
			started string
		)
		if err := rows.Scan(&r.ID, &r.Event, &r.Command, &r.Mode, &r.ExitCode, &errText, &started, &r.DurationMs); err != nil {
			return nil, fmt.Errorf("scan exec_log: %w", err)
		}
		r.Error = errText.String
		r.StartedAt, err = time.Parse(timeLayout, started)
		if err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", started, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exec_log: %w", err)
	}
	return out, nil
}

// Prune deletes records that started before now-retention.
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-retention).UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx, "DELETE FROM exec_log WHERE started_at < ?;", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune exec_log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune exec_log: %w", err)
	}
	return n, nil
}
