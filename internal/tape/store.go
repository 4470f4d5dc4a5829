package tape

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"go-chi-calculator/internal/engine"
)

const defaultLimit = 50

// Entry is one resolved calculation.
type Entry struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Operator  string    `json:"operator"`
	Left      string    `json:"left"`
	Right     string    `json:"right"`
	Result    string    `json:"result"`
	Failed    bool      `json:"failed"`
	CreatedAt time.Time `json:"created_at"`
}

// FromCalculation converts an engine calculation into an unsaved entry.
func FromCalculation(sessionID string, c engine.Calculation) Entry {
	return Entry{
		SessionID: sessionID,
		Operator:  c.Operator.String(),
		Left:      c.Left,
		Right:     c.Right,
		Result:    c.Result,
		Failed:    c.Failed(),
	}
}

// String renders the entry the way the display would, e.g. "5 + 3 = 8".
func (e Entry) String() string {
	sym := e.Operator
	if op, err := engine.ParseOperator(e.Operator); err == nil {
		sym = op.Symbol()
	}
	result := engine.ErrorText
	if !e.Failed {
		result = engine.Format(e.Result)
	}
	return fmt.Sprintf("%s %s %s = %s", engine.Format(e.Left), sym, engine.Format(e.Right), result)
}

// Store persists tape entries.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

// Append stores e, assigning an id and timestamp when missing.
func (s *Store) Append(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = Now()
	}
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO tape_entries(id, session_id, operator, left_text, right_text, result, failed, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`, e.ID, e.SessionID, e.Operator, e.Left, e.Right, e.Result, e.Failed, e.CreatedAt.Unix())
	if err != nil {
		return Entry{}, fmt.Errorf("append tape: %w", err)
	}
	return e, nil
}

// Recent returns the newest entries first. limit <= 0 means the default.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return s.query(ctx, `
	SELECT id, session_id, operator, left_text, right_text, result, failed, created_at
	FROM tape_entries ORDER BY created_at DESC, rowid DESC LIMIT ?`, normalizeLimit(limit))
}

// BySession returns one session's entries, newest first.
func (s *Store) BySession(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	return s.query(ctx, `
	SELECT id, session_id, operator, left_text, right_text, result, failed, created_at
	FROM tape_entries WHERE session_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, sessionID, normalizeLimit(limit))
}

// Clear deletes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tape_entries`); err != nil {
		return fmt.Errorf("clear tape: %w", err)
	}
	return nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tape: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			created int64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Operator, &e.Left, &e.Right, &e.Result, &e.Failed, &created); err != nil {
			return nil, fmt.Errorf("scan tape: %w", err)
		}
		e.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}
