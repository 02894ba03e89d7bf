// Package postgres persists sessions and booking hand-offs in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/luminex/symptomcheck/pkg/domain"
)

// Open connects to dsn, verifies the connection and applies migrations.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := Migrate(dsn); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Store implements ports.StateStore on the luminex_sessions table.
type Store struct {
	db *sql.DB
}

// NewStore creates a store on an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save upserts the state as JSONB.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO luminex_sessions (session_id, state, phase, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session_id) DO UPDATE
		SET state = EXCLUDED.state, phase = EXCLUDED.phase, updated_at = EXCLUDED.updated_at`,
		sessionID, data, string(state.Phase))
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}
	return nil
}

// Load reads the state of a session.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM luminex_sessions WHERE session_id = $1`, sessionID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &state, nil
}

// Delete removes a session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM luminex_sessions WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// List returns the session ids, most recently updated first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id FROM luminex_sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Handoff implements ports.BookingHandoff and ports.HandoffReader on the
// luminex_handoffs table.
type Handoff struct {
	db *sql.DB
}

// NewHandoff creates a hand-off store on an open database.
func NewHandoff(db *sql.DB) *Handoff {
	return &Handoff{db: db}
}

// Deliver upserts the hand-off of a session.
func (h *Handoff) Deliver(ctx context.Context, sessionID string, v domain.Handoff) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO luminex_handoffs (session_id, branch_id, branch_name, diagnosis, description, delivered_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (session_id) DO UPDATE
		SET branch_id = EXCLUDED.branch_id, branch_name = EXCLUDED.branch_name,
		    diagnosis = EXCLUDED.diagnosis, description = EXCLUDED.description,
		    delivered_at = EXCLUDED.delivered_at`,
		sessionID, v.BranchID, v.BranchName, v.DiagnosisTitle, v.DiagnosisDescription)
	if err != nil {
		return fmt.Errorf("failed to deliver hand-off for %s: %w", sessionID, err)
	}
	return nil
}

// Read returns the latest hand-off of a session.
func (h *Handoff) Read(ctx context.Context, sessionID string) (domain.Handoff, error) {
	var v domain.Handoff
	err := h.db.QueryRowContext(ctx, `
		SELECT branch_id, branch_name, diagnosis, description
		FROM luminex_handoffs WHERE session_id = $1`, sessionID).
		Scan(&v.BranchID, &v.BranchName, &v.DiagnosisTitle, &v.DiagnosisDescription)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Handoff{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Handoff{}, fmt.Errorf("failed to read hand-off for %s: %w", sessionID, err)
	}
	return v, nil
}
