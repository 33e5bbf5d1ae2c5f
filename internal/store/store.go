package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresmejia3/facerec/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store manages the PostgreSQL connection holding training and recognition history.
type Store struct {
	conn *pgx.Conn
}

// TrainingRun is one completed training run.
type TrainingRun struct {
	ID        uuid.UUID
	People    int
	Images    int
	Skipped   int
	ModelPath string
	CreatedAt time.Time
}

// Event is one classified face of a recognition session.
type Event struct {
	ID        int64
	SessionID uuid.UUID
	Label     int
	Name      string
	Distance  float64
	Status    string
	Box       [4]int
	CreatedAt time.Time
}

// New establishes a connection to the database and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Initialize schema (Auto-Migration)
	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

// initSchema creates the necessary tables if they don't exist (Auto-Migration).
func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS training_runs (
			id UUID PRIMARY KEY,
			people INT NOT NULL,
			images INT NOT NULL,
			skipped INT NOT NULL DEFAULT 0,
			model_path TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS recognition_sessions (
			id UUID PRIMARY KEY,
			started_at TIMESTAMPTZ DEFAULT NOW(),
			ended_at TIMESTAMPTZ,
			frames INT NOT NULL DEFAULT 0,
			recording TEXT
		);
		CREATE TABLE IF NOT EXISTS recognition_events (
			id BIGSERIAL PRIMARY KEY,
			session_id UUID REFERENCES recognition_sessions(id) ON DELETE CASCADE,
			label INT NOT NULL,
			name TEXT NOT NULL,
			distance DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL,
			box INT[] NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS recognition_events_session_id_idx ON recognition_events (session_id);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// InsertTrainingRun records a completed training run and returns its ID.
func (s *Store) InsertTrainingRun(ctx context.Context, people, images, skipped int, modelPath string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.conn.Exec(ctx, `
		INSERT INTO training_runs (id, people, images, skipped, model_path)
		VALUES ($1, $2, $3, $4, $5)
	`, id, people, images, skipped, modelPath)
	return id, err
}

// ListTrainingRuns returns the latest training runs, newest first.
func (s *Store) ListTrainingRuns(ctx context.Context, limit int) ([]TrainingRun, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, people, images, skipped, model_path, created_at
		FROM training_runs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []TrainingRun
	for rows.Next() {
		var r TrainingRun
		if err := rows.Scan(&r.ID, &r.People, &r.Images, &r.Skipped, &r.ModelPath, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// StartSession opens a recognition session and returns its ID.
func (s *Store) StartSession(ctx context.Context, recording string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.conn.Exec(ctx, `
		INSERT INTO recognition_sessions (id, started_at, recording)
		VALUES ($1, NOW(), NULLIF($2, ''))
	`, id, recording)
	return id, err
}

// EndSession stamps the end time and frame count of a session.
func (s *Store) EndSession(ctx context.Context, id uuid.UUID, frames int) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE recognition_sessions SET ended_at = NOW(), frames = $2 WHERE id = $1
	`, id, frames)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s not found", id)
	}
	return nil
}

// InsertEvent logs one prediction of a session.
func (s *Store) InsertEvent(ctx context.Context, sessionID uuid.UUID, p types.Prediction) error {
	name := p.Name
	if p.Status != types.Recognized {
		name = types.UnknownName
	}
	box := []int32{int32(p.Box.XMin), int32(p.Box.YMin), int32(p.Box.XMax), int32(p.Box.YMax)}
	_, err := s.conn.Exec(ctx, `
		INSERT INTO recognition_events (session_id, label, name, distance, status, box)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sessionID, p.Label, name, p.Distance, p.Status.String(), box)
	return err
}

// RecentEvents returns the latest recognition events across sessions, newest first.
func (s *Store) RecentEvents(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, session_id, label, name, distance, status, box, created_at
		FROM recognition_events ORDER BY id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var box []int32
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Label, &e.Name, &e.Distance, &e.Status, &box, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(box) != 4 {
			return nil, errors.New("malformed box in recognition_events")
		}
		e.Box = [4]int{int(box[0]), int(box[1]), int(box[2]), int(box[3])}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Reset drops all application tables to clear the database state.
// The schema is recreated on the next connection.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, `
		DROP TABLE IF EXISTS recognition_events CASCADE;
		DROP TABLE IF EXISTS recognition_sessions CASCADE;
		DROP TABLE IF EXISTS training_runs CASCADE;
	`)
	return err
}
