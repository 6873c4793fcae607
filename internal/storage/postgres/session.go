package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSessionNotFound is returned when a session lookup yields no results.
var ErrSessionNotFound = errors.New("session not found")

// Session is a persisted play session: an opaque state snapshot keyed by ID.
type Session struct {
	ID        uuid.UUID
	Snapshot  []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionRepository provides session snapshot persistence operations.
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a SessionRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save upserts the snapshot for a session.
//
// Precondition: snapshot must be non-empty.
// Postcondition: A later Load for id returns exactly this snapshot.
func (r *SessionRepository) Save(ctx context.Context, id uuid.UUID, snapshot []byte) error {
	if len(snapshot) == 0 {
		return fmt.Errorf("snapshot must not be empty")
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (id, snapshot)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET snapshot = $2, updated_at = NOW()`,
		id, snapshot,
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", id, err)
	}
	return nil
}

// Load retrieves a session by ID.
//
// Postcondition: Returns the Session or ErrSessionNotFound.
func (r *SessionRepository) Load(ctx context.Context, id uuid.UUID) (*Session, error) {
	var s Session
	err := r.db.QueryRow(ctx, `
		SELECT id, snapshot, created_at, updated_at
		FROM sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Snapshot, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("querying session %s: %w", id, err)
	}
	return &s, nil
}

// Delete removes a session.
//
// Postcondition: Returns ErrSessionNotFound if no row was deleted.
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// SessionStore binds a repository to one session ID, giving the command
// interpreter its save/restore storage.
type SessionStore struct {
	repo *SessionRepository
	id   uuid.UUID
}

// NewSessionStore creates a store for the given session ID.
func NewSessionStore(repo *SessionRepository, id uuid.UUID) *SessionStore {
	return &SessionStore{repo: repo, id: id}
}

// SaveSnapshot persists the snapshot under the bound session ID.
func (s *SessionStore) SaveSnapshot(ctx context.Context, snapshot []byte) error {
	return s.repo.Save(ctx, s.id, snapshot)
}

// LoadSnapshot returns the snapshot stored under the bound session ID.
func (s *SessionStore) LoadSnapshot(ctx context.Context) ([]byte, error) {
	session, err := s.repo.Load(ctx, s.id)
	if err != nil {
		return nil, err
	}
	return session.Snapshot, nil
}
