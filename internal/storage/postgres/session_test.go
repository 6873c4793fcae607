package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-engine/lantern/internal/storage/postgres"
	"github.com/lantern-engine/lantern/internal/testutil"
)

func setupSessionRepo(t *testing.T) *postgres.SessionRepository {
	t.Helper()
	return postgres.NewSessionRepository(testutil.NewPool(t))
}

func TestSessionRepository_SaveAndLoad(t *testing.T) {
	repo := setupSessionRepo(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, repo.Save(ctx, id, []byte(`{"version":1}`)))

	session, err := repo.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, session.ID)
	assert.Equal(t, []byte(`{"version":1}`), session.Snapshot)
	assert.False(t, session.CreatedAt.IsZero())
}

func TestSessionRepository_SaveOverwrites(t *testing.T) {
	repo := setupSessionRepo(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, repo.Save(ctx, id, []byte(`first`)))
	require.NoError(t, repo.Save(ctx, id, []byte(`second`)))

	session, err := repo.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte(`second`), session.Snapshot)
}

func TestSessionRepository_SaveEmptySnapshot(t *testing.T) {
	repo := setupSessionRepo(t)
	assert.Error(t, repo.Save(context.Background(), uuid.New(), nil))
}

func TestSessionRepository_LoadMissing(t *testing.T) {
	repo := setupSessionRepo(t)
	_, err := repo.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, postgres.ErrSessionNotFound)
}

func TestSessionRepository_Delete(t *testing.T) {
	repo := setupSessionRepo(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, repo.Save(ctx, id, []byte(`gone soon`)))
	require.NoError(t, repo.Delete(ctx, id))

	_, err := repo.Load(ctx, id)
	assert.ErrorIs(t, err, postgres.ErrSessionNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, id), postgres.ErrSessionNotFound)
}

func TestSessionStore_RoundTrip(t *testing.T) {
	repo := setupSessionRepo(t)
	store := postgres.NewSessionStore(repo, uuid.New())
	ctx := context.Background()

	_, err := store.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, postgres.ErrSessionNotFound)

	require.NoError(t, store.SaveSnapshot(ctx, []byte(`{"moves":3}`)))
	snapshot, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"moves":3}`), snapshot)
}
