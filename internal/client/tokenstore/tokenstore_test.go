package tokenstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

func openMemorySQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStores_GetSetDelete(t *testing.T) {
	stores := map[string]store{
		"memory": NewMemoryStore(),
		"sqlite": openMemorySQLite(t),
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			v, err := s.Get(ctx, "auth_token")
			require.NoError(t, err)
			assert.Empty(t, v)

			require.NoError(t, s.Set(ctx, "auth_token", "old"))
			require.NoError(t, s.Set(ctx, "auth_token", "new"))
			v, err = s.Get(ctx, "auth_token")
			require.NoError(t, err)
			assert.Equal(t, "new", v)

			require.NoError(t, s.Delete(ctx, "auth_token"))
			require.NoError(t, s.Delete(ctx, "auth_token"))
			v, err = s.Get(ctx, "auth_token")
			require.NoError(t, err)
			assert.Empty(t, v)
		})
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tokens.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "auth_token", "abc"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}
