package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key returns ErrKeyNotFound", func(t *testing.T) {
		store := NewMemory()
		_, err := store.Get(ctx, "absent")
		require.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("set then get round trips", func(t *testing.T) {
		store := NewMemory()
		require.NoError(t, store.Set(ctx, "applications", []byte(`[]`)))

		val, err := store.Get(ctx, "applications")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[]`), val)
	})

	t.Run("set overwrites previous value", func(t *testing.T) {
		store := NewMemory()
		require.NoError(t, store.Set(ctx, "k", []byte("v1")))
		require.NoError(t, store.Set(ctx, "k", []byte("v2")))

		val, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), val)
	})

	t.Run("delete removes key and is idempotent", func(t *testing.T) {
		store := NewMemory()
		require.NoError(t, store.Set(ctx, "k", []byte("v")))
		require.NoError(t, store.Delete(ctx, "k"))
		require.NoError(t, store.Delete(ctx, "k"))

		_, err := store.Get(ctx, "k")
		require.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		store := NewMemory()
		require.NoError(t, store.Set(ctx, "k", []byte("abc")))

		val, err := store.Get(ctx, "k")
		require.NoError(t, err)
		val[0] = 'z'

		again, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), again)
	})
}
