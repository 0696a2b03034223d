package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// exerciseStore runs the KVStore contract against any implementation.
func exerciseStore(t *testing.T, store KVStore) {
	t.Helper()
	ctx := context.Background()

	val, found, err := store.Get(ctx, "travellerData")
	require.NoError(t, err)
	require.False(t, found)
	require.Empty(t, val)

	require.NoError(t, store.Set(ctx, "travellerData", `[{"id":"1"}]`))
	val, found, err = store.Get(ctx, "travellerData")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `[{"id":"1"}]`, val)

	require.NoError(t, store.Set(ctx, "travellerData", `[]`))
	val, found, err = store.Get(ctx, "travellerData")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `[]`, val)

	_, found, err = store.Get(ctx, "other")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryStore_ReadWrite(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}
