package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avtomarket/avtomarket/internal/client/storage"
)

func TestKV_SetGetRoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SetItem(ctx, "viewed_cars_count", "7"))

	value, err := store.GetItem(ctx, "viewed_cars_count")
	require.NoError(t, err)
	assert.Equal(t, "7", value)

	// Перезапись значения
	require.NoError(t, store.SetItem(ctx, "viewed_cars_count", "8"))
	value, err = store.GetItem(ctx, "viewed_cars_count")
	require.NoError(t, err)
	assert.Equal(t, "8", value)
}

func TestKV_GetNotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetItem(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestKV_RemoveItem(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SetItem(ctx, "k", "v"))
	require.NoError(t, store.RemoveItem(ctx, "k"))

	_, err := store.GetItem(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)

	// Удаление отсутствующего ключа — не ошибка
	assert.NoError(t, store.RemoveItem(ctx, "k"))
}
