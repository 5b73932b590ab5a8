package storage

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/labbook/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	payload := []byte("attachment bytes")

	url, err := store.Upload(ctx, payload, "raw data.csv", "text/csv")
	require.NoError(t, err)
	assert.Contains(t, url, "/files/")
	assert.Contains(t, url, "raw_data.csv")

	got, err := store.Fetch(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.True(t, store.Delete(ctx, url))

	_, err = store.Fetch(ctx, url)
	assert.ErrorIs(t, err, common.ErrStorageNotFound)
}

func TestLocalStore_FetchMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), "/files/absent.bin")
	assert.ErrorIs(t, err, common.ErrStorageNotFound)
}

func TestLocalStore_TraversalKeysAreFlattened(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	// a hostile URL must not escape the upload directory
	_, err = store.Fetch(context.Background(), "/files/../../etc/passwd")
	assert.ErrorIs(t, err, common.ErrStorageNotFound)
}
