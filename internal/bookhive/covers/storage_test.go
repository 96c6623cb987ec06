package covers

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()

	storage, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	return storage
}

func TestNewStorage(t *testing.T) {
	t.Run("creates covers directory", func(t *testing.T) {
		tmpDir := t.TempDir()

		storage, err := NewStorage(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, storage)

		info, err := os.Stat(filepath.Join(tmpDir, "covers"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("returns error for empty path", func(t *testing.T) {
		storage, err := NewStorage("")
		assert.Error(t, err)
		assert.Nil(t, storage)
	})
}

func TestStorage_SaveAndGet(t *testing.T) {
	t.Run("round trips data", func(t *testing.T) {
		storage := setupTestStorage(t)
		data := []byte("cover bytes")

		require.NoError(t, storage.Save(7, data))

		got, err := storage.Get(7)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("rejects non-positive id", func(t *testing.T) {
		storage := setupTestStorage(t)
		assert.Error(t, storage.Save(0, []byte("x")))
		assert.Error(t, storage.Save(-1, []byte("x")))
	})

	t.Run("rejects empty data", func(t *testing.T) {
		storage := setupTestStorage(t)
		assert.Error(t, storage.Save(7, nil))
	})

	t.Run("overwrites existing cover", func(t *testing.T) {
		storage := setupTestStorage(t)

		require.NoError(t, storage.Save(7, []byte("old")))
		require.NoError(t, storage.Save(7, []byte("new")))

		got, err := storage.Get(7)
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), got)
	})

	t.Run("missing cover wraps fs.ErrNotExist", func(t *testing.T) {
		storage := setupTestStorage(t)

		_, err := storage.Get(404)
		require.Error(t, err)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}

func TestStorage_Exists(t *testing.T) {
	storage := setupTestStorage(t)

	assert.False(t, storage.Exists(7))
	require.NoError(t, storage.Save(7, []byte("cover")))
	assert.True(t, storage.Exists(7))
	assert.False(t, storage.Exists(0))
}

func TestStorage_Delete(t *testing.T) {
	storage := setupTestStorage(t)

	require.NoError(t, storage.Save(7, []byte("cover")))
	require.NoError(t, storage.Delete(7))
	assert.False(t, storage.Exists(7))

	// Deleting again is not an error.
	assert.NoError(t, storage.Delete(7))
}

func TestStorage_Hash(t *testing.T) {
	storage := setupTestStorage(t)

	require.NoError(t, storage.Save(1, []byte("same bytes")))
	require.NoError(t, storage.Save(2, []byte("same bytes")))
	require.NoError(t, storage.Save(3, []byte("other bytes")))

	h1, err := storage.Hash(1)
	require.NoError(t, err)
	h2, err := storage.Hash(2)
	require.NoError(t, err)
	h3, err := storage.Hash(3)
	require.NoError(t, err)

	assert.Len(t, h1, 64, "hex sha256")
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)

	_, err = storage.Hash(404)
	assert.Error(t, err)
}

func TestStorage_Path(t *testing.T) {
	storage := setupTestStorage(t)
	assert.Equal(t, "7.jpg", filepath.Base(storage.Path(7)))
}
