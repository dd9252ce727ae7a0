package images

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()

	storage, err := NewStorage(t.TempDir(), "http://localhost:8745/")
	require.NoError(t, err)
	return storage
}

func TestNewStorage(t *testing.T) {
	t.Run("creates objects directory", func(t *testing.T) {
		tmpDir := t.TempDir()

		storage, err := NewStorage(tmpDir, "http://localhost:8745")
		require.NoError(t, err)
		require.NotNil(t, storage)

		info, err := os.Stat(filepath.Join(tmpDir, "objects"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("returns error for empty path", func(t *testing.T) {
		storage, err := NewStorage("", "http://localhost:8745")
		assert.Error(t, err)
		assert.Nil(t, storage)
		assert.Contains(t, err.Error(), "base path cannot be empty")
	})
}

func TestStorage_PutGet(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()
	key := "items/2024/05/01/abc.png"

	require.NoError(t, storage.Put(ctx, key, []byte("png bytes"), "image/png"))

	data, err := storage.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)
	assert.True(t, storage.Exists(key))

	hash, err := storage.Hash(key)
	require.NoError(t, err)
	assert.Len(t, hash, 64)
}

func TestStorage_PutRejects(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()

	t.Run("empty data", func(t *testing.T) {
		err := storage.Put(ctx, "items/a.png", nil, "image/png")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "object data cannot be empty")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := storage.Put(cancelled, "items/a.png", []byte("x"), "image/png")
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, storage.Exists("items/a.png"))
	})
}

func TestStorage_Missing(t *testing.T) {
	storage := setupTestStorage(t)

	_, err := storage.Get("items/nope.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.False(t, storage.Exists("items/nope.png"))
	assert.NoError(t, storage.Delete("items/nope.png"))
}

func TestStorage_Delete(t *testing.T) {
	storage := setupTestStorage(t)
	key := "items/a.gif"

	require.NoError(t, storage.Put(context.Background(), key, []byte("gif"), "image/gif"))
	require.NoError(t, storage.Delete(key))
	assert.False(t, storage.Exists(key))
}

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "items/2024/a.png", want: "items/2024/a.png"},
		{key: "items//a.png", want: "items/a.png"},
		{key: "items/../a.png", want: "a.png"},
		{key: "", wantErr: true},
		{key: "/etc/passwd", wantErr: true},
		{key: "../secret", wantErr: true},
		{key: "items/../../secret", wantErr: true},
		{key: `items\a.png`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := CleanKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPublicURL(t *testing.T) {
	storage := setupTestStorage(t)

	assert.Equal(t, "http://localhost:8745/objects/items/a.png", storage.PublicURL("items/a.png"))
	assert.Equal(t, "https://cdn.example.com/objects/x.jpg", PublicURL("https://cdn.example.com/", "/x.jpg"))
}
