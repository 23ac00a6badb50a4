package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskStoreSave(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	content := []byte("fake image bytes")

	ref, saveErr := store.Save(t.Context(), "image/jpeg", bytes.NewReader(content))
	require.NoError(t, saveErr)
	require.True(t, strings.HasSuffix(ref, ".jpg"))

	saved, readErr := os.ReadFile(filepath.Join(store.dir, ref))
	require.NoError(t, readErr)
	require.Equal(t, content, saved)
}

func TestDiskStoreSaveUnsupportedType(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	_, saveErr := store.Save(t.Context(), "application/pdf", bytes.NewReader(nil))
	require.Error(t, saveErr)
}

func TestDiskStoreRemove(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ref, saveErr := store.Save(t.Context(), "image/webp", bytes.NewReader([]byte("a")))
	require.NoError(t, saveErr)

	require.NoError(t, store.Remove(t.Context(), ref))
	_, statErr := os.Stat(filepath.Join(store.dir, ref))
	require.True(t, os.IsNotExist(statErr))

	// Повторное удаление и удаление несуществующей ссылки проходят тихо.
	require.NoError(t, store.Remove(t.Context(), ref))
	require.NoError(t, store.Remove(t.Context(), "missing.png"))
}

func TestDiskStoreRefsAreUnique(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Save(t.Context(), "image/png", bytes.NewReader([]byte("a")))
	require.NoError(t, err)
	second, err := store.Save(t.Context(), "image/png", bytes.NewReader([]byte("b")))
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}
