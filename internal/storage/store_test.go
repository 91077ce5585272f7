package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore_SaveAndURL(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "dam", "http://host.example/files")
	require.NoError(t, err)

	uri, err := store.Save([]byte("jpeg bytes"), "cat.jpg")
	require.NoError(t, err)

	assert.Equal(t, "dam/cat.jpg", uri)
	assert.Equal(t, "http://host.example/files/dam/cat.jpg", store.URL(uri))

	data, err := os.ReadFile(filepath.Join(store.BaseDir(), "dam", "cat.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
}

func TestDiskStore_SaveWithoutSubdir(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "", "http://host.example/files")
	require.NoError(t, err)

	uri, err := store.Save([]byte("x"), "cat.jpg")
	require.NoError(t, err)
	assert.Equal(t, "cat.jpg", uri)
}

func TestDiskStore_SaveCollision(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "", "http://host.example/files")
	require.NoError(t, err)

	first, err := store.Save([]byte("one"), "cat.jpg")
	require.NoError(t, err)
	second, err := store.Save([]byte("two"), "cat.jpg")
	require.NoError(t, err)
	third, err := store.Save([]byte("three"), "cat.jpg")
	require.NoError(t, err)

	assert.Equal(t, "cat.jpg", first)
	assert.Equal(t, "cat_0.jpg", second)
	assert.Equal(t, "cat_1.jpg", third)
}

func TestDiskStore_Delete(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "", "http://host.example/files")
	require.NoError(t, err)

	uri, err := store.Save([]byte("x"), "cat.jpg")
	require.NoError(t, err)

	require.NoError(t, store.Delete(uri))
	_, statErr := os.Stat(filepath.Join(store.BaseDir(), "cat.jpg"))
	assert.True(t, os.IsNotExist(statErr))

	// Deleting again is fine.
	assert.NoError(t, store.Delete(uri))
}

func TestDiskStore_DeleteFreesName(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "", "http://host.example/files")
	require.NoError(t, err)

	uri, err := store.Save([]byte("one"), "cat.jpg")
	require.NoError(t, err)
	require.NoError(t, store.Delete(uri))

	// Re-import after delete keeps the plain name instead of cat_0.jpg.
	again, err := store.Save([]byte("two"), "cat.jpg")
	require.NoError(t, err)
	assert.Equal(t, "cat.jpg", again)
}

func TestMungeFilename(t *testing.T) {
	allowed := []string{"jpg", "jpeg", "tif", "png", "gif"}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "cat.jpg", "cat.jpg"},
		{"strips path", "../../etc/passwd.png", "passwd.png"},
		{"strips windows path", `C:\pics\cat.gif`, "cat.gif"},
		{"neutralizes disallowed extension", "run.php", "run.php_"},
		{"neutralizes inner extension", "run.php.jpg", "run.php_.jpg"},
		{"keeps allowed double extension", "cat.jpeg.jpg", "cat.jpeg.jpg"},
		{"collapses whitespace", "my \n cat.jpg", "my cat.jpg"},
		{"empty becomes file", "", "file"},
		{"bare dot becomes file", ".", "file"},
		{"bare slash becomes file", "/", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MungeFilename(tt.input, allowed))
		})
	}
}
