package filestorage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStorage_SaveAndDelete(t *testing.T) {
	base := t.TempDir()
	s, err := NewLocalFileStorage(base)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 8, 21, 10, 0, 0, 0, time.UTC) }

	path, err := s.Save(strings.NewReader("hello"), "Photo.JPG", "complaints")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "complaints/2024/08/21/"))
	assert.True(t, strings.HasSuffix(path, ".jpg"))

	content, err := os.ReadFile(filepath.Join(base, path))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	require.NoError(t, s.Delete(URLPrefix+path))
	_, err = os.Stat(filepath.Join(base, path))
	assert.True(t, os.IsNotExist(err))

	// повторное удаление не ошибка
	assert.NoError(t, s.Delete(path))
}

func TestLocalFileStorage_DeleteStaysInsideBase(t *testing.T) {
	base := t.TempDir()
	outside := filepath.Join(filepath.Dir(base), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	t.Cleanup(func() { _ = os.Remove(outside) })

	s, err := NewLocalFileStorage(base)
	require.NoError(t, err)
	require.NoError(t, s.Delete("../keep.txt"))

	_, err = os.Stat(outside)
	assert.NoError(t, err)
}
