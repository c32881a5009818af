package filestorage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	base := t.TempDir()
	ls, err := NewLocalStorage(base)
	require.NoError(t, err)

	stored, err := ls.Save("ingestions", "Attendance.XLSX", strings.NewReader("payload"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, "ingestions/"))
	assert.True(t, strings.HasSuffix(stored, ".xlsx"))

	rc, err := ls.Open(stored)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, ls.DeleteFile(stored))
	_, err = os.Stat(filepath.Join(base, filepath.FromSlash(stored)))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, ls.DeleteFile(stored))
}

func TestLocalStorage_StaysInsideBasePath(t *testing.T) {
	base := t.TempDir()
	ls, err := NewLocalStorage(base)
	require.NoError(t, err)

	stored, err := ls.Save("../../escape", "x.csv", strings.NewReader("a"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, "escape/"))

	_, err = ls.Open("/")
	assert.Error(t, err)
}
