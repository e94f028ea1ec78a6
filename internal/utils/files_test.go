package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.md")
	require.NoError(t, SafeWriteFile(p, []byte("one")))
	require.NoError(t, SafeWriteFile(p, []byte("two")))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))
	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tx.summary.md")
	assert.Equal(t, p, UniquePath(p))
	require.NoError(t, os.WriteFile(p, nil, 0o644))
	second := UniquePath(p)
	assert.Equal(t, filepath.Join(dir, "tx.summary__2.md"), second)
	require.NoError(t, os.WriteFile(second, nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "tx.summary__3.md"), UniquePath(p))
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(b))
}
