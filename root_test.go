package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentIDs(t *testing.T) {
	ids, err := parseDocumentIDs([]string{"1", "42", "9000"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 42, 9000}, ids)
}

func TestParseDocumentIDsRejectsBadInput(t *testing.T) {
	for _, arg := range []string{"abc", "0", "-3", "1.5", ""} {
		_, err := parseDocumentIDs([]string{arg})
		assert.Error(t, err, "arg %q", arg)
	}
}

func TestWantsUpload(t *testing.T) {
	dir := t.TempDir()

	regular := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(regular, []byte("data"), 0o644))
	assert.True(t, wantsUpload(regular))

	hidden := filepath.Join(dir, ".swapfile")
	require.NoError(t, os.WriteFile(hidden, []byte("data"), 0o644))
	assert.False(t, wantsUpload(hidden))

	partial := filepath.Join(dir, "download.part")
	require.NoError(t, os.WriteFile(partial, []byte("data"), 0o644))
	assert.False(t, wantsUpload(partial))

	assert.False(t, wantsUpload(filepath.Join(dir, "missing.txt")))
	assert.False(t, wantsUpload(dir))
}
