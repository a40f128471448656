package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("a"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "c.docx"), []byte("c"), 0o644))

	files, err := collectFiles(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.txt")}, files)

	files, err = collectFiles(dir, true)
	require.NoError(t, err)
	assert.Len(t, files, 3)
	assert.Contains(t, files, filepath.Join(dir, "nested", "c.docx"))
}

func TestCollectFiles_MissingDir(t *testing.T) {
	_, err := collectFiles(filepath.Join(t.TempDir(), "nope"), false)
	assert.Error(t, err)
}

func TestParseOptions(t *testing.T) {
	parseFlags.noAI, parseFlags.noOCR, parseFlags.noSkills = true, false, true
	t.Cleanup(func() { parseFlags.noAI, parseFlags.noOCR, parseFlags.noSkills = false, false, false })

	opts := parseOptions()
	assert.False(t, opts.EnhanceWithAI)
	assert.True(t, opts.PerformOCR)
	assert.False(t, opts.ExtractTechnologies)
}
