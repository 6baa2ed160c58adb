package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", synologyMetaDir, "thumb.jpg"), "x")
	writeFile(t, filepath.Join(root, "b", "c", synologyMetaDir, synologyMetaDir, "deep"), "x")
	writeFile(t, filepath.Join(root, "keep", "photo.jpg"), "x")
	writeFile(t, filepath.Join(root, "d", synologyMetaDir+".txt"), "x")

	removed, err := pruneDirs(root, synologyMetaDir, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a", synologyMetaDir),
		filepath.Join(root, "b", "c", synologyMetaDir),
	}, removed)

	assert.NoDirExists(t, filepath.Join(root, "a", synologyMetaDir))
	assert.NoDirExists(t, filepath.Join(root, "b", "c", synologyMetaDir))
	assert.FileExists(t, filepath.Join(root, "keep", "photo.jpg"))
	assert.FileExists(t, filepath.Join(root, "d", synologyMetaDir+".txt"))
}

func TestPruneDirsDryRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", ".thumbs", "x"), "x")

	removed, err := pruneDirs(root, ".thumbs", true)
	require.NoError(t, err)
	assert.Len(t, removed, 1)
	assert.DirExists(t, filepath.Join(root, "a", ".thumbs"))
}

func TestPruneDirsKeepsRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), synologyMetaDir)
	writeFile(t, filepath.Join(root, "file"), "x")

	removed, err := pruneDirs(root, synologyMetaDir, false)
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.DirExists(t, root)
}
