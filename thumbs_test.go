package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindVideos(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "S01", "S01E01.mp4"), "")
	writeFile(t, filepath.Join(root, "S01", "S01E02.MKV"), "")
	writeFile(t, filepath.Join(root, "S01", "S01E01-thumb.jpg"), "")
	writeFile(t, filepath.Join(root, "S01", synologyMetaDir, "S01E01.mp4"), "")

	videos, err := findVideos(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "S01", "S01E01.mp4"),
		filepath.Join(root, "S01", "S01E02.MKV"),
	}, videos)
}

func TestCaptureThumbnailsDryRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "S01E01.mp4"), "")
	writeFile(t, filepath.Join(root, "S01E01-thumb.jpg"), "")
	writeFile(t, filepath.Join(root, "S01E02.mp4"), "")

	n, err := captureThumbnails(context.Background(), &Config{DryRun: true}, root)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "existing thumbnails are skipped")

	n, err = captureThumbnails(context.Background(), &Config{DryRun: true, Overwrite: true}, root)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCaptureThumbnailsCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "S01E01.mp4"), "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := captureThumbnails(ctx, &Config{DryRun: true}, root)
	assert.ErrorIs(t, err, context.Canceled)
}
