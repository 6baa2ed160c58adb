package main

import (
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	// Fully transparent
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestPNGToJPG(t *testing.T) {
	dir := t.TempDir()
	pngPath := filepath.Join(dir, "Screenshot_20210512-214815.png")
	writePNG(t, pngPath)

	jpgPath, err := pngToJPG(pngPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Screenshot_20210512-214815.jpg"), jpgPath)
	assert.NoFileExists(t, pngPath)

	f, err := os.Open(jpgPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())

	// Transparent pixels are flattened onto white
	r, g, b, _ := img.At(4, 4).RGBA()
	assert.Greater(t, r, uint32(0xf000))
	assert.Greater(t, g, uint32(0xf000))
	assert.Greater(t, b, uint32(0xf000))
}

func TestPNGToJPGKeepsExistingJPG(t *testing.T) {
	dir := t.TempDir()
	pngPath := filepath.Join(dir, "a.png")
	writePNG(t, pngPath)
	writeFile(t, filepath.Join(dir, "a.jpg"), "existing")

	_, err := pngToJPG(pngPath)
	assert.Error(t, err)
	assert.FileExists(t, pngPath)
}

func TestPNGToJPGInvalid(t *testing.T) {
	dir := t.TempDir()
	pngPath := filepath.Join(dir, "broken.png")
	writeFile(t, pngPath, "not a png")

	_, err := pngToJPG(pngPath)
	assert.Error(t, err)
	assert.FileExists(t, pngPath)
	assert.NoFileExists(t, filepath.Join(dir, "broken.jpg"))
}
