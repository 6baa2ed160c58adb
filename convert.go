package main

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

const jpegQuality = 95

// pngToJPG converts a PNG to a JPG next to it and removes the PNG. The
// returned path is the new JPG.
func pngToJPG(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PNG: %w", err)
	}
	img, err := png.Decode(in)
	in.Close()
	if err != nil {
		return "", fmt.Errorf("failed to decode PNG: %w", err)
	}

	// Flatten transparency onto white, JPG has no alpha channel
	flat := image.NewRGBA(img.Bounds())
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Over)

	jpgPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".jpg"
	if _, err := os.Stat(jpgPath); err == nil {
		return "", fmt.Errorf("%s already exists", jpgPath)
	}
	out, err := os.Create(jpgPath)
	if err != nil {
		return "", fmt.Errorf("failed to create JPG: %w", err)
	}
	if err := jpeg.Encode(out, flat, &jpeg.Options{Quality: jpegQuality}); err != nil {
		out.Close()
		os.Remove(jpgPath)
		return "", fmt.Errorf("failed to encode JPG: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to write JPG: %w", err)
	}

	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to remove PNG: %w", err)
	}
	return jpgPath, nil
}
