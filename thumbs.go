package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const defaultThumbAt = "00:01:41"

// findVideos lists the videos below dir, skipping Synology metadata
func findVideos(dir string) ([]string, error) {
	var videos []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warnf("Error accessing %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			if d.Name() == synologyMetaDir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && isVideoFile(path) {
			videos = append(videos, path)
		}
		return nil
	})
	return videos, err
}

// captureThumbnails writes a thumbnail next to every video below dir. It
// returns how many thumbnails were captured.
func captureThumbnails(ctx context.Context, config *Config, dir string) (int, error) {
	videos, err := findVideos(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	logger.Infof("Found %d videos", len(videos))

	at := config.ThumbAt
	if at == "" {
		at = defaultThumbAt
	}

	captured := 0
	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			return captured, err
		}

		out := thumbPath(video)
		if !config.Overwrite {
			if _, err := os.Stat(out); err == nil {
				logger.Debugf("Thumbnail already exists: %s", out)
				continue
			}
		}

		if config.DryRun {
			logger.Infof("[DRY RUN] Would capture frame at %s: %s", at, out)
			captured++
			continue
		}
		if err := captureFrame(ctx, video, at, out); err != nil {
			logger.Errorf("%s: %v", video, err)
			continue
		}
		logger.Infof("Frame captured at %s and saved to %s", at, out)
		captured++
	}
	return captured, nil
}
