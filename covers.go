package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// seasonPosterName returns the Jellyfin poster name for a season directory,
// "S01" becomes "season01-poster.jpg"
func seasonPosterName(seasonDir string) string {
	return "season" + strings.ReplaceAll(seasonDir, "S", "") + "-poster.jpg"
}

// firstJPG returns the first .jpg file of dir in natural name order
func firstJPG(dir string) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, err
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.ToLower(filepath.Ext(e.Name())) == ".jpg" {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", false, nil
	}
	sort.Sort(natural.StringSlice(names))
	return filepath.Join(dir, names[0]), true, nil
}

// copySeasonCovers copies the first image of every season directory under
// root to root as that season's poster. It returns the posters written.
func copySeasonCovers(root string, dryRun bool) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}

	var posters []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == synologyMetaDir {
			continue
		}
		seasonDir := filepath.Join(root, e.Name())
		src, ok, err := firstJPG(seasonDir)
		if err != nil {
			logger.Warnf("Cannot read %s: %v", seasonDir, err)
			continue
		}
		if !ok {
			logger.Debugf("No JPG found in %s", seasonDir)
			continue
		}

		dst := filepath.Join(root, seasonPosterName(e.Name()))
		if dryRun {
			logger.Infof("[DRY RUN] Would copy season cover: %s -> %s", src, dst)
			posters = append(posters, dst)
			continue
		}
		if err := copyFile(src, dst); err != nil {
			logger.Errorf("Cannot copy season cover %s: %v", src, err)
			continue
		}
		logger.Infof("Season cover copied: %s -> %s", src, dst)
		posters = append(posters, dst)
	}
	return posters, nil
}

// copyFile copies src to dst, replacing dst
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
