package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// synologyMetaDir holds thumbnails and indexes Synology DSM writes next to media
const synologyMetaDir = "@eaDir"

// pruneDirs removes every directory called name below root and returns the
// removed paths. Root itself is never removed.
func pruneDirs(root, name string, dryRun bool) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warnf("Error accessing %s: %v", path, err)
			return nil
		}
		if !d.IsDir() || path == root || d.Name() != name {
			return nil
		}
		matches = append(matches, path)
		return filepath.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	var removed []string
	for _, dir := range matches {
		if dryRun {
			logger.Infof("[DRY RUN] Would delete directory: %s", dir)
			removed = append(removed, dir)
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			logger.Errorf("Cannot delete %s: %v", dir, err)
			continue
		}
		logger.Infof("Deleted directory: %s", dir)
		removed = append(removed, dir)
	}
	return removed, nil
}
