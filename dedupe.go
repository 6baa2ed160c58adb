package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// FileInfo is a file path and its size in bytes
type FileInfo struct {
	Path string
	Size uint64
}

// DuplicateGroup is a set of files sharing the same size
type DuplicateGroup struct {
	Size    uint64   `yaml:"size"`
	Keep    string   `yaml:"keep"`
	Delete  []string `yaml:"delete"`
	Differs []string `yaml:"differs,omitempty"` // same size, other content
}

// DedupeReport is written to --report
type DedupeReport struct {
	Directory    string           `yaml:"directory"`
	PreferredDir string           `yaml:"preferred_dir"`
	MinSize      string           `yaml:"min_size"`
	DryRun       bool             `yaml:"dry_run"`
	Groups       []DuplicateGroup `yaml:"groups"`
	Deleted      int              `yaml:"deleted"`
	Failed       []string         `yaml:"failed,omitempty"`
}

// findLargeFiles lists regular files under dir strictly larger than minSize
func findLargeFiles(dir string, minSize uint64) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logger.Warnf("Cannot process %s: %v", path, err)
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if size := uint64(info.Size()); size > minSize {
			files = append(files, FileInfo{Path: path, Size: size})
		}
		return nil
	})
	return files, err
}

// groupBySize returns the sizes shared by more than one file, largest first,
// each with its files in input order
func groupBySize(files []FileInfo) map[uint64][]string {
	bySize := make(map[uint64][]string)
	for _, f := range files {
		bySize[f.Size] = append(bySize[f.Size], f.Path)
	}
	for size, paths := range bySize {
		if len(paths) < 2 {
			delete(bySize, size)
		}
	}
	return bySize
}

// planDeletions decides which file of each duplicate group survives. Files
// outside preferredDir are kept first, so copies inside it are deleted.
func planDeletions(bySize map[uint64][]string, preferredDir string) []DuplicateGroup {
	sizes := make([]uint64, 0, len(bySize))
	for size := range bySize {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] > sizes[j] })

	groups := make([]DuplicateGroup, 0, len(sizes))
	for _, size := range sizes {
		paths := append([]string(nil), bySize[size]...)
		sort.SliceStable(paths, func(i, j int) bool {
			return !isUnder(paths[i], preferredDir) && isUnder(paths[j], preferredDir)
		})
		groups = append(groups, DuplicateGroup{
			Size:   size,
			Keep:   paths[0],
			Delete: paths[1:],
		})
	}
	return groups
}

// isUnder reports whether path is dir or inside it
func isUnder(path, dir string) bool {
	if dir == "" {
		return false
	}
	path = filepath.Clean(path)
	dir = filepath.Clean(dir)
	return path == dir || strings.HasPrefix(path, strings.TrimSuffix(dir, string(filepath.Separator))+string(filepath.Separator))
}

// fileHash returns the BLAKE3 digest of a file's content
func fileHash(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// verifyContent moves every planned deletion whose content differs from the
// kept file to Differs. Files that cannot be hashed are not deleted either.
func verifyContent(groups []DuplicateGroup) []DuplicateGroup {
	for i := range groups {
		g := &groups[i]
		want, err := fileHash(g.Keep)
		if err != nil {
			logger.Warnf("Cannot hash %s, keeping its group: %v", g.Keep, err)
			g.Differs = append(g.Differs, g.Delete...)
			g.Delete = nil
			continue
		}

		var same []string
		for _, path := range g.Delete {
			got, err := fileHash(path)
			if err != nil || !bytes.Equal(got, want) {
				logger.Infof("Same size but different content, keeping: %s", path)
				g.Differs = append(g.Differs, path)
				continue
			}
			same = append(same, path)
		}
		g.Delete = same
	}
	return groups
}

// deleteDuplicates removes every planned file with remove and records the
// outcome in the report
func deleteDuplicates(report *DedupeReport, remove func(string) error) {
	for _, group := range report.Groups {
		for _, path := range group.Delete {
			if report.DryRun {
				logger.Infof("[DRY RUN] Would delete: %s", path)
				continue
			}
			if err := remove(path); err != nil {
				logger.Errorf("Cannot delete %s: %v", path, err)
				report.Failed = append(report.Failed, path)
				continue
			}
			logger.Infof("Deleted: %s", path)
			report.Deleted++
		}
		logger.Infof("Kept: %s (%s)", group.Keep, humanize.IBytes(group.Size))
	}
}

// writeReport saves the dedupe report as YAML
func writeReport(path string, report *DedupeReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// runDedupe finds same-size large files under dir and deletes all but one
func runDedupe(config *Config, dir string) (*DedupeReport, error) {
	report := &DedupeReport{
		Directory:    dir,
		PreferredDir: config.PreferredDir,
		MinSize:      humanize.Bytes(config.MinSize),
		DryRun:       config.DryRun,
	}

	var (
		files  []FileInfo
		remove func(string) error
		err    error
	)
	if config.SSHHost != "" {
		if config.Verify {
			return nil, errors.New("--verify is not supported with --ssh-host")
		}
		client, err := NewSSHClient(config.SSHHost)
		if err != nil {
			return nil, fmt.Errorf("failed to create SSH client: %w", err)
		}
		defer client.Close()

		if files, err = client.FileSizes(dir, config.MinSize); err != nil {
			return nil, err
		}
		remove = client.RemoveFile
	} else {
		for _, d := range []string{dir, config.PreferredDir} {
			if d == "" {
				continue
			}
			if info, err := os.Stat(d); err != nil || !info.IsDir() {
				return nil, fmt.Errorf("invalid directory: %s", d)
			}
		}
		if files, err = findLargeFiles(dir, config.MinSize); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		remove = os.Remove
	}

	report.Groups = planDeletions(groupBySize(files), config.PreferredDir)
	if config.Verify {
		report.Groups = verifyContent(report.Groups)
	}
	if len(report.Groups) == 0 {
		logger.Infof("No duplicate files larger than %s found", report.MinSize)
	} else {
		logger.Infof("Found %d groups of duplicate files, deleting...", len(report.Groups))
		deleteDuplicates(report, remove)
	}

	if config.Report != "" {
		if err := writeReport(config.Report, report); err != nil {
			return report, err
		}
	}
	return report, nil
}
