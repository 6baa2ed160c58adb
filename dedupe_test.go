package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGroupBySize(t *testing.T) {
	files := []FileInfo{
		{Path: "a", Size: 100},
		{Path: "b", Size: 200},
		{Path: "c", Size: 100},
		{Path: "d", Size: 300},
		{Path: "e", Size: 100},
	}

	assert.Equal(t, map[uint64][]string{100: {"a", "c", "e"}}, groupBySize(files))
	assert.Empty(t, groupBySize(nil))
}

func TestPlanDeletions(t *testing.T) {
	bySize := map[uint64][]string{
		100: {"/photos/backup/a.mp4", "/photos/2021/a.mp4", "/photos/backup/b.mp4"},
		500: {"/photos/2020/x.mp4", "/photos/2022/x.mp4"},
	}

	groups := planDeletions(bySize, "/photos/backup")
	require.Len(t, groups, 2)

	// Largest first
	assert.Equal(t, DuplicateGroup{
		Size:   500,
		Keep:   "/photos/2020/x.mp4",
		Delete: []string{"/photos/2022/x.mp4"},
	}, groups[0])
	assert.Equal(t, DuplicateGroup{
		Size:   100,
		Keep:   "/photos/2021/a.mp4",
		Delete: []string{"/photos/backup/a.mp4", "/photos/backup/b.mp4"},
	}, groups[1])
}

func TestPlanDeletionsAllPreferred(t *testing.T) {
	groups := planDeletions(map[uint64][]string{7: {"/p/one", "/p/two"}}, "/p")
	require.Len(t, groups, 1)
	assert.Equal(t, "/p/one", groups[0].Keep)
	assert.Equal(t, []string{"/p/two"}, groups[0].Delete)
}

func TestIsUnder(t *testing.T) {
	assert.True(t, isUnder("/a/b/c.jpg", "/a/b"))
	assert.True(t, isUnder("/a/b/c.jpg", "/a/b/"))
	assert.True(t, isUnder("/a/b", "/a/b"))
	assert.False(t, isUnder("/a/bc/d.jpg", "/a/b"))
	assert.False(t, isUnder("/a/b/c.jpg", ""))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunDedupe(t *testing.T) {
	root := t.TempDir()
	preferred := filepath.Join(root, "backup")
	keep := filepath.Join(root, "2021", "clip.mp4")
	dup := filepath.Join(preferred, "clip.mp4")
	small := filepath.Join(root, "2021", "small.jpg")
	smallDup := filepath.Join(preferred, "small.jpg")
	unique := filepath.Join(root, "2021", "unique.mp4")

	writeFile(t, keep, strings.Repeat("x", 64))
	writeFile(t, dup, strings.Repeat("y", 64))
	writeFile(t, small, "tiny")
	writeFile(t, smallDup, "tiny")
	writeFile(t, unique, strings.Repeat("z", 80))

	reportPath := filepath.Join(t.TempDir(), "report.yaml")
	config := &Config{PreferredDir: preferred, MinSize: 10, Report: reportPath}

	report, err := runDedupe(config, root)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deleted)
	assert.Empty(t, report.Failed)

	assert.FileExists(t, keep)
	assert.NoFileExists(t, dup)
	assert.FileExists(t, small, "files at or below the minimum size are ignored")
	assert.FileExists(t, smallDup)
	assert.FileExists(t, unique)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var saved DedupeReport
	require.NoError(t, yaml.Unmarshal(data, &saved))
	require.Len(t, saved.Groups, 1)
	assert.Equal(t, uint64(64), saved.Groups[0].Size)
	assert.Equal(t, keep, saved.Groups[0].Keep)
	assert.Equal(t, []string{dup}, saved.Groups[0].Delete)
	assert.Equal(t, "10 B", saved.MinSize)
}

func TestRunDedupeDryRun(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.bin")
	b := filepath.Join(root, "b.bin")
	writeFile(t, a, "same size")
	writeFile(t, b, "same-size")

	report, err := runDedupe(&Config{DryRun: true}, root)
	require.NoError(t, err)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, 0, report.Deleted)
	assert.FileExists(t, a)
	assert.FileExists(t, b)
}

func TestRunDedupeMissingDirectory(t *testing.T) {
	root := t.TempDir()

	_, err := runDedupe(&Config{}, filepath.Join(root, "missing"))
	assert.Error(t, err)

	_, err = runDedupe(&Config{PreferredDir: filepath.Join(root, "missing")}, root)
	assert.Error(t, err)
}

func TestRunDedupeVerify(t *testing.T) {
	root := t.TempDir()
	original := filepath.Join(root, "a", "clip.mp4")
	copied := filepath.Join(root, "b", "clip.mp4")
	other := filepath.Join(root, "b", "other.mp4")
	writeFile(t, original, strings.Repeat("x", 32))
	writeFile(t, copied, strings.Repeat("x", 32))
	writeFile(t, other, strings.Repeat("y", 32))

	report, err := runDedupe(&Config{PreferredDir: filepath.Join(root, "b"), Verify: true}, root)
	require.NoError(t, err)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, original, report.Groups[0].Keep)
	assert.Equal(t, []string{copied}, report.Groups[0].Delete)
	assert.Equal(t, []string{other}, report.Groups[0].Differs)
	assert.Equal(t, 1, report.Deleted)

	assert.FileExists(t, original)
	assert.NoFileExists(t, copied)
	assert.FileExists(t, other)
}

func TestRunDedupeVerifyRemote(t *testing.T) {
	_, err := runDedupe(&Config{SSHHost: "nas", Verify: true}, "/volume1")
	assert.Error(t, err)
}
