package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEpisodeName(t *testing.T) {
	testCases := []struct {
		name   string
		season string
		want   string
		ok     bool
	}{
		{
			name:   "安全警长啦咘啦哆.An.Quan.Jing.Zhang.La.Bu.La.Duo.S01E01.2022.2160p.HQ.WEB-DL.AAC.H265-HDSWEB",
			season: "S01",
			want:   "S01E01",
			ok:     true,
		},
		{
			name:   "Gourd.Brothers.1986.E01.Webrip.1080p.x265.10bit.AAC.MNHD-FRDS",
			season: "S01",
			want:   "S01E01",
			ok:     true,
		},
		{
			name:   "超级飞侠 第09集 迷路的小羚羊-超高清 4K",
			season: "S04",
			want:   "S04E09 迷路的小羚羊",
			ok:     true,
		},
		{
			name:   "超级飞侠 第10集 神秘的宝藏_4K",
			season: "S04",
			want:   "S04E10 神秘的宝藏",
			ok:     true,
		},
		{
			name:   "超级飞侠 第11集 大冒险.1080p",
			season: "S04",
			want:   "S04E11 大冒险",
			ok:     true,
		},
		{
			name:   "超级飞侠第12集",
			season: "S04",
			want:   "S04E12",
			ok:     true,
		},
		{
			name:   "3 蒙古国恐龙之旅（上）4K",
			season: "S02",
			want:   "S02E3 蒙古国恐龙之旅（上）",
			ok:     true,
		},
		{
			name:   "1 巴西的消防演习 4K",
			season: "S02",
			want:   "S02E1 巴西的消防演习",
			ok:     true,
		},
		{
			name:   "1 火车救援_4K",
			season: "S02",
			want:   "S02E1 火车救援",
			ok:     true,
		},
		{
			name:   "阿尔卑斯火车救援_4K",
			season: "S02",
		},
		{
			name:   "Show.S02E05.1080p",
			season: "S01",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseEpisodeName(tc.name, tc.season)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRenameEpisodes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "S01")
	for _, name := range []string{
		"Show.S01E01.mkv",
		"Show.S01E01.nfo",
		"Show.S01E01.srt",
		"Show.S01E01-poster.jpg",
		"tvshow.nfo",
		"unknown.mp4",
	} {
		writeFile(t, filepath.Join(dir, name), name)
	}

	require.NoError(t, renameEpisodes(dir, false))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"S01E01.mkv", "Show.S01E01.srt", "unknown.mp4"}, names)

	data, err := os.ReadFile(filepath.Join(dir, "S01E01.mkv"))
	require.NoError(t, err)
	assert.Equal(t, "Show.S01E01.mkv", string(data))
}

func TestRenameEpisodesKeepsExistingTarget(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "S04")
	writeFile(t, filepath.Join(dir, "S04E01.mp4"), "already renamed")
	writeFile(t, filepath.Join(dir, "Show.S04E01.1080p.mp4"), "new download")
	writeFile(t, filepath.Join(dir, "Show.S04E01.1080p.jpg"), "poster")

	require.NoError(t, renameEpisodes(dir, false))

	data, err := os.ReadFile(filepath.Join(dir, "S04E01.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "already renamed", string(data))
	assert.FileExists(t, filepath.Join(dir, "Show.S04E01.1080p.mp4"))
	assert.FileExists(t, filepath.Join(dir, "Show.S04E01.1080p.jpg"))
}

func TestRenameEpisodesDryRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "S01")
	writeFile(t, filepath.Join(dir, "Show.S01E01.mkv"), "")
	writeFile(t, filepath.Join(dir, "Show.S01E01.nfo"), "")

	require.NoError(t, renameEpisodes(dir, true))
	assert.FileExists(t, filepath.Join(dir, "Show.S01E01.mkv"))
	assert.FileExists(t, filepath.Join(dir, "Show.S01E01.nfo"))
	assert.NoFileExists(t, filepath.Join(dir, "S01E01.mkv"))
}

func TestRenameEpisodesMissingDirectory(t *testing.T) {
	assert.Error(t, renameEpisodes(filepath.Join(t.TempDir(), "S09"), false))
}
