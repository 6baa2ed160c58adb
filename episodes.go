package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

var (
	dottedEpisodeRe  = regexp.MustCompile(`\.(E\d+)\.`)
	chineseEpisodeRe = regexp.MustCompile(`第(\d+)集`)
	leadingNumberRe  = regexp.MustCompile(`^(\d+) (.+)$`)

	// Titles follow "第N集 " and end at the first of these separators, tried in order
	chineseTitleRes = []*regexp.Regexp{
		regexp.MustCompile(`第\d+集 (.+?)-`),
		regexp.MustCompile(`第\d+集 (.+?)_`),
		regexp.MustCompile(`第\d+集 (.+?)\.`),
	}
)

var subtitleExts = map[string]bool{".srt": true, ".ass": true}

// parseEpisodeName maps a video base name to a Jellyfin style episode name
// such as "S04E09" or "S04E09 title"
func parseEpisodeName(name, season string) (string, bool) {
	// Show.Name.S01E01.2160p.WEB-DL
	seasonRe := regexp.MustCompile("(" + regexp.QuoteMeta(season) + `E\d+)`)
	if m := seasonRe.FindStringSubmatch(name); m != nil {
		return m[1], true
	}

	// Show.1986.E01.1080p
	if m := dottedEpisodeRe.FindStringSubmatch(name); m != nil {
		return season + m[1], true
	}

	// 超级飞侠 第09集 迷路的小羚羊-超高清 4K
	if m := chineseEpisodeRe.FindStringSubmatch(name); m != nil {
		episode := season + "E" + m[1]
		for _, re := range chineseTitleRes {
			if t := re.FindStringSubmatch(name); t != nil {
				return episode + " " + t[1], true
			}
		}
		return episode, true
	}

	// 1 巴西的消防演习 4K
	if m := leadingNumberRe.FindStringSubmatch(name); m != nil {
		title := strings.ReplaceAll(m[2], "_4K", "")
		title = strings.TrimSpace(strings.ReplaceAll(title, "4K", ""))
		return season + "E" + m[1] + " " + title, true
	}

	return "", false
}

// renameEpisodes renames the videos of a season directory and removes the
// files that belong to them, keeping subtitles. The season is the name of dir.
func renameEpisodes(dir string, dryRun bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	sort.Sort(natural.StringSlice(files))

	season := filepath.Base(filepath.Clean(dir))
	gone := make(map[string]bool)

	remove := func(name string) {
		path := filepath.Join(dir, name)
		gone[name] = true
		if dryRun {
			logger.Infof("[DRY RUN] Would delete: %s", path)
			return
		}
		if err := os.Remove(path); err != nil {
			logger.Errorf("Cannot delete %s: %v", path, err)
			return
		}
		logger.Infof("Deleted: %s", path)
	}

	for _, file := range files {
		if gone[file] {
			continue
		}
		ext := filepath.Ext(file)
		lowerExt := strings.ToLower(ext)

		if lowerExt == ".nfo" {
			remove(file)
			continue
		}
		if !isVideoFile(file) {
			continue
		}

		base := strings.TrimSuffix(file, ext)
		parsed, ok := parseEpisodeName(base, season)
		if !ok {
			logger.Infof("Skipped: %s", filepath.Join(dir, file))
			continue
		}

		oldPath := filepath.Join(dir, file)
		newPath := filepath.Join(dir, parsed+ext)
		if newPath != oldPath {
			if _, err := os.Stat(newPath); err == nil {
				logger.Warnf("Skipped: %s already exists, not renaming %s", newPath, oldPath)
				continue
			}
		}

		for _, other := range files {
			if other == file || gone[other] {
				continue
			}
			otherExt := filepath.Ext(other)
			if strings.HasPrefix(strings.TrimSuffix(other, otherExt), base) && !subtitleExts[strings.ToLower(otherExt)] {
				remove(other)
			}
		}

		if oldPath == newPath {
			continue
		}
		if dryRun {
			logger.Infof("[DRY RUN] Would rename: %s -> %s", oldPath, newPath)
			continue
		}
		if err := os.Rename(oldPath, newPath); err != nil {
			logger.Errorf("Cannot rename %s: %v", oldPath, err)
			continue
		}
		logger.Infof("Renamed: %s -> %s", oldPath, newPath)
	}
	return nil
}
