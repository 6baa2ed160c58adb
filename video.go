package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/abema/go-mp4"
	"github.com/google/uuid"
)

// isVideoFile checks if a file is a video based on extension
func isVideoFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4", ".mkv":
		return true
	}
	return false
}

// mp4CreationTime returns the creation time recorded in an MP4 container,
// or the zero time if none is set
func mp4CreationTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return readMP4CreationTime(f)
}

func readMP4CreationTime(r io.ReadSeeker) (time.Time, error) {
	var created time.Time
	_, err := mp4.ReadBoxStructure(r, func(h *mp4.ReadHandle) (any, error) {
		switch h.BoxInfo.Type {
		case mp4.BoxTypeMoov(), mp4.BoxTypeTrak():
			return h.Expand()

		case mp4.BoxTypeMvhd(), mp4.BoxTypeTkhd():
			box, _, err := h.ReadPayload()
			if err != nil {
				return nil, fmt.Errorf("reading %s payload: %w", h.BoxInfo.Type, err)
			}
			var creationTime uint64
			switch b := box.(type) {
			case *mp4.Mvhd: // movie header
				creationTime = b.GetCreationTime()
			case *mp4.Tkhd: // track header, in case mvhd had none
				creationTime = b.GetCreationTime()
			}
			if created.IsZero() && creationTime != 0 {
				created = isoIEC14496Timestamp(creationTime)
			}
		}
		return nil, nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read MP4 boxes: %w", err)
	}
	return created, nil
}

// isoIEC14496Timestamp converts seconds since 1904-01-01 UTC, the MP4 epoch
func isoIEC14496Timestamp(secs uint64) time.Time {
	return time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(secs) * time.Second)
}

// ffmpegCreationTime formats a local time the way ffmpeg's creation_time expects
func ffmpegCreationTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}

// setMP4CreationTime rewrites an MP4 with creation_time metadata. The new file
// is written next to the original and renamed over it once ffmpeg succeeds.
func setMP4CreationTime(ctx context.Context, path string, t time.Time, codec string) error {
	tmpFile := filepath.Join(filepath.Dir(path), "."+uuid.NewString()+".mp4")

	args := []string{
		"-v", "error",
		"-i", path,
		"-map", "0",
		"-metadata", "creation_time=" + ffmpegCreationTime(t),
	}
	if codec == "" || codec == "copy" {
		args = append(args, "-c", "copy")
	} else {
		args = append(args, "-c", "copy", "-c:v", codec)
	}
	args = append(args, "-y", tmpFile)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	logger.Debug("Running ffmpeg", "cmd", cmd.String())
	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to set creation time: %w: %s", err, out)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// thumbPath returns where the thumbnail for a video is written
func thumbPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "-thumb.jpg"
}

// captureFrame saves a single frame of a video at the given position as JPG
func captureFrame(ctx context.Context, videoPath, at, outputPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-ss", at,
		"-i", videoPath,
		"-frames:v", "1",
		"-an", // Disable audio
		"-y",  // Overwrite output files without asking
		outputPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to capture frame: %w: %s", err, out)
	}
	return nil
}
