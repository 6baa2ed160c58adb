package main

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"media-tidy/shootdate"
)

// exifDateFields are the date/time tags written together to keep them consistent
var exifDateFields = []string{
	"DateTimeOriginal",
	"CreateDate",
	"ModifyDate",
}

var errExiftoolNotFound = errors.New("exiftool not found in PATH and no usable docker image")

// Exiftool writes EXIF dates with a native exiftool or its docker image
type Exiftool struct {
	docker bool
}

// FindExiftool checks if exiftool is installed (native or Docker)
func FindExiftool(ctx context.Context) (*Exiftool, error) {
	// First check for native exiftool
	if _, err := exec.LookPath("exiftool"); err == nil {
		return &Exiftool{}, nil
	}

	// Check if Docker is available
	if _, err := exec.LookPath("docker"); err != nil {
		return nil, errExiftoolNotFound
	}

	// Test if we can use the exiftool Docker image
	if exec.CommandContext(ctx, "docker", "image", "inspect", "exiftool/exiftool").Run() == nil {
		return &Exiftool{docker: true}, nil
	}

	// Try to pull the image
	logger.Info("Pulling exiftool Docker image (this may take a moment)...")
	if exec.CommandContext(ctx, "docker", "pull", "exiftool/exiftool").Run() == nil {
		return &Exiftool{docker: true}, nil
	}

	return nil, errExiftoolNotFound
}

// WriteDate sets DateTimeOriginal, CreateDate and ModifyDate on a photo
func (t *Exiftool) WriteDate(ctx context.Context, filePath string, date time.Time) error {
	args := []string{"-overwrite_original"}
	for _, field := range exifDateFields {
		args = append(args, fmt.Sprintf("-%s=%s", field, date.Format(shootdate.ExifLayout)))
	}

	var cmd *exec.Cmd
	if t.docker {
		// Get absolute path and directory
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}

		dockerArgs := []string{"run", "--rm",
			"-v", fmt.Sprintf("%s:/work", filepath.Dir(absPath)),
			"exiftool/exiftool",
		}
		dockerArgs = append(dockerArgs, args...)
		dockerArgs = append(dockerArgs, "/work/"+filepath.Base(absPath))
		cmd = exec.CommandContext(ctx, "docker", dockerArgs...)
	} else {
		cmd = exec.CommandContext(ctx, "exiftool", append(args, filePath)...)
	}

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to update EXIF dates: %w: %s", err, out)
	}
	return nil
}
