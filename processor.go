package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"media-tidy/shootdate"
)

// DateProcessor infers shooting dates and writes them into photos and videos
type DateProcessor struct {
	config       *Config
	engine       *shootdate.Engine
	exiftool     *Exiftool
	sshClient    *SSHClient
	stats        *ProcessStats
	startTime    time.Time
	lastProgress time.Time
	statsMutex   sync.Mutex
}

// ProcessStats tracks statistics during processing
type ProcessStats struct {
	TotalFiles      int
	ProcessedFiles  int
	SkippedFiles    int
	ErrorFiles      int
	UpdatedMetadata int
	ConvertedFiles  int
}

// NewDateProcessor creates a new date processor
func NewDateProcessor(config *Config) *DateProcessor {
	return &DateProcessor{
		config: config,
		engine: &shootdate.Engine{},
		stats:  &ProcessStats{},
	}
}

// Process walks dir and sets the shooting date of every file it can date
func (p *DateProcessor) Process(ctx context.Context, dir string) error {
	p.startTime = time.Now()
	p.lastProgress = time.Now()

	// Check if exiftool is available
	if !p.config.DryRun {
		tool, err := FindExiftool(ctx)
		if err != nil {
			logger.Warn("exiftool not found. Photo EXIF dates will not be updated.")
			logger.Warn("Install exiftool: https://exiftool.org/")
		}
		p.exiftool = tool
	}

	if p.config.SSHHost != "" {
		client, err := NewSSHClient(p.config.SSHHost)
		if err != nil {
			return fmt.Errorf("failed to create SSH client: %w", err)
		}
		p.sshClient = client
		defer p.sshClient.Close()
	}

	var err error
	if p.sshClient != nil {
		err = p.walkRemoteDirectory(ctx, dir)
	} else {
		err = p.walkLocalDirectory(ctx, dir)
	}
	if err != nil {
		return fmt.Errorf("failed to process directory: %w", err)
	}

	p.printProgress(true)
	p.printStats()
	return nil
}

// walkLocalDirectory collects files under dir and processes them with the worker pool
func (p *DateProcessor) walkLocalDirectory(ctx context.Context, dir string) error {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logger.Warnf("Error accessing %s: %v", path, err)
			return nil
		}

		if info.IsDir() {
			// Skip @eaDir directories (Synology metadata)
			if info.Name() == synologyMetaDir {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return p.runWorkers(ctx, files, p.processFile)
}

// walkRemoteDirectory lists files over SSH and processes them with the worker pool
func (p *DateProcessor) walkRemoteDirectory(ctx context.Context, dir string) error {
	files, err := p.sshClient.WalkDirectory(dir)
	if err != nil {
		return err
	}
	return p.runWorkers(ctx, files, p.processRemoteFile)
}

// runWorkers feeds files to config.Workers goroutines and counts failures
func (p *DateProcessor) runWorkers(ctx context.Context, files []string, process func(context.Context, string) error) error {
	p.stats.TotalFiles = len(files)
	logger.Infof("Found %d files to process with %d workers", p.stats.TotalFiles, p.config.Workers)

	jobs := make(chan string, len(files))
	results := make(chan error, len(files))
	var wg sync.WaitGroup

	// Start workers
	for w := 0; w < p.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if ctx.Err() != nil {
					results <- ctx.Err()
					continue
				}
				err := process(ctx, path)
				if err != nil {
					logger.Errorf("%s: %v", path, err)
				}
				results <- err
			}
		}()
	}

	// Send jobs
	for _, path := range files {
		jobs <- path
	}
	close(jobs)

	// Collect results
	go func() {
		wg.Wait()
		close(results)
	}()

	for err := range results {
		if err != nil {
			p.count(func(s *ProcessStats) { s.ErrorFiles++ })
		}
		// Print progress every 100 files or every 10 seconds
		p.printProgress(false)
	}

	return ctx.Err()
}

// count updates the stats under the stats lock
func (p *DateProcessor) count(update func(*ProcessStats)) {
	p.statsMutex.Lock()
	defer p.statsMutex.Unlock()
	update(p.stats)
}

// readMetadata returns embedded metadata or nil, logging reader failures
func (p *DateProcessor) readMetadata(path string) *shootdate.Metadata {
	meta, err := ReadEmbeddedMetadata(path)
	if err != nil {
		if !errors.Is(err, shootdate.ErrNoMetadata) {
			logger.Warnf("Failed to read metadata of %s: %v", path, err)
		}
		return nil
	}
	return meta
}

// infer runs the engine and converts the result to a time
func (p *DateProcessor) infer(name string, meta *shootdate.Metadata) (time.Time, bool) {
	res, ok := p.engine.Infer(name, meta)
	if !ok {
		logger.Debugf("Skipping (no date found): %s", name)
		return time.Time{}, false
	}

	ts, err := shootdate.ParseTimestamp(res.Timestamp, time.Local)
	if err != nil {
		logger.Warnf("Skipping %s: %s gave unusable timestamp %q", name, res.Rule, res.Timestamp)
		return time.Time{}, false
	}

	logger.Debugf("%s -> %s (%s)", name, res.Timestamp, res.Rule)
	return ts, true
}

// processFile dates a single local file
func (p *DateProcessor) processFile(ctx context.Context, filePath string) error {
	if p.config.Verbose {
		logger.Debugf("Processing: %s", filePath)
	}

	ts, ok := p.infer(filePath, p.readMetadata(filePath))
	if !ok {
		p.count(func(s *ProcessStats) { s.SkippedFiles++ })
		return nil
	}

	if p.config.DryRun {
		logger.Infof("[DRY RUN] Would set shooting time: %s -> %s", filePath, ts.Format(shootdate.Layout))
		p.count(func(s *ProcessStats) { s.ProcessedFiles++ })
		return nil
	}

	_, _, err := p.applyDate(ctx, filePath, ts)
	return err
}

// processRemoteFile downloads a file, dates it and uploads it back
func (p *DateProcessor) processRemoteFile(ctx context.Context, remotePath string) error {
	if p.config.Verbose {
		logger.Debugf("Processing remote: %s", remotePath)
	}

	if p.config.DryRun {
		// Only the name is available without downloading
		ts, ok := p.infer(remotePath, nil)
		if !ok {
			p.count(func(s *ProcessStats) { s.SkippedFiles++ })
			return nil
		}
		logger.Infof("[DRY RUN] Would set shooting time: %s -> %s", remotePath, ts.Format(shootdate.Layout))
		p.count(func(s *ProcessStats) { s.ProcessedFiles++ })
		return nil
	}

	// Download to temporary file
	tempDir, err := os.MkdirTemp("", "media-tidy-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	tempPath := filepath.Join(tempDir, filepath.Base(remotePath))
	if err := p.sshClient.DownloadFile(remotePath, tempPath); err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}

	ts, ok := p.infer(remotePath, p.readMetadata(tempPath))
	if !ok {
		p.count(func(s *ProcessStats) { s.SkippedFiles++ })
		return nil
	}

	finalPath, changed, err := p.applyDate(ctx, tempPath, ts)
	if err != nil || !changed {
		return err
	}

	remoteFinal := filepath.Join(filepath.Dir(remotePath), filepath.Base(finalPath))
	if err := p.sshClient.UploadFile(finalPath, remoteFinal); err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	if remoteFinal != remotePath {
		if err := p.sshClient.RemoveFile(remotePath); err != nil {
			return fmt.Errorf("failed to remove converted file: %w", err)
		}
	}
	return nil
}

// applyDate writes ts into the file's metadata. It returns the final path of
// the file (PNG files may become JPG) and whether the file was changed.
func (p *DateProcessor) applyDate(ctx context.Context, filePath string, ts time.Time) (string, bool, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	changed := false

	if ext == ".png" && p.config.PNGToJPG {
		jpgPath, err := pngToJPG(filePath)
		if err != nil {
			return filePath, false, err
		}
		logger.Infof("Converted PNG to JPG: %s", jpgPath)
		p.count(func(s *ProcessStats) { s.ConvertedFiles++ })
		filePath, ext, changed = jpgPath, ".jpg", true
	}

	switch {
	case ext == ".mp4":
		existing, err := mp4CreationTime(filePath)
		if err != nil {
			return filePath, changed, err
		}
		if !existing.IsZero() {
			logger.Debugf("Creation time already exists: %s %s", existing, filePath)
			p.count(func(s *ProcessStats) { s.SkippedFiles++ })
			return filePath, changed, nil
		}
		if err := setMP4CreationTime(ctx, filePath, ts, p.config.VideoCodec); err != nil {
			return filePath, changed, err
		}
		logger.Infof("Added creation time: %s %s", ts.Format(shootdate.ExifLayout), filePath)

	case isImageFile(filePath):
		if hasValidDateTimeOriginal(filePath) {
			logger.Debugf("Shooting time already exists: %s", filePath)
			p.count(func(s *ProcessStats) { s.SkippedFiles++ })
			return filePath, changed, nil
		}
		if p.exiftool == nil {
			return filePath, changed, errExiftoolNotFound
		}
		if err := p.exiftool.WriteDate(ctx, filePath, ts); err != nil {
			return filePath, changed, err
		}
		logger.Infof("Added shooting time: %s %s", ts.Format(shootdate.ExifLayout), filePath)

	default:
		logger.Debugf("Unsupported file format: %s", filePath)
		p.count(func(s *ProcessStats) { s.SkippedFiles++ })
		return filePath, changed, nil
	}

	p.count(func(s *ProcessStats) {
		s.UpdatedMetadata++
		s.ProcessedFiles++
	})
	return filePath, true, nil
}

// isImageFile checks if a file is an image based on extension
func isImageFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	imageExts := []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".heic", ".heif"}
	for _, imgExt := range imageExts {
		if ext == imgExt {
			return true
		}
	}
	return false
}

// printProgress prints progress updates periodically
func (p *DateProcessor) printProgress(force bool) {
	p.statsMutex.Lock()
	defer p.statsMutex.Unlock()

	now := time.Now()
	timeSinceLastProgress := now.Sub(p.lastProgress)
	processed := p.stats.ProcessedFiles + p.stats.SkippedFiles + p.stats.ErrorFiles

	// Print every 100 files or every 10 seconds, whichever comes first
	if !force && processed%100 != 0 && timeSinceLastProgress < 10*time.Second {
		return
	}

	p.lastProgress = now
	elapsed := now.Sub(p.startTime)

	if processed == 0 || p.stats.TotalFiles == 0 {
		return
	}

	// Calculate rate and ETA
	rate := float64(processed) / elapsed.Seconds()
	var eta string
	if rate > 0 && p.stats.TotalFiles > processed {
		remaining := p.stats.TotalFiles - processed
		etaDuration := time.Duration(float64(remaining)/rate) * time.Second
		eta = fmt.Sprintf(" | ETA: %s", formatDuration(etaDuration))
	}

	logger.Infof("Progress: %d/%d files (%.1f%%) | Processed: %d | Skipped: %d | Errors: %d | Rate: %.1f files/sec | Elapsed: %s%s",
		processed, p.stats.TotalFiles,
		float64(processed)/float64(p.stats.TotalFiles)*100,
		p.stats.ProcessedFiles, p.stats.SkippedFiles, p.stats.ErrorFiles,
		rate, formatDuration(elapsed), eta)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	} else if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// printStats prints processing statistics
func (p *DateProcessor) printStats() {
	fmt.Println("\n=== Processing Statistics ===")
	fmt.Printf("Total files found:      %d\n", p.stats.TotalFiles)
	fmt.Printf("Successfully processed: %d\n", p.stats.ProcessedFiles)
	fmt.Printf("Skipped:                %d\n", p.stats.SkippedFiles)
	fmt.Printf("Errors:                 %d\n", p.stats.ErrorFiles)
	fmt.Printf("PNG converted:          %d\n", p.stats.ConvertedFiles)
	fmt.Printf("Metadata updated:       %d\n", p.stats.UpdatedMetadata)
	fmt.Println("============================")
}
