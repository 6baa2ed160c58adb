package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Verbose bool
	DryRun  bool   // Log intended changes without touching any file
	Workers int    // Number of concurrent workers
	SSHHost string // SSH host the target directory lives on (empty for local)

	// dates
	PNGToJPG   bool   // Convert PNG files to JPG so EXIF can be written
	VideoCodec string // ffmpeg video codec used when rewriting MP4 metadata

	// infer
	Explain bool // Show every file name rule and what it matched

	// thumbs
	ThumbAt   string // Position of the captured frame (HH:MM:SS or seconds)
	Overwrite bool   // Recapture thumbnails that already exist

	// dedupe
	PreferredDir string // Duplicates inside this directory are deleted first
	MinSize      uint64 // Only files strictly larger than this are compared
	Report       string // Optional YAML report path
	Verify       bool   // Compare content hashes before deleting
}

// Viper keys
const (
	keyConfig       = "config"
	keyVerbose      = "verbose"
	keyDryRun       = "dry-run"
	keyWorkers      = "workers"
	keySSHHost      = "ssh-host"
	keyPNGToJPG     = "png-to-jpg"
	keyVideoCodec   = "video-codec"
	keyExplain      = "explain"
	keyThumbAt      = "at"
	keyOverwrite    = "overwrite"
	keyPreferredDir = "preferred-dir"
	keyMinSize      = "min-size"
	keyReport       = "report"
	keyVerify       = "verify"
)

const envPrefix = "MEDIA_TIDY"

// initConfig reads the config file and environment into viper
func initConfig() error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile := viper.GetString(keyConfig); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
		return nil
	}

	if dir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(dir, "media-tidy"))
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// loadConfig builds a Config from the merged flag, env and file settings
func loadConfig() (*Config, error) {
	config := &Config{
		Verbose:      viper.GetBool(keyVerbose),
		DryRun:       viper.GetBool(keyDryRun),
		Workers:      viper.GetInt(keyWorkers),
		SSHHost:      viper.GetString(keySSHHost),
		PNGToJPG:     viper.GetBool(keyPNGToJPG),
		VideoCodec:   viper.GetString(keyVideoCodec),
		Explain:      viper.GetBool(keyExplain),
		ThumbAt:      viper.GetString(keyThumbAt),
		Overwrite:    viper.GetBool(keyOverwrite),
		PreferredDir: viper.GetString(keyPreferredDir),
		Report:       viper.GetString(keyReport),
		Verify:       viper.GetBool(keyVerify),
	}

	if config.Workers < 1 {
		config.Workers = runtime.NumCPU()
	}

	if s := viper.GetString(keyMinSize); s != "" {
		size, err := humanize.ParseBytes(s)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s %q: %w", keyMinSize, s, err)
		}
		config.MinSize = size
	}

	return config, nil
}
