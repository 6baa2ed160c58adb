package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set(keyDryRun, true)
	viper.Set(keyWorkers, 3)
	viper.Set(keyMinSize, "10MiB")
	viper.Set(keyPreferredDir, "/photos/backup")

	config, err := loadConfig()
	require.NoError(t, err)
	assert.True(t, config.DryRun)
	assert.Equal(t, 3, config.Workers)
	assert.Equal(t, uint64(10*1024*1024), config.MinSize)
	assert.Equal(t, "/photos/backup", config.PreferredDir)
}

func TestDedupeMinSizeDefault(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	flag := dedupeCmd.Flags().Lookup(keyMinSize)
	require.NotNil(t, flag)
	viper.Set(keyMinSize, flag.DefValue)

	config, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(10485760), config.MinSize)
}

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	config, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), config.Workers)
	assert.Zero(t, config.MinSize)
	assert.False(t, config.DryRun)
}

func TestLoadConfigInvalidMinSize(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set(keyMinSize, "lots")
	_, err := loadConfig()
	assert.Error(t, err)
}

func TestInitConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "media-tidy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min-size: 1GiB\nvideo-codec: hevc\n"), 0o644))
	viper.Set(keyConfig, path)

	require.NoError(t, initConfig())
	config, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<30), config.MinSize)
	assert.Equal(t, "hevc", config.VideoCodec)
}

func TestInitConfigEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("MEDIA_TIDY_SSH_HOST", "admin@nas:2222")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	require.NoError(t, initConfig())
	config, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "admin@nas:2222", config.SSHHost)
}

func TestInitConfigMissingFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set(keyConfig, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, initConfig())
}
