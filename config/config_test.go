package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, s string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "qoiview.yaml")
	require.NoError(t, os.WriteFile(file, []byte(s), 0644))
	return file
}

func TestLoadDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 307200, cfg.BufferSize())
}

func TestLoad(t *testing.T) {
	cfg, err := Load(write(t, "width: 640\nheight: 480\ncodec: lz4\n"))
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
	assert.Equal(t, "lz4", cfg.Codec)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultColors, cfg.Colors)
}

func TestLoadInvalid(t *testing.T) {
	tables := map[string]string{
		"syntax":  "width: [",
		"width":   "width: 0\n",
		"workers": "workers: -1\n",
		"colors":  "colors: 0\n",
	}

	for name, s := range tables {
		t.Run(name, func(t *testing.T) {
			_, err := Load(write(t, s))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
