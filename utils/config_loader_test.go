package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSensorsConfig_AppliesDefaults(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "sensors.yaml", `
sensors:
  fps: 15
  depth:
    drop_rate: 0.25
display:
  mode: bodymask
`)
	cfg, err := LoadSensorsConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Sensors.FPS)
	assert.Equal(t, 0.25, cfg.Sensors.Depth.DropRate)
	assert.Equal(t, 512, cfg.Sensors.Depth.Width, "default kept")
	assert.Equal(t, 4500, cfg.Sensors.Depth.MaxReliableMM)
	assert.Equal(t, "YUY2", cfg.Sensors.Color.Format)
	assert.Equal(t, "bodymask", cfg.Display.Mode)
	assert.Equal(t, 4, cfg.Sensors.FramePoolSize)
}

func TestSensorsConfig_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*SensorsConfig)
	}{
		{"fps", func(c *SensorsConfig) { c.Sensors.FPS = 0 }},
		{"pool", func(c *SensorsConfig) { c.Sensors.FramePoolSize = 0 }},
		{"dimensions", func(c *SensorsConfig) { c.Sensors.Infrared.Width = 0 }},
		{"drop rate", func(c *SensorsConfig) { c.Sensors.Body.DropRate = 1.5 }},
		{"depth range", func(c *SensorsConfig) { c.Sensors.Depth.MaxReliableMM = 100 }},
		{"color format", func(c *SensorsConfig) { c.Sensors.Color.Format = "NV12" }},
		{"infrared output", func(c *SensorsConfig) { c.Sensors.Infrared.OutputMin = 1 }},
		{"gesture labels", func(c *SensorsConfig) { c.Gestures.Labels = []string{"a", "b"} }},
		{"display mode", func(c *SensorsConfig) { c.Display.Mode = "thermal" }},
	}
	require.NoError(t, DefaultSensorsConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSensorsConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadStorageConfig(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "storage.yaml", `
storage:
  folder: "Test Folder"
  sqlite:
    enabled: true
`)
	cfg, err := LoadStorageConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Test Folder", cfg.Storage.Folder)
	assert.Equal(t, "sample.txt", cfg.Storage.FileName)
	assert.True(t, cfg.Storage.SQLite.Enabled)
	assert.Equal(t, "gestures.db", cfg.Storage.SQLite.Path)

	_, err = LoadStorageConfig(writeFile(t, "bad.yaml", "storage:\n  queue_size: 0\n"))
	assert.Error(t, err)
	_, err = LoadStorageConfig(writeFile(t, "broken.yaml", "storage: [\n"))
	assert.Error(t, err)
	_, err = LoadStorageConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
