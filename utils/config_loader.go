package utils

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ─── Sensor-level configs ───────────────────────────────────────────────

// StreamConfig is shared by every frame modality of the multi-source reader.
type StreamConfig struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	DropRate float64 `yaml:"drop_rate"` // probability a frame is unavailable on acquire
}

type ColorConfig struct {
	StreamConfig `yaml:",inline"`
	Format       string `yaml:"format"` // BGRA, RGBA or YUY2
}

type DepthConfig struct {
	StreamConfig  `yaml:",inline"`
	MinReliableMM int `yaml:"min_reliable_mm"`
	MaxReliableMM int `yaml:"max_reliable_mm"`
}

type InfraredConfig struct {
	StreamConfig `yaml:",inline"`
	SceneAverage float64 `yaml:"scene_average"`
	SceneStdDevs float64 `yaml:"scene_std_devs"`
	OutputMin    float64 `yaml:"output_min"`
	OutputMax    float64 `yaml:"output_max"`
	Adaptive     bool    `yaml:"adaptive"`
}

type GesturesConfig struct {
	Labels       []string `yaml:"labels"`
	ResultRateHz int      `yaml:"result_rate_hz"`
}

type DisplayConfig struct {
	Mode          string `yaml:"mode"`
	SnapshotPath  string `yaml:"snapshot_path"`
	SnapshotEvery int    `yaml:"snapshot_every"` // presents between BMP snapshots, 0 = off
}

type SimulationConfig struct {
	Enabled         bool  `yaml:"enabled"`
	DurationSeconds int   `yaml:"duration_seconds"`
	Seed            int64 `yaml:"seed"`
	Participants    int   `yaml:"participants"`
}

// SensorsConfig is the top-level structure for sensors.yaml.
type SensorsConfig struct {
	Sensors struct {
		FPS           int            `yaml:"fps"`
		ChannelBuffer int            `yaml:"channel_buffer"`
		FramePoolSize int            `yaml:"frame_pool_size"`
		ExpireAfter   int            `yaml:"expire_after"` // arrivals older than this many ticks are expired
		Color         ColorConfig    `yaml:"color"`
		Depth         DepthConfig    `yaml:"depth"`
		Infrared      InfraredConfig `yaml:"infrared"`
		BodyIndex     StreamConfig   `yaml:"body_index"`
		Body          StreamConfig   `yaml:"body"`
	} `yaml:"sensors"`
	Gestures   GesturesConfig   `yaml:"gestures"`
	Display    DisplayConfig    `yaml:"display"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// ─── Storage configs ────────────────────────────────────────────────────

type CSVStorageConfig struct {
	Enabled         bool   `yaml:"enabled"`
	FileName        string `yaml:"file_name"`
	FlushIntervalMs int    `yaml:"flush_interval_ms"`
	BufferSizeKB    int    `yaml:"buffer_size_kb"`
	WriteHeader     bool   `yaml:"write_header"`
}

type SQLiteStorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type StorageConfig struct {
	Storage struct {
		BaseDir   string              `yaml:"base_dir"`
		Folder    string              `yaml:"folder"`
		FileName  string              `yaml:"file_name"`
		QueueSize int                 `yaml:"queue_size"`
		CSV       CSVStorageConfig    `yaml:"csv"`
		SQLite    SQLiteStorageConfig `yaml:"sqlite"`
	} `yaml:"storage"`
}

// ─── Defaults ───────────────────────────────────────────────────────────

// DefaultSensorsConfig returns the values used for any field sensors.yaml omits.
func DefaultSensorsConfig() *SensorsConfig {
	var cfg SensorsConfig
	s := &cfg.Sensors
	s.FPS = 30
	s.ChannelBuffer = 8
	s.FramePoolSize = 4
	s.ExpireAfter = 2
	s.Color.Width, s.Color.Height = 1920, 1080
	s.Color.Format = "YUY2"
	s.Depth.Width, s.Depth.Height = 512, 424
	s.Depth.MinReliableMM, s.Depth.MaxReliableMM = 500, 4500
	s.Infrared.Width, s.Infrared.Height = 512, 424
	s.Infrared.SceneAverage = 0.08
	s.Infrared.SceneStdDevs = 3.0
	s.Infrared.OutputMin = 0.01
	s.Infrared.OutputMax = 1.0
	s.BodyIndex.Width, s.BodyIndex.Height = 512, 424

	cfg.Gestures.ResultRateHz = 15
	cfg.Display.Mode = "infrared"
	cfg.Simulation.Enabled = true
	cfg.Simulation.Seed = 1
	cfg.Simulation.Participants = 3
	return &cfg
}

// DefaultStorageConfig returns the values used for any field storage.yaml omits.
func DefaultStorageConfig() *StorageConfig {
	var cfg StorageConfig
	s := &cfg.Storage
	s.BaseDir = "./data"
	s.Folder = "gesture_logs"
	s.FileName = "sample.txt"
	s.QueueSize = 64
	s.CSV.FileName = "records.csv"
	s.CSV.FlushIntervalMs = 100
	s.CSV.BufferSizeKB = 256
	s.CSV.WriteHeader = true
	s.SQLite.Path = "gestures.db"
	return &cfg
}

// ─── Validation ─────────────────────────────────────────────────────────

var displayModes = []string{"infrared", "color", "depth", "bodymask", "bodyjoints"}

// Validate checks ranges and enumerations after defaults are applied.
func (c *SensorsConfig) Validate() error {
	s := c.Sensors
	if s.FPS <= 0 {
		return fmt.Errorf("sensors.fps must be positive, got %d", s.FPS)
	}
	if s.FramePoolSize <= 0 {
		return fmt.Errorf("sensors.frame_pool_size must be positive, got %d", s.FramePoolSize)
	}
	streams := map[string]StreamConfig{
		"color":      s.Color.StreamConfig,
		"depth":      s.Depth.StreamConfig,
		"infrared":   s.Infrared.StreamConfig,
		"body_index": s.BodyIndex,
	}
	for name, st := range streams {
		if st.Width <= 0 || st.Height <= 0 {
			return fmt.Errorf("sensors.%s: invalid dimensions %dx%d", name, st.Width, st.Height)
		}
	}
	for name, rate := range map[string]float64{
		"color": s.Color.DropRate, "depth": s.Depth.DropRate, "infrared": s.Infrared.DropRate,
		"body_index": s.BodyIndex.DropRate, "body": s.Body.DropRate,
	} {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("sensors.%s.drop_rate must be in [0,1], got %v", name, rate)
		}
	}
	if s.Depth.MinReliableMM < 0 || s.Depth.MaxReliableMM < s.Depth.MinReliableMM {
		return fmt.Errorf("sensors.depth: invalid reliable range [%d,%d]",
			s.Depth.MinReliableMM, s.Depth.MaxReliableMM)
	}
	switch strings.ToUpper(s.Color.Format) {
	case "BGRA", "RGBA", "YUY2":
	default:
		return fmt.Errorf("sensors.color.format: unsupported %q", s.Color.Format)
	}
	if s.Infrared.SceneAverage <= 0 || s.Infrared.SceneStdDevs <= 0 {
		return fmt.Errorf("sensors.infrared: scene_average and scene_std_devs must be positive")
	}
	if s.Infrared.OutputMin < 0 || s.Infrared.OutputMax > 1 || s.Infrared.OutputMin >= s.Infrared.OutputMax {
		return fmt.Errorf("sensors.infrared: output range [%v,%v] invalid",
			s.Infrared.OutputMin, s.Infrared.OutputMax)
	}
	if n := len(c.Gestures.Labels); n != 0 && n != 19 {
		return fmt.Errorf("gestures.labels must list exactly 19 gestures, got %d", n)
	}
	if c.Gestures.ResultRateHz <= 0 {
		return fmt.Errorf("gestures.result_rate_hz must be positive, got %d", c.Gestures.ResultRateHz)
	}
	mode := strings.ToLower(c.Display.Mode)
	for _, m := range displayModes {
		if m == mode {
			return nil
		}
	}
	return fmt.Errorf("display.mode: unknown mode %q", c.Display.Mode)
}

// Validate checks the storage settings after defaults are applied.
func (c *StorageConfig) Validate() error {
	s := c.Storage
	if s.Folder == "" || s.FileName == "" {
		return fmt.Errorf("storage: folder and file_name are required")
	}
	if s.QueueSize <= 0 {
		return fmt.Errorf("storage.queue_size must be positive, got %d", s.QueueSize)
	}
	if s.SQLite.Enabled && s.SQLite.Path == "" {
		return fmt.Errorf("storage.sqlite.path is required when sqlite is enabled")
	}
	return nil
}

// ─── Loaders ────────────────────────────────────────────────────────────

// LoadSensorsConfig reads and parses sensors.yaml on top of DefaultSensorsConfig.
func LoadSensorsConfig(path string) (*SensorsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sensors config: %w", err)
	}
	cfg := DefaultSensorsConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse sensors config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate sensors config: %w", err)
	}
	return cfg, nil
}

// LoadStorageConfig reads and parses storage.yaml on top of DefaultStorageConfig.
func LoadStorageConfig(path string) (*StorageConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read storage config: %w", err)
	}
	cfg := DefaultStorageConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse storage config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate storage config: %w", err)
	}
	return cfg, nil
}
