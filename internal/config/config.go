package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"jscenario/internal/domain"
)

// Config stores runtime configuration for both shells.
type Config struct {
	API      APIConfig
	Audio    AudioConfig
	Upload   UploadConfig
	Progress ProgressConfig
	Session  SessionConfig
	Chapters domain.ChapterTable
	Language string
	Debug    bool

	// File is the TOML file that was applied, if any.
	File string
}

type APIConfig struct {
	BaseURL        string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	TempDir         string
	ChunkSize       int
}

type UploadConfig struct {
	MinBytes int64
	MaxBytes int64
}

type ProgressConfig struct {
	DBPath    string
	DailyGoal int
}

type SessionConfig struct {
	UserID       string
	TickInterval time.Duration
}

type fileConfig struct {
	Language string `toml:"language"`
	UserID   string `toml:"user_id"`
	Debug    *bool  `toml:"debug"`

	API struct {
		BaseURL               string `toml:"base_url"`
		ConnectTimeoutSeconds int    `toml:"connect_timeout_seconds"`
		ReadTimeoutSeconds    int    `toml:"read_timeout_seconds"`
		WriteTimeoutSeconds   int    `toml:"write_timeout_seconds"`
	} `toml:"api"`

	Audio struct {
		FFMPEGCommand string `toml:"ffmpeg_command"`
		InputFormat   string `toml:"input_format"`
		InputDevice   string `toml:"input_device"`
		TempDir       string `toml:"temp_dir"`
	} `toml:"audio"`

	Upload struct {
		MinBytes int64 `toml:"min_bytes"`
		MaxMB    int64 `toml:"max_mb"`
	} `toml:"upload"`

	Progress struct {
		DBPath    string `toml:"db_path"`
		DailyGoal int    `toml:"daily_goal"`
	} `toml:"progress"`

	Chapters map[string]int `toml:"chapters"`
}

// Load resolves configuration from defaults, the TOML config file, a .env
// file and environment variables, in increasing precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()

	if path := FilePath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := applyFile(&cfg, path); err != nil {
				return Config{}, err
			}
		}
	}

	applyEnvOverrides(&cfg)
	sanitize(&cfg)
	return cfg, nil
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000/api/",
			ConnectTimeout: 30 * time.Second,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
		},
		Audio: AudioConfig{
			RecorderCommand: "ffmpeg",
			TempDir:         filepath.Join(os.TempDir(), "jscenario"),
			ChunkSize:       4096,
		},
		Upload: UploadConfig{
			MinBytes: 1 << 10,
			MaxBytes: domain.MaxUploadBytes,
		},
		Progress: ProgressConfig{
			DBPath:    filepath.Join(dataDir(), "progress.db"),
			DailyGoal: 3,
		},
		Session: SessionConfig{
			TickInterval: time.Second,
		},
		Chapters: domain.DefaultChapterTable(),
		Language: "ko",
	}
}

// FilePath returns where the TOML config file is looked up.
func FilePath() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "jscenario", "config.toml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "jscenario", "config.toml")
	}
	return ""
}

func dataDir() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "jscenario")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "jscenario")
	}
	return "."
}

func applyFile(cfg *Config, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.File = path

	if fc.Language != "" {
		cfg.Language = fc.Language
	}
	if fc.UserID != "" {
		cfg.Session.UserID = fc.UserID
	}
	if fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}

	if fc.API.BaseURL != "" {
		cfg.API.BaseURL = fc.API.BaseURL
	}
	if fc.API.ConnectTimeoutSeconds > 0 {
		cfg.API.ConnectTimeout = time.Duration(fc.API.ConnectTimeoutSeconds) * time.Second
	}
	if fc.API.ReadTimeoutSeconds > 0 {
		cfg.API.ReadTimeout = time.Duration(fc.API.ReadTimeoutSeconds) * time.Second
	}
	if fc.API.WriteTimeoutSeconds > 0 {
		cfg.API.WriteTimeout = time.Duration(fc.API.WriteTimeoutSeconds) * time.Second
	}

	if fc.Audio.FFMPEGCommand != "" {
		cfg.Audio.RecorderCommand = fc.Audio.FFMPEGCommand
	}
	cfg.Audio.InputFormat = firstNonEmpty(fc.Audio.InputFormat, cfg.Audio.InputFormat)
	cfg.Audio.InputDevice = firstNonEmpty(fc.Audio.InputDevice, cfg.Audio.InputDevice)
	if fc.Audio.TempDir != "" {
		cfg.Audio.TempDir = expandTilde(fc.Audio.TempDir)
	}

	if fc.Upload.MinBytes > 0 {
		cfg.Upload.MinBytes = fc.Upload.MinBytes
	}
	if fc.Upload.MaxMB > 0 {
		cfg.Upload.MaxBytes = fc.Upload.MaxMB << 20
	}

	if fc.Progress.DBPath != "" {
		cfg.Progress.DBPath = expandTilde(fc.Progress.DBPath)
	}
	if fc.Progress.DailyGoal > 0 {
		cfg.Progress.DailyGoal = fc.Progress.DailyGoal
	}

	if len(fc.Chapters) > 0 {
		chapters := domain.ChapterTable{}
		for base, max := range fc.Chapters {
			if !domain.ValidBaseScenarioID(base) || max < 1 {
				return fmt.Errorf("parse %s: invalid chapter entry %s = %d", path, base, max)
			}
			chapters[base] = max
		}
		cfg.Chapters = chapters
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.API.BaseURL = envOrDefault("JSCENARIO_API_BASE_URL", cfg.API.BaseURL)
	cfg.API.ConnectTimeout = envOrDefaultSeconds("JSCENARIO_CONNECT_TIMEOUT_SECONDS", cfg.API.ConnectTimeout)
	cfg.API.ReadTimeout = envOrDefaultSeconds("JSCENARIO_READ_TIMEOUT_SECONDS", cfg.API.ReadTimeout)
	cfg.API.WriteTimeout = envOrDefaultSeconds("JSCENARIO_WRITE_TIMEOUT_SECONDS", cfg.API.WriteTimeout)

	cfg.Audio.RecorderCommand = envOrDefault("JSCENARIO_FFMPEG_COMMAND", cfg.Audio.RecorderCommand)
	cfg.Audio.InputFormat = envOrDefault("JSCENARIO_AUDIO_INPUT_FORMAT", cfg.Audio.InputFormat)
	cfg.Audio.InputDevice = firstNonEmpty(
		os.Getenv("JSCENARIO_AUDIO_INPUT_DEVICE"),
		os.Getenv("PULSE_SOURCE"),
		cfg.Audio.InputDevice,
	)
	cfg.Audio.TempDir = expandTilde(envOrDefault("JSCENARIO_TEMP_DIR", cfg.Audio.TempDir))
	cfg.Audio.ChunkSize = envOrDefaultInt("JSCENARIO_AUDIO_CHUNK_SIZE", cfg.Audio.ChunkSize)

	if mb := envOrDefaultInt("JSCENARIO_UPLOAD_MAX_MB", 0); mb > 0 {
		cfg.Upload.MaxBytes = int64(mb) << 20
	}

	cfg.Progress.DBPath = expandTilde(envOrDefault("JSCENARIO_DB_PATH", cfg.Progress.DBPath))
	cfg.Progress.DailyGoal = envOrDefaultInt("JSCENARIO_DAILY_GOAL", cfg.Progress.DailyGoal)

	cfg.Session.UserID = envOrDefault("JSCENARIO_USER_ID", cfg.Session.UserID)
	cfg.Language = envOrDefault("JSCENARIO_LANG", cfg.Language)
	cfg.Debug = envOrDefaultBool("JSCENARIO_DEBUG", cfg.Debug)
}

func sanitize(cfg *Config) {
	if cfg.API.ConnectTimeout <= 0 {
		cfg.API.ConnectTimeout = 30 * time.Second
	}
	if cfg.API.ReadTimeout <= 0 {
		cfg.API.ReadTimeout = 30 * time.Second
	}
	if cfg.API.WriteTimeout <= 0 {
		cfg.API.WriteTimeout = 30 * time.Second
	}
	if cfg.Audio.ChunkSize < 256 {
		cfg.Audio.ChunkSize = 4096
	}
	if cfg.Upload.MinBytes <= 0 {
		cfg.Upload.MinBytes = 1 << 10
	}
	if cfg.Upload.MaxBytes < cfg.Upload.MinBytes || cfg.Upload.MaxBytes > domain.MaxUploadBytes {
		cfg.Upload.MaxBytes = domain.MaxUploadBytes
	}
	if cfg.Progress.DailyGoal <= 0 {
		cfg.Progress.DailyGoal = 3
	}
	if cfg.Session.TickInterval <= 0 {
		cfg.Session.TickInterval = time.Second
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultSeconds(key string, fallback time.Duration) time.Duration {
	seconds := envOrDefaultInt(key, -1)
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
