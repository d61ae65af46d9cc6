package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"JSCENARIO_API_BASE_URL",
	"JSCENARIO_CONNECT_TIMEOUT_SECONDS",
	"JSCENARIO_READ_TIMEOUT_SECONDS",
	"JSCENARIO_WRITE_TIMEOUT_SECONDS",
	"JSCENARIO_FFMPEG_COMMAND",
	"JSCENARIO_AUDIO_INPUT_FORMAT",
	"JSCENARIO_AUDIO_INPUT_DEVICE",
	"PULSE_SOURCE",
	"JSCENARIO_TEMP_DIR",
	"JSCENARIO_AUDIO_CHUNK_SIZE",
	"JSCENARIO_UPLOAD_MAX_MB",
	"JSCENARIO_DB_PATH",
	"JSCENARIO_DAILY_GOAL",
	"JSCENARIO_USER_ID",
	"JSCENARIO_LANG",
	"JSCENARIO_DEBUG",
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
	return home
}

func writeConfigFile(t *testing.T, home, body string) string {
	t.Helper()
	path := filepath.Join(home, "config", "jscenario", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8000/api/" {
		t.Fatalf("unexpected base url: %s", cfg.API.BaseURL)
	}
	if cfg.API.ConnectTimeout != 30*time.Second || cfg.API.ReadTimeout != 30*time.Second || cfg.API.WriteTimeout != 30*time.Second {
		t.Fatalf("unexpected timeouts: %+v", cfg.API)
	}
	if cfg.Upload.MinBytes != 1024 || cfg.Upload.MaxBytes != 10*1024*1024 {
		t.Fatalf("unexpected upload limits: %+v", cfg.Upload)
	}
	if cfg.Progress.DBPath != filepath.Join(home, "data", "jscenario", "progress.db") || cfg.Progress.DailyGoal != 3 {
		t.Fatalf("unexpected progress config: %+v", cfg.Progress)
	}
	if cfg.Chapters["scenario_001"] != 3 || cfg.Language != "ko" || cfg.File != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadAppliesFileThenEnv(t *testing.T) {
	home := isolate(t)
	path := writeConfigFile(t, home, `
language = "en"
user_id = "user_7"

[api]
base_url = "https://api.example.com/api/"
read_timeout_seconds = 45

[audio]
ffmpeg_command = "file-ffmpeg"
input_device = "mic1"
temp_dir = "~/takes"

[upload]
max_mb = 4

[progress]
daily_goal = 5

[chapters]
scenario_001 = 3
scenario_010 = 2
`)

	t.Setenv("JSCENARIO_READ_TIMEOUT_SECONDS", "10")
	t.Setenv("JSCENARIO_FFMPEG_COMMAND", "env-ffmpeg")
	t.Setenv("JSCENARIO_DEBUG", "yes")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.File != path {
		t.Fatalf("expected config file %s, got %q", path, cfg.File)
	}
	if cfg.API.BaseURL != "https://api.example.com/api/" || cfg.API.ReadTimeout != 10*time.Second || cfg.API.ConnectTimeout != 30*time.Second {
		t.Fatalf("unexpected api config: %+v", cfg.API)
	}
	if cfg.Audio.RecorderCommand != "env-ffmpeg" || cfg.Audio.InputDevice != "mic1" {
		t.Fatalf("unexpected audio config: %+v", cfg.Audio)
	}
	if cfg.Audio.TempDir != filepath.Join(home, "takes") {
		t.Fatalf("expected tilde expansion, got %s", cfg.Audio.TempDir)
	}
	if cfg.Upload.MaxBytes != 4<<20 || cfg.Progress.DailyGoal != 5 {
		t.Fatalf("unexpected limits: %+v %+v", cfg.Upload, cfg.Progress)
	}
	if cfg.Session.UserID != "user_7" || cfg.Language != "en" || !cfg.Debug {
		t.Fatalf("unexpected session/language/debug: %+v", cfg)
	}
	if cfg.Chapters["scenario_010"] != 2 || len(cfg.Chapters) != 2 {
		t.Fatalf("unexpected chapters: %+v", cfg.Chapters)
	}
}

func TestLoadRejectsBadChapterEntry(t *testing.T) {
	home := isolate(t)
	writeConfigFile(t, home, "[chapters]\nnot_a_scenario = 2\n")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "invalid chapter entry") {
		t.Fatalf("expected chapter error, got %v", err)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	home := isolate(t)
	writeConfigFile(t, home, "language = \n")

	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadInvalidNumericValuesFallback(t *testing.T) {
	isolate(t)
	t.Setenv("JSCENARIO_CONNECT_TIMEOUT_SECONDS", "bad")
	t.Setenv("JSCENARIO_AUDIO_CHUNK_SIZE", "5")
	t.Setenv("JSCENARIO_DAILY_GOAL", "-2")
	t.Setenv("JSCENARIO_UPLOAD_MAX_MB", "0")
	t.Setenv("JSCENARIO_DEBUG", "not-bool")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.API.ConnectTimeout != 30*time.Second {
		t.Fatalf("expected default connect timeout, got %s", cfg.API.ConnectTimeout)
	}
	if cfg.Audio.ChunkSize != 4096 {
		t.Fatalf("expected chunk size fallback, got %d", cfg.Audio.ChunkSize)
	}
	if cfg.Progress.DailyGoal != 3 {
		t.Fatalf("expected default daily goal, got %d", cfg.Progress.DailyGoal)
	}
	if cfg.Upload.MaxBytes != 10<<20 {
		t.Fatalf("expected default max upload, got %d", cfg.Upload.MaxBytes)
	}
	if cfg.Debug {
		t.Fatalf("expected debug to stay off")
	}
}

func TestLoadInputDeviceFallsBackToPulseSource(t *testing.T) {
	isolate(t)
	t.Setenv("PULSE_SOURCE", "alsa_input.usb")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Audio.InputDevice != "alsa_input.usb" {
		t.Fatalf("expected pulse source fallback, got %q", cfg.Audio.InputDevice)
	}

	t.Setenv("JSCENARIO_AUDIO_INPUT_DEVICE", "mic0")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Audio.InputDevice != "mic0" {
		t.Fatalf("expected explicit device priority, got %q", cfg.Audio.InputDevice)
	}
}

func TestLoadCapsUploadLimitAtBackendMaximum(t *testing.T) {
	home := isolate(t)
	writeConfigFile(t, home, "[upload]\nmax_mb = 40\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Upload.MaxBytes != 10<<20 {
		t.Fatalf("expected file limit to be capped, got %d", cfg.Upload.MaxBytes)
	}

	t.Setenv("JSCENARIO_UPLOAD_MAX_MB", "50")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Upload.MaxBytes != 10<<20 {
		t.Fatalf("expected env limit to be capped, got %d", cfg.Upload.MaxBytes)
	}

	t.Setenv("JSCENARIO_UPLOAD_MAX_MB", "4")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Upload.MaxBytes != 4<<20 {
		t.Fatalf("expected lower limit to be kept, got %d", cfg.Upload.MaxBytes)
	}
}

func TestLoadRejectsChapterKeyWithSuffix(t *testing.T) {
	home := isolate(t)
	writeConfigFile(t, home, "[chapters]\nscenario_001_2 = 3\n")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "invalid chapter entry") {
		t.Fatalf("expected chapter error, got %v", err)
	}
}
