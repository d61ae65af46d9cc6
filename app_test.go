package main

import (
	"errors"
	"path/filepath"
	"testing"

	"jscenario/internal/bootstrap"
	"jscenario/internal/config"
	"jscenario/internal/domain"
	"jscenario/internal/i18n"
)

func TestSessionReasonMessage(t *testing.T) {
	t.Parallel()

	app := &App{fallback: i18n.New("en")}
	cases := map[domain.SessionStateReason]string{
		domain.SessionReasonReady:              "Ready",
		domain.SessionReasonScenarioChanged:    "Scenario loaded",
		domain.SessionReasonRecordingStarted:   "Recording started",
		domain.SessionReasonRecordingRestarted: "Recording restarted; previous take discarded",
		domain.SessionReasonRecordingCaptured:  "Recording captured",
		domain.SessionReasonRecordingDiscarded: "Recording discarded",
		domain.SessionReasonRecordingFailed:    "Recording failed",
		domain.SessionReasonSubmitting:         "Evaluating...",
		domain.SessionReasonEvaluated:          "Evaluation ready",
		domain.SessionReasonSubmissionFailed:   "Submission failed",
		domain.SessionReasonReset:              "Session reset",
	}

	for reason, want := range cases {
		reason := reason
		want := want
		t.Run(string(reason), func(t *testing.T) {
			t.Parallel()
			if got := app.sessionReasonMessage(reason); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := app.sessionReasonMessage("unknown"); got != "" {
		t.Fatalf("expected empty unknown reason message, got %q", got)
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	app := &App{fallback: i18n.New("en")}
	cases := map[domain.ErrorCode]string{
		domain.ErrorCodeStartup:      "Startup failed",
		domain.ErrorCodeAudioStart:   "Microphone unavailable",
		domain.ErrorCodeAudioStop:    "Audio stop issue",
		domain.ErrorCodeValidation:   "Invalid recording",
		domain.ErrorCodeServer:       "Server error",
		domain.ErrorCodeConnectivity: "Connection problem",
		domain.ErrorCodeProgress:     "Progress not saved",
	}
	for code, want := range cases {
		code := code
		want := want
		t.Run(string(code), func(t *testing.T) {
			t.Parallel()
			if got := app.errorMessage(code, "ignored"); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := app.errorMessage("unknown", "detail"); got != "detail" {
		t.Fatalf("expected detail fallback, got %q", got)
	}
	if got := app.errorMessage("unknown", ""); got != "Unknown error" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
}

func TestMessagesFollowConfiguredLanguage(t *testing.T) {
	t.Parallel()

	app := &App{}
	if got := app.sessionReasonMessage(domain.SessionReasonSubmitting); got != "평가 중..." {
		t.Fatalf("expected korean default, got %q", got)
	}
	if got := app.errorMessage(domain.ErrorCodeServer, ""); got != "서버 오류" {
		t.Fatalf("expected korean default, got %q", got)
	}

	cfg := config.Defaults()
	cfg.Language = "en"
	cfg.Progress.DBPath = filepath.Join(t.TempDir(), "progress.db")
	services, err := bootstrap.BuildWith(cfg, app)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer services.Close()
	app.services = &services

	if got := app.errorMessage(domain.ErrorCodeConnectivity, ""); got != "Connection problem" {
		t.Fatalf("expected configured language, got %q", got)
	}
}

func TestRequireReady(t *testing.T) {
	t.Parallel()

	app := &App{}
	if err := app.requireReady(); err == nil {
		t.Fatalf("expected uninitialized error")
	}
	if _, err := app.GetStats(); err == nil {
		t.Fatalf("expected stats to require initialization")
	}

	bootErr := errors.New("boot")
	app.bootErr = bootErr
	if err := app.requireReady(); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error, got %v", err)
	}
	if info := app.GetRuntimeInfo(); info["error"] != "boot" {
		t.Fatalf("expected boot error in runtime info, got %+v", info)
	}
}

func TestGetStatusWhenNotInitialized(t *testing.T) {
	t.Parallel()

	app := &App{}
	status := app.GetStatus()
	if status.State != domain.SessionStateIdle || status.Active {
		t.Fatalf("unexpected status: %+v", status)
	}

	app.bootErr = errors.New("boot")
	status = app.GetStatus()
	if status.State != domain.SessionStateFailed || status.Active != false || status.Message != "boot" {
		t.Fatalf("unexpected boot status: %+v", status)
	}
}

func TestScenarioViewResolvesMediaURLs(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.API.BaseURL = "https://api.example.com/v1/api/"
	cfg.Progress.DBPath = filepath.Join(t.TempDir(), "progress.db")

	app := NewApp()
	services, err := bootstrap.BuildWith(cfg, app)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer services.Close()
	app.services = &services
	app.cfg = cfg

	voice := "/static/voice/a.mp3"
	view := app.scenarioView(domain.Scenario{ID: "scenario_002", ImageURL: "/static/images/b.png", CharacterAudioURL: &voice})
	if view.ImageURL != "https://api.example.com/static/images/b.png" {
		t.Fatalf("unexpected image url: %s", view.ImageURL)
	}
	if view.CharacterAudioURL != "https://api.example.com/static/voice/a.mp3" {
		t.Fatalf("unexpected audio url: %s", view.CharacterAudioURL)
	}

	status := app.GetStatus()
	if status.State != domain.SessionStateIdle {
		t.Fatalf("unexpected status: %+v", status)
	}
	if info := app.GetRuntimeInfo(); info["apiBaseUrl"] != cfg.API.BaseURL || info["dailyGoal"] != "3" {
		t.Fatalf("unexpected runtime info: %+v", info)
	}
}
