package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"jscenario/internal/bootstrap"
	"jscenario/internal/config"
	"jscenario/internal/domain"
	"jscenario/internal/i18n"
	"jscenario/internal/ports"
	"jscenario/internal/usecase"
)

const (
	eventSession    = "jscenario:session"
	eventTick       = "jscenario:tick"
	eventScenario   = "jscenario:scenario"
	eventEvaluation = "jscenario:evaluation"
	eventFeedback   = "jscenario:feedback"
	eventError      = "jscenario:error"
)

// ScenarioView is a scenario with its media URLs resolved for the webview.
type ScenarioView struct {
	Scenario          domain.Scenario `json:"scenario"`
	ImageURL          string          `json:"imageUrl"`
	CharacterAudioURL string          `json:"characterAudioUrl,omitempty"`
}

// App is the Wails application root.
type App struct {
	ctx context.Context

	services *bootstrap.Services
	cfg      config.Config
	bootErr  error
	fallback ports.Translator
}

func NewApp() *App {
	return &App{fallback: i18n.New(os.Getenv("JSCENARIO_LANG"))}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.services = &services
	a.SessionStateChanged(domain.SessionStateIdle, domain.SessionReasonReady)
}

func (a *App) shutdown(_ context.Context) {
	if a.services == nil {
		return
	}
	a.services.Session.Close()
	if err := a.services.Close(); err != nil {
		a.services.Logger.Printf("close services: %v", err)
	}
}

// LoadScenario fetches a scenario by id, or a random one when id is empty,
// and binds it to the recording session.
func (a *App) LoadScenario(id string) (ScenarioView, error) {
	if err := a.requireReady(); err != nil {
		return ScenarioView{}, err
	}

	var results <-chan domain.Result[domain.Scenario]
	if id == "" {
		results = a.services.Scenarios.FetchRandom(a.ctx)
	} else {
		results = a.services.Scenarios.FetchByID(a.ctx, id)
	}

	var view ScenarioView
	var failure *domain.Failure
	for r := range results {
		a.emit(eventScenario, map[string]string{"status": r.Status.String()})
		r.Match(
			func() {},
			func(s domain.Scenario) {
				view = a.scenarioView(s)
				a.services.Session.SetScenario(s.ID)
			},
			func(f *domain.Failure) { failure = f },
		)
	}
	if failure != nil {
		a.SessionError(failure.Kind.Code(), failure.Message)
		return ScenarioView{}, failure
	}
	return view, nil
}

// StartRecording begins a microphone capture.
func (a *App) StartRecording() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.services.Session.BeginRecording(a.ctx); err != nil {
		return a.services.Session.Status(), err
	}
	return a.services.Session.Status(), nil
}

// StopRecording finalizes the capture and keeps the file for submission.
func (a *App) StopRecording() (domain.RecordedAudio, error) {
	if err := a.requireReady(); err != nil {
		return domain.RecordedAudio{}, err
	}
	return a.services.Session.EndRecording()
}

// Rerecord discards the held recording and captures again.
func (a *App) Rerecord() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.services.Session.Rerecord(a.ctx); err != nil {
		return a.services.Session.Status(), err
	}
	return a.services.Session.Status(), nil
}

// DiscardRecording deletes the held recording.
func (a *App) DiscardRecording() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.services.Session.Discard(); err != nil {
		if errors.Is(err, usecase.ErrInvalidTransition) {
			return nil
		}
		return err
	}
	return nil
}

// SubmitRecording uploads the held recording. The evaluation arrives through
// the evaluation and feedback events.
func (a *App) SubmitRecording() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	results, err := a.services.Session.Submit(a.ctx)
	if err != nil {
		return a.services.Session.Status(), err
	}
	go func() {
		for r := range results {
			r.Match(
				func() {},
				func(i domain.Interaction) { a.emit(eventFeedback, a.services.Feedback.Show(i)) },
				func(*domain.Failure) {},
			)
		}
	}()
	return a.services.Session.Status(), nil
}

// ContinueFeedback leaves the feedback screen. It records a completion when
// the scenario has no further chapter.
func (a *App) ContinueFeedback() (usecase.ContinueResult, error) {
	if err := a.requireReady(); err != nil {
		return usecase.ContinueResult{}, err
	}
	result, err := a.services.Feedback.Continue(a.ctx)
	if err != nil && !errors.Is(err, usecase.ErrNoFeedback) {
		a.SessionError(domain.ErrorCodeProgress, a.services.Translator.T("error_progress", nil))
	}
	a.services.Session.Reset()
	return result, err
}

// NextChapter moves from the feedback screen to the following chapter.
func (a *App) NextChapter() (ScenarioView, error) {
	if err := a.requireReady(); err != nil {
		return ScenarioView{}, err
	}
	next, err := a.services.Feedback.Advance()
	if err != nil {
		return ScenarioView{}, err
	}
	return a.LoadScenario(next)
}

// LeaveRecording cancels any capture and clears the session.
func (a *App) LeaveRecording() {
	if a.services == nil {
		return
	}
	a.services.Session.Close()
}

// GetStatus returns the current session status.
func (a *App) GetStatus() domain.Status {
	if a.services == nil {
		if a.bootErr != nil {
			return domain.Status{State: domain.SessionStateFailed, Active: false, Message: a.bootErr.Error()}
		}
		return domain.Status{State: domain.SessionStateIdle, Active: false}
	}
	return a.services.Session.Status()
}

// GetStats returns the learner's daily goal, streak and totals.
func (a *App) GetStats() (domain.Stats, error) {
	if err := a.requireReady(); err != nil {
		return domain.Stats{}, err
	}
	return a.services.Progress.Load(a.ctx)
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"apiBaseUrl":       a.cfg.API.BaseURL,
		"language":         a.cfg.Language,
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
		"dailyGoal":        strconv.Itoa(a.cfg.Progress.DailyGoal),
		"configFile":       a.cfg.File,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.services == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

func (a *App) scenarioView(s domain.Scenario) ScenarioView {
	view := ScenarioView{Scenario: s, ImageURL: a.services.Client.ResolveURL(s.ImageURL)}
	if s.CharacterAudioURL != nil {
		view.CharacterAudioURL = a.services.Client.ResolveURL(*s.CharacterAudioURL)
	}
	return view
}

func (a *App) emit(name string, payload any) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, name, payload)
}

// SessionStateChanged emits session lifecycle updates to the frontend.
func (a *App) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	a.emit(eventSession, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": a.sessionReasonMessage(reason),
	})
}

// RecordingTick emits the elapsed recording time once per second.
func (a *App) RecordingTick(elapsedSeconds int) {
	a.emit(eventTick, map[string]int{"seconds": elapsedSeconds})
}

// EvaluationReady emits the raw interaction as soon as it arrives.
func (a *App) EvaluationReady(interaction domain.Interaction) {
	a.emit(eventEvaluation, interaction)
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	a.emit(eventError, map[string]string{
		"code":    string(code),
		"message": a.errorMessage(code, detail),
		"detail":  detail,
	})
}

var sessionReasonMessageIDs = map[domain.SessionStateReason]string{
	domain.SessionReasonReady:              "session_ready",
	domain.SessionReasonScenarioChanged:    "session_scenario_changed",
	domain.SessionReasonRecordingStarted:   "session_recording_started",
	domain.SessionReasonRecordingRestarted: "session_recording_restarted",
	domain.SessionReasonRecordingCaptured:  "session_recording_captured",
	domain.SessionReasonRecordingDiscarded: "session_recording_discarded",
	domain.SessionReasonRecordingFailed:    "session_recording_failed",
	domain.SessionReasonSubmitting:         "session_submitting",
	domain.SessionReasonEvaluated:          "session_evaluated",
	domain.SessionReasonSubmissionFailed:   "session_submission_failed",
	domain.SessionReasonReset:              "session_reset",
}

var errorTitleIDs = map[domain.ErrorCode]string{
	domain.ErrorCodeStartup:      "title_startup",
	domain.ErrorCodeAudioStart:   "title_audio_start",
	domain.ErrorCodeAudioStop:    "title_audio_stop",
	domain.ErrorCodeValidation:   "title_validation",
	domain.ErrorCodeServer:       "title_server",
	domain.ErrorCodeConnectivity: "title_connectivity",
	domain.ErrorCodeProgress:     "title_progress",
}

func (a *App) sessionReasonMessage(reason domain.SessionStateReason) string {
	id, ok := sessionReasonMessageIDs[reason]
	if !ok {
		return ""
	}
	return a.translator().T(id, nil)
}

func (a *App) errorMessage(code domain.ErrorCode, detail string) string {
	if id, ok := errorTitleIDs[code]; ok {
		return a.translator().T(id, nil)
	}
	if detail == "" {
		return a.translator().T("error_unknown", nil)
	}
	return detail
}

// translator prefers the configured language and falls back to the
// environment before services are built.
func (a *App) translator() ports.Translator {
	if a.services != nil && a.services.Translator != nil {
		return a.services.Translator
	}
	if a.fallback == nil {
		return i18n.New("")
	}
	return a.fallback
}
