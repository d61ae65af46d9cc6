package ports

import (
	"context"
	"io"
	"time"

	"jscenario/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session producing s16le PCM.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// Recorder turns a capture session into a finished audio file.
type Recorder interface {
	Start(ctx context.Context) (string, error)
	Stop() (domain.RecordedAudio, error)
	Cancel() error
	Active() bool
	Elapsed() time.Duration
}

// InteractionUpload is one recording to be evaluated.
type InteractionUpload struct {
	ScenarioID string
	UserID     string
	AudioPath  string
}

// ScenarioAPI fetches scenario definitions from the backend.
type ScenarioAPI interface {
	RandomScenario(ctx context.Context) (domain.Scenario, error)
	ScenarioByID(ctx context.Context, id string) (domain.Scenario, error)
}

// InteractionAPI uploads recordings for evaluation.
type InteractionAPI interface {
	CreateInteraction(ctx context.Context, upload InteractionUpload) (domain.Interaction, error)
}

// KeyValueStore persists small string values across runs.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetMany(ctx context.Context, values map[string]string) error
}

// Translator resolves a message id into user-facing text.
type Translator interface {
	T(id string, data map[string]any) string
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason)
	RecordingTick(elapsedSeconds int)
	EvaluationReady(interaction domain.Interaction)
	SessionError(code domain.ErrorCode, detail string)
}
