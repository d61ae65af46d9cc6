package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"jscenario/internal/domain"
	"jscenario/internal/ports"
)

var (
	ErrBusy              = errors.New("a submission is already in flight")
	ErrInvalidTransition = errors.New("operation is not allowed in the current session state")
)

// Submitter uploads a recording and reports the tri-state outcome.
type Submitter interface {
	Submit(ctx context.Context, scenarioID, userID, audioPath string) <-chan domain.Result[domain.Interaction]
}

// SessionConfig controls recording session behavior.
type SessionConfig struct {
	UserID       string
	TickInterval time.Duration
	Logger       *log.Logger
}

// Session is the single writer of the record/submit lifecycle.
type Session struct {
	recorder  ports.Recorder
	submitter Submitter
	events    ports.EventSink
	tr        ports.Translator
	cfg       SessionConfig

	mu          sync.Mutex
	state       domain.SessionState
	scenarioID  string
	recording   *domain.RecordedAudio
	interaction *domain.Interaction
	failure     *domain.Failure
	generation  uint64
	stopTicker  func()
}

func NewSession(recorder ports.Recorder, submitter Submitter, events ports.EventSink, tr ports.Translator, cfg SessionConfig) *Session {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	if tr == nil {
		tr = passthroughTranslator{}
	}
	return &Session{
		recorder:  recorder,
		submitter: submitter,
		events:    events,
		tr:        tr,
		cfg:       cfg,
		state:     domain.SessionStateIdle,
	}
}

// SetScenario binds the scenario whose id is submitted and resets the session.
func (s *Session) SetScenario(id string) {
	s.mu.Lock()
	s.clearLocked()
	s.scenarioID = id
	s.mu.Unlock()

	s.events.SessionStateChanged(domain.SessionStateIdle, domain.SessionReasonScenarioChanged)
}

// BeginRecording starts a capture from Idle. On failure the session stays Idle.
func (s *Session) BeginRecording(ctx context.Context) error {
	s.mu.Lock()
	if s.state != domain.SessionStateIdle {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot record while %s", ErrInvalidTransition, state)
	}
	err := s.startCaptureLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		s.events.SessionError(domain.ErrorCodeAudioStart, s.tr.T("error_microphone", nil))
		return err
	}
	s.events.SessionStateChanged(domain.SessionStateRecording, domain.SessionReasonRecordingStarted)
	return nil
}

// EndRecording finalizes the capture and holds the file.
func (s *Session) EndRecording() (domain.RecordedAudio, error) {
	s.mu.Lock()
	if s.state != domain.SessionStateRecording {
		state := s.state
		s.mu.Unlock()
		return domain.RecordedAudio{}, fmt.Errorf("%w: cannot stop while %s", ErrInvalidTransition, state)
	}
	s.haltTickerLocked()
	audio, err := s.recorder.Stop()
	if err != nil {
		s.state = domain.SessionStateIdle
		s.mu.Unlock()

		s.cfg.Logger.Printf("stop recording failed: %v", err)
		s.events.SessionError(domain.ErrorCodeAudioStop, s.tr.T("error_audio_stop", nil))
		s.events.SessionStateChanged(domain.SessionStateIdle, domain.SessionReasonRecordingFailed)
		return domain.RecordedAudio{}, err
	}
	s.recording = &audio
	s.state = domain.SessionStateCaptured
	s.mu.Unlock()

	s.events.SessionStateChanged(domain.SessionStateCaptured, domain.SessionReasonRecordingCaptured)
	return audio, nil
}

// Rerecord drops the held file and restarts capture.
func (s *Session) Rerecord(ctx context.Context) error {
	s.mu.Lock()
	if s.state != domain.SessionStateCaptured {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot re-record while %s", ErrInvalidTransition, state)
	}
	s.deleteRecordingLocked()
	s.state = domain.SessionStateIdle
	err := s.startCaptureLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		s.events.SessionError(domain.ErrorCodeAudioStart, s.tr.T("error_microphone", nil))
		s.events.SessionStateChanged(domain.SessionStateIdle, domain.SessionReasonRecordingFailed)
		return err
	}
	s.events.SessionStateChanged(domain.SessionStateRecording, domain.SessionReasonRecordingRestarted)
	return nil
}

// Discard deletes the held file and returns to Idle.
func (s *Session) Discard() error {
	s.mu.Lock()
	if s.state != domain.SessionStateCaptured {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: nothing to discard while %s", ErrInvalidTransition, state)
	}
	s.deleteRecordingLocked()
	s.state = domain.SessionStateIdle
	s.mu.Unlock()

	s.events.SessionStateChanged(domain.SessionStateIdle, domain.SessionReasonRecordingDiscarded)
	return nil
}

// Submit uploads the held recording. It is allowed from Captured, and from
// Failed as a manual retry. The returned channel mirrors the submitter's
// results after the session has applied them.
func (s *Session) Submit(ctx context.Context) (<-chan domain.Result[domain.Interaction], error) {
	s.mu.Lock()
	switch {
	case s.state == domain.SessionStateSubmitting:
		s.mu.Unlock()
		return nil, ErrBusy
	case s.recording == nil || (s.state != domain.SessionStateCaptured && s.state != domain.SessionStateFailed):
		state := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: nothing to submit while %s", ErrInvalidTransition, state)
	}
	s.state = domain.SessionStateSubmitting
	s.failure = nil
	s.generation++
	gen := s.generation
	scenarioID := s.scenarioID
	path := s.recording.Path
	s.mu.Unlock()

	s.events.SessionStateChanged(domain.SessionStateSubmitting, domain.SessionReasonSubmitting)

	results := s.submitter.Submit(ctx, scenarioID, s.cfg.UserID, path)
	out := make(chan domain.Result[domain.Interaction], 2)
	go func() {
		defer close(out)
		for r := range results {
			if r.Terminal() && !s.applyResult(gen, r) {
				return
			}
			out <- r
		}
	}()
	return out, nil
}

// applyResult records a terminal submission result unless the session moved
// on since it was started.
func (s *Session) applyResult(gen uint64, r domain.Result[domain.Interaction]) bool {
	s.mu.Lock()
	if gen != s.generation || s.state != domain.SessionStateSubmitting {
		s.mu.Unlock()
		s.cfg.Logger.Printf("dropping stale submission result")
		return false
	}

	var emit func()
	r.Match(
		func() {},
		func(interaction domain.Interaction) {
			s.state = domain.SessionStateSucceeded
			s.interaction = &interaction
			emit = func() {
				s.events.SessionStateChanged(domain.SessionStateSucceeded, domain.SessionReasonEvaluated)
				s.events.EvaluationReady(interaction)
			}
		},
		func(failure *domain.Failure) {
			s.state = domain.SessionStateFailed
			s.failure = failure
			emit = func() {
				s.events.SessionError(failure.Kind.Code(), failure.Message)
				s.events.SessionStateChanged(domain.SessionStateFailed, domain.SessionReasonSubmissionFailed)
			}
		},
	)
	s.mu.Unlock()

	emit()
	return true
}

// Reset returns to Idle from any state: it cancels capture, deletes the held
// file and clears results. A submission still in flight is ignored.
func (s *Session) Reset() {
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()

	s.events.SessionStateChanged(domain.SessionStateIdle, domain.SessionReasonReset)
}

// Close tears the session down. Capture is always cancelled.
func (s *Session) Close() {
	if err := s.recorder.Cancel(); err != nil {
		s.cfg.Logger.Printf("cancel capture on close: %v", err)
	}
	s.Reset()
}

// Status returns a snapshot of the session.
func (s *Session) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := domain.Status{
		State:      s.state,
		Active:     s.state == domain.SessionStateRecording || s.state == domain.SessionStateSubmitting,
		ScenarioID: s.scenarioID,
	}
	if s.state == domain.SessionStateRecording {
		status.ElapsedSeconds = int(s.recorder.Elapsed() / time.Second)
	}
	if s.recording != nil {
		recording := *s.recording
		status.Recording = &recording
	}
	if s.interaction != nil {
		interaction := *s.interaction
		status.Interaction = &interaction
	}
	if s.failure != nil {
		status.Message = s.failure.Message
	}
	return status
}

// ScenarioID returns the bound scenario id.
func (s *Session) ScenarioID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scenarioID
}

func (s *Session) startCaptureLocked(ctx context.Context) error {
	if _, err := s.recorder.Start(ctx); err != nil {
		s.cfg.Logger.Printf("start recording failed: %v", err)
		return err
	}
	s.state = domain.SessionStateRecording
	s.interaction = nil
	s.failure = nil
	s.stopTicker = s.startTicker()
	return nil
}

func (s *Session) startTicker() func() {
	done := make(chan struct{})
	ticker := time.NewTicker(s.cfg.TickInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.events.RecordingTick(int(s.recorder.Elapsed() / time.Second))
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func (s *Session) haltTickerLocked() {
	if s.stopTicker != nil {
		s.stopTicker()
		s.stopTicker = nil
	}
}

func (s *Session) clearLocked() {
	s.haltTickerLocked()
	if s.state == domain.SessionStateRecording {
		if err := s.recorder.Cancel(); err != nil {
			s.cfg.Logger.Printf("cancel capture: %v", err)
		}
	}
	s.deleteRecordingLocked()
	s.interaction = nil
	s.failure = nil
	s.generation++
	s.state = domain.SessionStateIdle
}

func (s *Session) deleteRecordingLocked() {
	if s.recording == nil {
		return
	}
	if err := os.Remove(s.recording.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.cfg.Logger.Printf("delete recording %s: %v", s.recording.Path, err)
	}
	s.recording = nil
}
