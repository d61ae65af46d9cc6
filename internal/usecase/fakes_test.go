package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"jscenario/internal/domain"
	"jscenario/internal/ports"
)

type fakeRecorder struct {
	dir      string
	startErr error
	stopErr  error

	mu      sync.Mutex
	active  string
	starts  int
	cancels int
	elapsed time.Duration
}

func (f *fakeRecorder) Start(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return "", f.startErr
	}
	if f.active != "" {
		return f.active, errors.New("already recording")
	}
	f.starts++
	path := filepath.Join(f.dir, fmt.Sprintf("take_%d.wav", f.starts))
	if err := os.WriteFile(path, make([]byte, 4096), 0o600); err != nil {
		return "", err
	}
	f.active = path
	return path, nil
}

func (f *fakeRecorder) Stop() (domain.RecordedAudio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == "" {
		return domain.RecordedAudio{}, errors.New("not recording")
	}
	path := f.active
	f.active = ""
	if f.stopErr != nil {
		_ = os.Remove(path)
		return domain.RecordedAudio{}, f.stopErr
	}
	return domain.RecordedAudio{Path: path, Encoding: "pcm_s16le", SampleRate: 16000, Channels: 1, BitsPerSample: 16, Size: 4096}, nil
}

func (f *fakeRecorder) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	if f.active != "" {
		_ = os.Remove(f.active)
		f.active = ""
	}
	return nil
}

func (f *fakeRecorder) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active != ""
}

func (f *fakeRecorder) Elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == "" {
		return 0
	}
	return f.elapsed
}

// fakeSubmitter hands each submission a channel the test completes.
type fakeSubmitter struct {
	mu      sync.Mutex
	calls   []submitCall
	pending []chan domain.Result[domain.Interaction]
}

type submitCall struct {
	scenarioID string
	userID     string
	path       string
}

func (f *fakeSubmitter) Submit(_ context.Context, scenarioID, userID, audioPath string) <-chan domain.Result[domain.Interaction] {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan domain.Result[domain.Interaction], 2)
	ch <- domain.Loading[domain.Interaction]()
	f.calls = append(f.calls, submitCall{scenarioID: scenarioID, userID: userID, path: audioPath})
	f.pending = append(f.pending, ch)
	return ch
}

func (f *fakeSubmitter) complete(i int, r domain.Result[domain.Interaction]) {
	f.mu.Lock()
	ch := f.pending[i]
	f.mu.Unlock()
	ch <- r
	close(ch)
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeInteractionAPI struct {
	mu          sync.Mutex
	calls       int
	interaction domain.Interaction
	err         error
}

func (f *fakeInteractionAPI) CreateInteraction(_ context.Context, upload ports.InteractionUpload) (domain.Interaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return domain.Interaction{}, f.err
	}
	out := f.interaction
	out.ScenarioID = upload.ScenarioID
	return out, nil
}

func (f *fakeInteractionAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeScenarioAPI struct {
	scenarios map[string]domain.Scenario
	err       error
}

func (f *fakeScenarioAPI) RandomScenario(ctx context.Context) (domain.Scenario, error) {
	return f.ScenarioByID(ctx, "scenario_001_1")
}

func (f *fakeScenarioAPI) ScenarioByID(_ context.Context, id string) (domain.Scenario, error) {
	if f.err != nil {
		return domain.Scenario{}, f.err
	}
	s, ok := f.scenarios[id]
	if !ok {
		return domain.Scenario{}, &domain.StatusError{StatusCode: 404}
	}
	return s, nil
}

type memStore struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) SetMany(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

type fakeEventSink struct {
	mu sync.Mutex

	states      []stateEvent
	ticks       []int
	evaluations []domain.Interaction
	errors      []errEvent
}

type stateEvent struct {
	state  domain.SessionState
	reason domain.SessionStateReason
}

type errEvent struct {
	code   domain.ErrorCode
	detail string
}

func (f *fakeEventSink) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, stateEvent{state: state, reason: reason})
}

func (f *fakeEventSink) RecordingTick(seconds int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticks = append(f.ticks, seconds)
}

func (f *fakeEventSink) EvaluationReady(interaction domain.Interaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evaluations = append(f.evaluations, interaction)
}

func (f *fakeEventSink) SessionError(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, errEvent{code: code, detail: detail})
}

func (f *fakeEventSink) snapshotStates() []stateEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]stateEvent, len(f.states))
	copy(out, f.states)
	return out
}

func (f *fakeEventSink) snapshotErrors() []errEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]errEvent, len(f.errors))
	copy(out, f.errors)
	return out
}

func (f *fakeEventSink) tickCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ticks)
}

func (f *fakeEventSink) lastState() stateEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.states) == 0 {
		return stateEvent{}
	}
	return f.states[len(f.states)-1]
}
