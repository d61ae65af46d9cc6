package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"jscenario/internal/domain"
	"jscenario/internal/ports"
)

var (
	ErrAlreadyRecording = errors.New("a recording is already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
)

// RecorderConfig controls where and how recordings are written.
type RecorderConfig struct {
	Audio     ports.AudioConfig
	TempDir   string
	ChunkSize int
	Logger    *log.Logger
	Now       func() time.Time
}

// Recorder writes one microphone capture at a time into a WAV file.
type Recorder struct {
	capture ports.AudioCapture
	cfg     RecorderConfig
	format  Format

	mu      sync.Mutex
	current *recording
}

type recording struct {
	path    string
	file    *os.File
	session ports.AudioSession
	cancel  context.CancelFunc
	started time.Time

	pumpDone chan struct{}
	written  int64
	pumpErr  error
}

func NewRecorder(capture ports.AudioCapture, cfg RecorderConfig) *Recorder {
	if cfg.TempDir == "" {
		cfg.TempDir = filepath.Join(os.TempDir(), "jscenario")
	}
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.Audio.SampleRate = SpeechFormat.SampleRate
	cfg.Audio.Channels = SpeechFormat.Channels
	return &Recorder{capture: capture, cfg: cfg, format: SpeechFormat}
}

// Start begins a capture and returns the path of the file being written.
func (r *Recorder) Start(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		return r.current.path, ErrAlreadyRecording
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.cfg.TempDir, 0o700); err != nil {
		return "", fmt.Errorf("create recording dir: %w", err)
	}
	path := filepath.Join(r.cfg.TempDir, "recording_"+uuid.NewString()+".wav")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		return "", fmt.Errorf("create recording file: %w", err)
	}
	if err := WriteWAVHeader(file, r.format, 0); err != nil {
		discardFile(file)
		return "", fmt.Errorf("write wav header: %w", err)
	}

	// The capture outlives the caller's context; Stop and Cancel end it.
	captureCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	session, err := r.capture.Start(captureCtx, r.cfg.Audio)
	if err != nil {
		cancel()
		discardFile(file)
		return "", fmt.Errorf("start audio capture: %w", err)
	}

	rec := &recording{
		path:     path,
		file:     file,
		session:  session,
		cancel:   cancel,
		started:  r.cfg.Now(),
		pumpDone: make(chan struct{}),
	}
	r.current = rec
	go pumpToFile(rec, r.cfg.ChunkSize)

	r.cfg.Logger.Printf("recording started: %s", path)
	return path, nil
}

// Stop finalizes the WAV file and hands it to the caller.
func (r *Recorder) Stop() (domain.RecordedAudio, error) {
	rec, err := r.take()
	if err != nil {
		return domain.RecordedAudio{}, err
	}

	stopErr := rec.finish()
	if rec.pumpErr != nil {
		discardFile(rec.file)
		return domain.RecordedAudio{}, fmt.Errorf("write recording: %w", rec.pumpErr)
	}
	if stopErr != nil {
		r.cfg.Logger.Printf("audio capture did not stop cleanly: %v", stopErr)
	}

	dataSize := rec.written - rec.written%int64(r.format.blockAlign())
	if err := rec.file.Truncate(WAVHeaderSize + dataSize); err != nil {
		discardFile(rec.file)
		return domain.RecordedAudio{}, fmt.Errorf("truncate recording: %w", err)
	}
	if _, err := rec.file.Seek(0, io.SeekStart); err != nil {
		discardFile(rec.file)
		return domain.RecordedAudio{}, fmt.Errorf("rewind recording: %w", err)
	}
	if err := WriteWAVHeader(rec.file, r.format, uint32(dataSize)); err != nil {
		discardFile(rec.file)
		return domain.RecordedAudio{}, fmt.Errorf("finalize wav header: %w", err)
	}
	if err := rec.file.Close(); err != nil {
		_ = os.Remove(rec.path)
		return domain.RecordedAudio{}, fmt.Errorf("close recording: %w", err)
	}

	out := domain.RecordedAudio{
		Path:          rec.path,
		Encoding:      "pcm_s16le",
		SampleRate:    r.format.SampleRate,
		Channels:      r.format.Channels,
		BitsPerSample: r.format.BitsPerSample,
		Size:          WAVHeaderSize + dataSize,
		Duration:      time.Duration(dataSize) * time.Second / time.Duration(r.format.ByteRate()),
	}
	r.cfg.Logger.Printf("recording finished: %s (%d bytes, %s)", out.Path, out.Size, out.Duration)
	return out, nil
}

// Cancel stops any active capture and deletes its file. It is safe to call
// when nothing is recording.
func (r *Recorder) Cancel() error {
	rec, err := r.take()
	if errors.Is(err, ErrNotRecording) {
		return nil
	}
	_ = rec.finish()
	discardFile(rec.file)
	r.cfg.Logger.Printf("recording cancelled: %s", rec.path)
	return nil
}

// Active reports whether a capture is in progress.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

// Elapsed returns the time since the active capture started, or zero.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return 0
	}
	elapsed := r.cfg.Now().Sub(r.current.started)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (r *Recorder) take() (*recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil, ErrNotRecording
	}
	rec := r.current
	r.current = nil
	return rec, nil
}

// finish stops the capture and waits for the pump to drain.
func (rec *recording) finish() error {
	err := rec.session.Stop()
	rec.cancel()
	<-rec.pumpDone
	return err
}

func pumpToFile(rec *recording, chunkSize int) {
	defer close(rec.pumpDone)

	buf := make([]byte, chunkSize)
	for {
		n, err := rec.session.Read(buf)
		if n > 0 {
			if _, writeErr := rec.file.Write(buf[:n]); writeErr != nil {
				rec.pumpErr = writeErr
				return
			}
			rec.written += int64(n)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				rec.pumpErr = err
			}
			return
		}
	}
}

func discardFile(file *os.File) {
	name := file.Name()
	_ = file.Close()
	_ = os.Remove(name)
}
