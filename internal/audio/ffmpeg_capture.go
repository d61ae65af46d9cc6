package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"jscenario/internal/ports"
)

// ErrMicrophoneUnavailable wraps every failure to open the input device.
var ErrMicrophoneUnavailable = errors.New("microphone unavailable")

const (
	startupProbe    = 250 * time.Millisecond
	stopGrace       = 1200 * time.Millisecond
	stderrTailBytes = 2048
)

// FFMPEGCapture records raw PCM from the microphone by running ffmpeg.
type FFMPEGCapture struct {
	command string
	goos    string
}

func NewFFMPEGCapture(command string) *FFMPEGCapture {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGCapture{command: command, goos: runtime.GOOS}
}

// Available reports whether the ffmpeg binary can be found.
func (c *FFMPEGCapture) Available() (string, error) {
	path, err := exec.LookPath(c.command)
	if err != nil {
		return "", fmt.Errorf("ffmpeg not found (%s): %w", c.command, err)
	}
	return path, nil
}

// DefaultInput returns the platform's ffmpeg input format and device.
func DefaultInput(goos string) (format string, device string) {
	switch goos {
	case "darwin":
		return "avfoundation", ":0"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "pulse", "default"
	}
}

// captureArgs builds an ffmpeg invocation that writes s16le PCM to stdout.
func (c *FFMPEGCapture) captureArgs(cfg ports.AudioConfig) []string {
	format, device := DefaultInput(c.goos)
	if cfg.InputFormat != "" {
		format = cfg.InputFormat
	}
	if cfg.InputDevice != "" {
		device = cfg.InputDevice
	}
	rate, channels := cfg.SampleRate, cfg.Channels
	if rate <= 0 {
		rate = SpeechFormat.SampleRate
	}
	if channels <= 0 {
		channels = SpeechFormat.Channels
	}

	return []string{
		"-nostdin", "-hide_banner", "-loglevel", "warning",
		"-f", format, "-i", device,
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(rate),
		"-f", "s16le", "-",
	}
}

// Start launches ffmpeg and waits briefly so a missing or busy device is
// reported here rather than as an empty recording.
func (c *FFMPEGCapture) Start(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	stderr := &tailBuffer{limit: stderrTailBytes}
	cmd := exec.CommandContext(ctx, c.command, c.captureArgs(cfg)...)
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %v", ErrMicrophoneUnavailable, c.command, err)
	}

	p := &ffmpegProcess{cmd: cmd, stdout: stdout, stderr: stderr, done: make(chan struct{})}
	go p.wait()

	select {
	case <-p.done:
		msg := "ffmpeg exited before capture started"
		if p.exitErr != nil {
			msg += ": " + p.exitErr.Error()
		}
		return nil, fmt.Errorf("%w: %s%s", ErrMicrophoneUnavailable, msg, p.stderrSuffix())
	case <-time.After(startupProbe):
	}
	return p, nil
}

// ffmpegProcess is one running capture. exitErr is written once before done
// is closed.
type ffmpegProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *tailBuffer

	done    chan struct{}
	exitErr error

	stopOnce sync.Once
	stopErr  error
}

func (p *ffmpegProcess) wait() {
	p.exitErr = p.cmd.Wait()
	close(p.done)
}

func (p *ffmpegProcess) Read(b []byte) (int, error) {
	return p.stdout.Read(b)
}

func (p *ffmpegProcess) Close() error {
	return p.Stop()
}

func (p *ffmpegProcess) Stop() error {
	p.stopOnce.Do(func() { p.stopErr = p.terminate() })
	return p.stopErr
}

// terminate asks ffmpeg to flush with SIGINT and kills it after stopGrace.
func (p *ffmpegProcess) terminate() error {
	_ = p.cmd.Process.Signal(os.Interrupt)
	select {
	case <-p.done:
	case <-time.After(stopGrace):
		_ = p.cmd.Process.Kill()
		<-p.done
	}

	err := normalizeStopErr(p.exitErr)
	if closeErr := p.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) && err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("stop ffmpeg: %w%s", err, p.stderrSuffix())
	}
	return nil
}

func (p *ffmpegProcess) stderrSuffix() string {
	if tail := p.stderr.String(); tail != "" {
		return ": " + tail
	}
	return ""
}

// normalizeStopErr drops exit statuses; ffmpeg exits non-zero on SIGINT.
func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

// tailBuffer keeps the last limit bytes written to it. The exec copier writes
// while Start or Stop may read.
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; b.limit > 0 && over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(string(b.buf))
}
