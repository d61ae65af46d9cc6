package bootstrap

import (
	"io"
	"log"
	"os"

	"jscenario/internal/audio"
	"jscenario/internal/config"
	"jscenario/internal/i18n"
	"jscenario/internal/ports"
	"jscenario/internal/providers/jscenario"
	"jscenario/internal/storage"
	"jscenario/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Config     config.Config
	Translator *i18n.Translator
	Client     *jscenario.Client
	Capture    *audio.FFMPEGCapture
	Session    *usecase.Session
	Submitter  *usecase.InteractionSubmitter
	Scenarios  *usecase.ScenarioProvider
	Progress   *usecase.ProgressTracker
	Feedback   *usecase.Feedback
	Logger     *log.Logger

	store *storage.Store
}

// Close releases the progress database.
func (s Services) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}
	return BuildWith(cfg, eventSink)
}

// BuildWith wires the runtime graph from an already loaded configuration.
func BuildWith(cfg config.Config, eventSink ports.EventSink) (Services, error) {
	logger := newLogger(cfg.Debug)
	tr := i18n.New(cfg.Language)

	client, err := jscenario.NewClient(jscenario.Config{
		BaseURL:        cfg.API.BaseURL,
		ConnectTimeout: cfg.API.ConnectTimeout,
		ReadTimeout:    cfg.API.ReadTimeout,
		WriteTimeout:   cfg.API.WriteTimeout,
		Logger:         logger,
	})
	if err != nil {
		return Services{}, err
	}

	store, err := storage.Open(cfg.Progress.DBPath)
	if err != nil {
		return Services{}, err
	}

	capture := audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand)
	recorder := audio.NewRecorder(capture, audio.RecorderConfig{
		Audio: ports.AudioConfig{
			InputFormat: cfg.Audio.InputFormat,
			InputDevice: cfg.Audio.InputDevice,
		},
		TempDir:   cfg.Audio.TempDir,
		ChunkSize: cfg.Audio.ChunkSize,
		Logger:    logger,
	})

	submitter := usecase.NewInteractionSubmitter(client, tr, usecase.SubmitterConfig{
		Limits: usecase.UploadLimits{MinBytes: cfg.Upload.MinBytes, MaxBytes: cfg.Upload.MaxBytes},
		Logger: logger,
	})
	session := usecase.NewSession(recorder, submitter, eventSink, tr, usecase.SessionConfig{
		UserID:       cfg.Session.UserID,
		TickInterval: cfg.Session.TickInterval,
		Logger:       logger,
	})
	progress := usecase.NewProgressTracker(store, cfg.Progress.DailyGoal, nil)

	return Services{
		Config:     cfg,
		Translator: tr,
		Client:     client,
		Capture:    capture,
		Session:    session,
		Submitter:  submitter,
		Scenarios:  usecase.NewScenarioProvider(client, tr, logger),
		Progress:   progress,
		Feedback:   usecase.NewFeedback(cfg.Chapters, progress),
		Logger:     logger,
		store:      store,
	}, nil
}

func newLogger(debug bool) *log.Logger {
	if !debug {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "jscenario: ", log.LstdFlags|log.Lmsgprefix)
}
