package usecase

import (
	"context"
	"io"
	"log"

	"jscenario/internal/domain"
	"jscenario/internal/ports"
)

// SubmitterConfig controls upload validation.
type SubmitterConfig struct {
	Limits UploadLimits
	Logger *log.Logger
}

// InteractionSubmitter validates a recording and uploads it for evaluation.
type InteractionSubmitter struct {
	api    ports.InteractionAPI
	errs   failureMapper
	limits UploadLimits
	logger *log.Logger
}

func NewInteractionSubmitter(api ports.InteractionAPI, tr ports.Translator, cfg SubmitterConfig) *InteractionSubmitter {
	if tr == nil {
		tr = passthroughTranslator{}
	}
	if cfg.Limits.MaxBytes <= 0 {
		cfg.Limits = DefaultUploadLimits()
	}
	if cfg.Limits.MaxBytes > domain.MaxUploadBytes {
		cfg.Limits.MaxBytes = domain.MaxUploadBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	return &InteractionSubmitter{api: api, errs: failureMapper{tr: tr}, limits: cfg.Limits, logger: cfg.Logger}
}

// Submit emits Loading, then exactly one terminal result, then closes the
// channel. Validation failures never reach the network.
func (s *InteractionSubmitter) Submit(ctx context.Context, scenarioID, userID, audioPath string) <-chan domain.Result[domain.Interaction] {
	out := make(chan domain.Result[domain.Interaction], 2)
	out <- domain.Loading[domain.Interaction]()

	go func() {
		defer close(out)
		out <- s.submit(ctx, scenarioID, userID, audioPath)
	}()
	return out
}

func (s *InteractionSubmitter) submit(ctx context.Context, scenarioID, userID, audioPath string) domain.Result[domain.Interaction] {
	if err := s.Validate(scenarioID, audioPath); err != nil {
		s.logger.Printf("submission rejected before upload: %v", err)
		return domain.Failed[domain.Interaction](s.errs.fromError(err))
	}

	interaction, err := s.api.CreateInteraction(ctx, ports.InteractionUpload{
		ScenarioID: scenarioID,
		UserID:     SanitizeUserID(userID),
		AudioPath:  audioPath,
	})
	if err != nil {
		s.logger.Printf("submission for %s failed: %v", scenarioID, err)
		return domain.Failed[domain.Interaction](s.errs.fromError(err))
	}
	return domain.Success(interaction)
}

// Validate runs the pre-upload checks in order: scenario id, then file.
func (s *InteractionSubmitter) Validate(scenarioID, audioPath string) error {
	if err := ValidateScenarioID(scenarioID); err != nil {
		return err
	}
	return ValidateAudioFile(audioPath, s.limits)
}
