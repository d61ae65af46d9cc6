package usecase

import (
	"context"
	"io"
	"log"

	"jscenario/internal/domain"
	"jscenario/internal/ports"
)

// ScenarioProvider fetches scenarios into tri-state results.
type ScenarioProvider struct {
	api    ports.ScenarioAPI
	errs   failureMapper
	logger *log.Logger
}

func NewScenarioProvider(api ports.ScenarioAPI, tr ports.Translator, logger *log.Logger) *ScenarioProvider {
	if tr == nil {
		tr = passthroughTranslator{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &ScenarioProvider{api: api, errs: failureMapper{tr: tr}, logger: logger}
}

func (p *ScenarioProvider) FetchRandom(ctx context.Context) <-chan domain.Result[domain.Scenario] {
	return p.fetch(ctx, "random", p.api.RandomScenario)
}

func (p *ScenarioProvider) FetchByID(ctx context.Context, id string) <-chan domain.Result[domain.Scenario] {
	return p.fetch(ctx, id, func(ctx context.Context) (domain.Scenario, error) {
		return p.api.ScenarioByID(ctx, id)
	})
}

func (p *ScenarioProvider) fetch(
	ctx context.Context,
	label string,
	call func(context.Context) (domain.Scenario, error),
) <-chan domain.Result[domain.Scenario] {
	out := make(chan domain.Result[domain.Scenario], 2)
	out <- domain.Loading[domain.Scenario]()

	go func() {
		defer close(out)
		scenario, err := call(ctx)
		if err != nil {
			p.logger.Printf("fetch scenario %s failed: %v", label, err)
			out <- domain.Failed[domain.Scenario](p.errs.fromError(err))
			return
		}
		out <- domain.Success(scenario)
	}()
	return out
}
