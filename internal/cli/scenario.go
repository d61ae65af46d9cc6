package cli

import (
	"context"

	"github.com/spf13/cobra"

	"jscenario/internal/domain"
)

func NewScenarioCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Show practice scenarios",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "random",
		Short: "Show a random scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := showScenario(cmd.Context(), deps, "")
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <scenario-id>",
		Short: "Show a scenario by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := showScenario(cmd.Context(), deps, args[0])
			return err
		},
	})

	return cmd
}

// showScenario fetches id, or a random scenario when id is empty, and prints it.
func showScenario(ctx context.Context, deps *Dependencies, id string) (domain.Scenario, error) {
	scenarios := deps.Services.Scenarios

	var results <-chan domain.Result[domain.Scenario]
	if id == "" {
		results = scenarios.FetchRandom(ctx)
	} else {
		results = scenarios.FetchByID(ctx, id)
	}

	var scenario domain.Scenario
	var failure *domain.Failure
	for r := range results {
		r.Match(
			deps.Out.LoadingScenario,
			func(s domain.Scenario) { scenario = s },
			func(f *domain.Failure) { failure = f },
		)
	}
	if failure != nil {
		deps.Out.Error(failure.Message)
		return domain.Scenario{}, ErrReported
	}

	deps.Out.Scenario(scenario, deps.Services.Client.ResolveURL(scenario.ImageURL))
	return scenario, nil
}
