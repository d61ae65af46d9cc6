package cli

import (
	"github.com/spf13/cobra"

	"jscenario/internal/domain"
)

func NewSubmitCmd(deps *Dependencies) *cobra.Command {
	var scenarioID string

	cmd := &cobra.Command{
		Use:   "submit <audio-file>",
		Short: "Submit an existing recording for evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			results := deps.Services.Submitter.Submit(ctx, scenarioID, deps.Config.Session.UserID, args[0])

			var interaction domain.Interaction
			var failure *domain.Failure
			for r := range results {
				r.Match(
					func() { deps.Out.SessionStateChanged(domain.SessionStateSubmitting, domain.SessionReasonSubmitting) },
					func(i domain.Interaction) { interaction = i },
					func(f *domain.Failure) { failure = f },
				)
			}
			if failure != nil {
				deps.Out.Error(failure.Message)
				return ErrReported
			}

			view := deps.Services.Feedback.Show(interaction)
			deps.Out.Feedback(view)
			if view.HasNextChapter {
				return nil
			}
			return finishScenario(ctx, deps)
		},
	}

	cmd.Flags().StringVarP(&scenarioID, "scenario", "s", "", "Scenario id the recording answers")
	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}
