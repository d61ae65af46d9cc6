package cli

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"jscenario/internal/domain"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	var scenarioID string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record an answer to a scenario and get feedback",
		Long:  "Fetch a scenario, record from the microphone until Enter is pressed, then submit the recording for evaluation.\nWhen the scenario has further chapters you are offered to continue with the next one.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			in := bufio.NewReader(cmd.InOrStdin())
			return runPractice(ctx, deps, in, scenarioID)
		},
	}

	cmd.Flags().StringVarP(&scenarioID, "scenario", "s", "", "Scenario id (random when empty)")

	return cmd
}

// runPractice records and evaluates scenarioID, following chapters for as
// long as the learner agrees.
func runPractice(ctx context.Context, deps *Dependencies, in *bufio.Reader, scenarioID string) error {
	session := deps.Services.Session
	defer session.Close()

	for {
		scenario, err := showScenario(ctx, deps, scenarioID)
		if err != nil {
			return err
		}
		session.SetScenario(scenario.ID)

		interaction, err := recordAndSubmit(ctx, deps, in)
		if err != nil {
			return err
		}

		view := deps.Services.Feedback.Show(interaction)
		deps.Out.Feedback(view)

		if !view.HasNextChapter {
			return finishScenario(ctx, deps)
		}

		deps.Out.Prompt(deps.Services.Translator.T("prompt_next_chapter", nil))
		answer, err := readLine(ctx, in)
		if err != nil || !confirmed(answer) {
			deps.Out.Info(deps.Services.Translator.T("status_chapter_skipped", nil))
			return nil
		}
		next, err := deps.Services.Feedback.Advance()
		if err != nil {
			return err
		}
		scenarioID = next
	}
}

func recordAndSubmit(ctx context.Context, deps *Dependencies, in *bufio.Reader) (domain.Interaction, error) {
	session := deps.Services.Session

	if err := session.BeginRecording(ctx); err != nil {
		deps.Services.Logger.Printf("begin recording: %v", err)
		return domain.Interaction{}, ErrReported
	}
	if _, err := readLine(ctx, in); err != nil {
		session.Reset()
		return domain.Interaction{}, err
	}

	audio, err := session.EndRecording()
	if err != nil {
		deps.Services.Logger.Printf("end recording: %v", err)
		return domain.Interaction{}, ErrReported
	}
	deps.Out.RecordingCaptured(audio)

	for {
		results, err := session.Submit(ctx)
		if err != nil {
			return domain.Interaction{}, err
		}
		interaction, err := domain.Await(results).Unpack()
		if err == nil {
			return interaction, nil
		}
		failure, ok := domain.AsFailure(err)
		if !ok {
			return domain.Interaction{}, err
		}
		if !retryable(failure) {
			return domain.Interaction{}, ErrReported
		}

		deps.Out.Prompt(deps.Services.Translator.T("prompt_retry", nil))
		answer, err := readLine(ctx, in)
		if err != nil || !confirmed(answer) {
			return domain.Interaction{}, ErrReported
		}
	}
}

// retryable reports whether resubmitting the same recording can succeed.
func retryable(f *domain.Failure) bool {
	return f.Kind != domain.ErrorKindValidation
}

// finishScenario leaves the feedback as a completed scenario.
func finishScenario(ctx context.Context, deps *Dependencies) error {
	result, err := deps.Services.Feedback.Continue(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		deps.Services.Logger.Printf("record completion: %v", err)
		deps.Out.Warning(deps.Services.Translator.T("error_progress", nil))
	}
	if result.Completed {
		deps.Out.Completed(result.Stats)
	}
	return nil
}
