package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"jscenario/internal/bootstrap"
	"jscenario/internal/config"
	"jscenario/internal/output"
	"jscenario/internal/version"
)

// ErrReported marks an error whose message was already printed.
var ErrReported = errors.New("error already reported")

type Dependencies struct {
	Services *bootstrap.Services
	Config   *config.Config
	Out      *output.Formatter
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jscenario",
		Short:         "Practice Japanese conversation scenarios",
		Long:          "Record spoken answers to Japanese role-play scenarios and get scored pronunciation, grammar and appropriateness feedback.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewScenarioCmd(deps))
	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewSubmitCmd(deps))
	rootCmd.AddCommand(NewStatsCmd(deps))
	rootCmd.AddCommand(NewDevServerCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}

// readLine waits for one line of input or for ctx to end.
func readLine(ctx context.Context, in *bufio.Reader) (string, error) {
	type line struct {
		text string
		err  error
	}
	ch := make(chan line, 1)
	go func() {
		text, err := in.ReadString('\n')
		if errors.Is(err, io.EOF) && text != "" {
			err = nil
		}
		ch <- line{text: strings.TrimSpace(text), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-ch:
		return l.text, l.err
	}
}

func confirmed(answer string) bool {
	switch strings.ToLower(answer) {
	case "", "y", "yes", "예", "네":
		return true
	default:
		return false
	}
}
