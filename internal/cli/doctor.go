package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jscenario/internal/config"
	"jscenario/internal/domain"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := deps.Out
			ok := true

			if path, err := deps.Services.Capture.Available(); err != nil {
				f.SetupCheck("ffmpeg", false, "not found. Install ffmpeg or set JSCENARIO_FFMPEG_COMMAND")
				ok = false
			} else {
				f.SetupCheck("ffmpeg", true, path)
			}

			if deps.Config.File != "" {
				f.SetupCheck("Config file", true, deps.Config.File)
			} else {
				f.SetupCheck("Config file", true, "using defaults ("+config.FilePath()+" not found)")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			if _, err := domain.Await(deps.Services.Scenarios.FetchRandom(ctx)).Unpack(); err != nil {
				f.SetupCheck("Backend", false, fmt.Sprintf("%s unreachable: %v", deps.Services.Client.BaseURL(), err))
				ok = false
			} else {
				f.SetupCheck("Backend", true, deps.Services.Client.BaseURL())
			}

			if _, err := deps.Services.Progress.Load(cmd.Context()); err != nil {
				f.SetupCheck("Progress database", false, err.Error())
				ok = false
			} else {
				f.SetupCheck("Progress database", true, deps.Config.Progress.DBPath)
			}

			f.SetupCheck("Language", true, deps.Services.Translator.Language())

			if ok {
				f.Success("All prerequisites met. Ready to practice!")
			} else {
				f.Warning("Some prerequisites are missing.")
			}
			return nil
		},
	}
}
