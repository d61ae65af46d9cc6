package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"jscenario/internal/devserver"
)

func NewDevServerCmd(deps *Dependencies) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Run a local stand-in for the scenario backend",
		Long:  "Serve built-in scenarios and deterministic evaluations under /api so the client can be used without the real backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			logger := log.New(cmd.ErrOrStderr(), "dev-server: ", log.LstdFlags|log.Lmsgprefix)
			srv := &http.Server{
				Addr:              addr,
				Handler:           devserver.New(devserver.WithLogger(logger)).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			deps.Out.Info("Serving http://" + addr + "/api/")

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "Listen address")

	return cmd
}
