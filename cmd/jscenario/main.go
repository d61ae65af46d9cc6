package main

import (
	"errors"
	"fmt"
	"os"

	"jscenario/internal/bootstrap"
	"jscenario/internal/cli"
	"jscenario/internal/config"
	"jscenario/internal/output"
)

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, cli.ErrReported) {
			formatter := output.NewFormatter(os.Stderr)
			formatter.Error(err.Error())
		}
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	formatter := output.NewFormatter(os.Stdout)
	services, err := bootstrap.BuildWith(cfg, formatter)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	defer services.Close()
	formatter.SetTranslator(services.Translator)

	deps := &cli.Dependencies{
		Services: &services,
		Config:   &cfg,
		Out:      formatter,
	}

	return cli.NewRootCmd(deps).Execute()
}
