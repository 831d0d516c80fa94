package main

import (
	"context"
	"fmt"

	log "github.com/charmbracelet/log"
	"github.com/contabank/contabank/infra/initializer"
	"github.com/contabank/contabank/pkg/app"
	"github.com/contabank/contabank/pkg/config"
	"github.com/contabank/contabank/webapi"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	application := app.New(deps)
	if err := application.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start session store: %w", err)
	}
	defer application.Stop()

	deps.Logger.Info(
		"starting server",
		"env", cfg.Env,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	fiberApp := webapi.SetupApp(application)
	return fiberApp.Listen(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
}
