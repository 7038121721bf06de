package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"rhystmorgan/onboardTerm/internal/api"
	"rhystmorgan/onboardTerm/internal/config"
	"rhystmorgan/onboardTerm/internal/i18n"
	"rhystmorgan/onboardTerm/internal/logger"
	"rhystmorgan/onboardTerm/internal/metrics"
	"rhystmorgan/onboardTerm/internal/views"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default $"+config.PathEnv+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Dir, false, cfg.Log.Debug)
	if err != nil {
		fmt.Printf("Error starting logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	translator, err := i18n.NewTranslator(cfg.Locale())
	if err != nil {
		fmt.Printf("Error loading translations: %v\n", err)
		os.Exit(1)
	}

	client, err := api.NewClient(cfg.ToAPIConfig(), log)
	if err != nil {
		fmt.Printf("Error initializing API client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := views.NewAppModel(ctx, client, translator, log)
	if err != nil {
		fmt.Printf("Error initializing application: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if addr := cfg.Metrics.ListenAddr; addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr, log); err != nil {
				log.Errorw("metrics server stopped", "err", err)
				p.Send(views.ErrorMsg{Err: fmt.Errorf("metrics endpoint: %w", err)})
			}
		}()
	}

	log.Infow("onboarding client started", "base_url", client.BaseURL(), "locale", translator.Locale())
	if _, err := p.Run(); err != nil {
		log.Errorw("program exited", "err", err)
		fmt.Printf("Error running application: %v\n", err)
		os.Exit(1)
	}
}
