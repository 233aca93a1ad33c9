package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"brandguard/internal/adapters/memory"
	pg "brandguard/internal/adapters/postgres"
	"brandguard/internal/adapters/serpapi"
	"brandguard/internal/config"
	"brandguard/internal/ports"
	"brandguard/internal/services/analyzer"
	brandsvc "brandguard/internal/services/brands"
	"brandguard/internal/services/lifecycle"
	scansvc "brandguard/internal/services/scanner"
)

func newRootCmd() *cobra.Command {
	var cfg config.Config
	root := &cobra.Command{
		Use:          "brandguard",
		Short:        "Find and track websites impersonating a brand in search results",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}
	root.AddCommand(
		newServeCmd(&cfg),
		newMigrateCmd(&cfg),
		newScanCmd(&cfg),
		newBrandCmd(&cfg),
		newExportCmd(&cfg),
	)
	return root
}

// app holds the wired services for one process.
type app struct {
	cfg       config.Config
	db        *pg.DB
	store     ports.Store
	brands    *brandsvc.Service
	lifecycle *lifecycle.Service
	scanner   *scansvc.Service
}

var errNoDatabase = errors.New("DATABASE_URL is required for this command")

// newApp connects the store and builds the services. allowMemory lets a
// development server run without Postgres.
func newApp(ctx context.Context, cfg config.Config, allowMemory bool) (*app, error) {
	a := &app{cfg: cfg}
	switch {
	case cfg.DatabaseURL != "":
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.db, a.store = db, db
	case allowMemory && !cfg.Production():
		log.Printf("DATABASE_URL not set, using in-memory store")
		a.store = memory.New()
	default:
		return nil, errNoDatabase
	}

	provider := serpapi.New(cfg.SerpAPIEndpoint, cfg.SerpAPIKey, &http.Client{Timeout: cfg.ProviderTimeout})
	orch := scansvc.NewOrchestrator(provider, scansvc.NewRatePacer(cfg.PageDelay), cfg.ProviderTimeout)

	a.brands = brandsvc.New(a.store)
	a.lifecycle = lifecycle.New(a.store, a.store, a.store, a.store)
	a.scanner = scansvc.New(a.store, a.store, a.lifecycle, orch, analyzer.New(nil), scansvc.Defaults{
		Geolocation: cfg.DefaultGeolocation,
		Pages:       cfg.DefaultPages,
		MaxPages:    cfg.MaxPages,
		Timeout:     cfg.ScanTimeout,
	})
	if cfg.SerpAPIKey == "" {
		log.Printf("warning: SERPAPI_KEY not set, scans will fail")
	}
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
