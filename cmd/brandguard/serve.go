package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	httpadapter "brandguard/internal/adapters/http"
	"brandguard/internal/config"
	"brandguard/internal/workers/rescan"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the operator HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *cfg, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if migrate && a.db != nil {
				if err := a.db.Migrate(ctx, "up"); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}

			srv := httpadapter.New(a.brands, a.scanner, a.lifecycle)
			r := chi.NewRouter()
			r.Mount("/", srv.Routes())
			httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

			// Optional periodic rescans
			workersDone := make(chan struct{})
			go func() {
				defer close(workersDone)
				rescan.Run(ctx, a.scanner, cfg.RescanBrands, cfg.RescanWorkers, cfg.RescanInterval)
			}()
			if cfg.RescanInterval > 0 && len(cfg.RescanBrands) > 0 {
				log.Printf("rescan workers started: %d brands every %s", len(cfg.RescanBrands), cfg.RescanInterval)
			}

			errCh := make(chan error, 1)
			go func() { errCh <- httpSrv.ListenAndServe() }()
			log.Printf("listening on %s", cfg.ListenAddr)

			select {
			case <-ctx.Done():
				log.Printf("shutting down")
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server error: %w", err)
				}
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				log.Printf("shutdown: %v", err)
			}
			<-workersDone
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}
