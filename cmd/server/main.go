// Command server runs the career-platform REST API.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/pathforge/platform/internal/app"
	"github.com/pathforge/platform/internal/app/httpapi"
	"github.com/pathforge/platform/internal/app/storage/postgres"
	supastore "github.com/pathforge/platform/internal/app/storage/supabase"
	"github.com/pathforge/platform/internal/config"
	"github.com/pathforge/platform/internal/logging"
	"github.com/pathforge/platform/internal/metrics"
	"github.com/pathforge/platform/internal/middleware"
	"github.com/pathforge/platform/internal/pending"
	"github.com/pathforge/platform/internal/platform/migrations"
	"github.com/pathforge/platform/internal/session"
	"github.com/pathforge/platform/internal/supabase"
)

func main() {
	_ = godotenv.Load()

	log := logging.NewDefault("server")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logging.Logger) error {
	m := metrics.New()

	var (
		stores   app.Stores
		sessions *session.Manager
		auth     *middleware.Auth
	)

	switch cfg.Storage.Backend {
	case "supabase":
		client, err := supabase.New(supabase.Config{
			ProjectURL: cfg.Supabase.URL,
			AnonKey:    cfg.Supabase.AnonKey,
			ServiceKey: cfg.Supabase.ServiceKey,
			Timeout:    cfg.Supabase.Timeout,
		})
		if err != nil {
			return err
		}
		store := supastore.New(client, cfg.Supabase.ServiceKey)
		stores = app.Stores{
			Profiles:           store,
			Assessments:        store,
			SavedOpportunities: store,
			JobApplications:    store,
			GrantApplications:  store,
		}
		sessions = session.NewManager(client.Auth(), log)

	case "postgres":
		db, err := sql.Open("postgres", cfg.Storage.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			return err
		}
		if err := migrations.Apply(context.Background(), db); err != nil {
			return err
		}
		store := postgres.New(db)
		stores = app.Stores{
			Profiles:           store,
			Assessments:        store,
			SavedOpportunities: store,
			JobApplications:    store,
			GrantApplications:  store,
		}

	case "memory":
		// app.New fills in the shared in-memory store.
	}

	if cfg.Supabase.JWTSecret != "" {
		auth = middleware.NewAuth(cfg.Supabase.JWTSecret, log)
	}

	// The pending buffer holds one slot for the whole process. That matches
	// the one-client-per-process deployment this serves; with many anonymous
	// clients behind one server, a buffered assessment would replay into
	// whichever account signs in next.
	application := app.New(app.Options{
		Stores:   stores,
		Sessions: session.ContextFirst{Manager: sessions},
		Pending:  pending.NewFile(cfg.Pending.Path),
		Metrics:  m,
		Logger:   log,
	})

	handler := httpapi.New(application, sessions, auth, log)
	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTP.Addr).WithField("backend", cfg.Storage.Backend).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}
