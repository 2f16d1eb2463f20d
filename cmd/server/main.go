// Home planner dashboard server
//
// Usage:
//
//	server                      Start the HTTP server
//	server -config planner.hcl  Use a specific config file
//	server -migrate             Run database migrations and exit
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homeplanner/homeplanner/internal/aggregator"
	"github.com/homeplanner/homeplanner/internal/api"
	"github.com/homeplanner/homeplanner/internal/audit"
	"github.com/homeplanner/homeplanner/internal/auth"
	"github.com/homeplanner/homeplanner/internal/config"
	"github.com/homeplanner/homeplanner/internal/db"
	"github.com/homeplanner/homeplanner/internal/report"
	"github.com/homeplanner/homeplanner/internal/source"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the HCL config file")
	migrateOnly := flag.Bool("migrate", false, "Run migrations and exit")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Failure reporting
	reporters := report.Multi{report.Log{}}
	if cfg.RollbarToken != "" {
		host, _ := os.Hostname()
		rb := report.NewRollbar(cfg.RollbarToken, cfg.Environment, version, host)
		defer rb.Close()
		reporters = append(reporters, rb)
		log.Println("Rollbar reporting enabled")
	}

	// Login-attempt store: PostgreSQL when configured, memory otherwise
	var (
		store  audit.Store
		pinger api.Pinger
	)
	if cfg.DatabaseURL != "" {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		if err := database.RunMigrations(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations complete")
		store, pinger = database, database
	} else {
		if *migrateOnly {
			log.Fatalf("DATABASE_URL is required for -migrate")
		}
		log.Println("No DATABASE_URL set, keeping login attempts in memory")
		store = audit.NewMemoryStore(db.MaxAttemptLimit)
	}

	if *migrateOnly {
		log.Println("Migration-only mode, exiting")
		return
	}

	if len(cfg.AccessCodes) == 0 {
		log.Println("Warning: no access codes configured, nobody can log in")
	}

	authSvc := auth.New(cfg.JWTSecret, cfg.AuthCodes())
	auditSvc := audit.NewLogger(store, reporters)
	client := source.New(cfg.APIBaseURL, "", &http.Client{Timeout: cfg.APITimeout})

	apiServer := api.NewServer(api.Options{
		Auth:  authSvc,
		Audit: auditSvc,
		Source: func(token string) aggregator.Source {
			return client.WithToken(token)
		},
		Reporter:     reporters,
		ServiceToken: cfg.APIToken,
		Location:     cfg.Location,
		CORSOrigins:  cfg.CORSOrigins,
		DB:           pinger,
	})

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      apiServer.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.APITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Planner dashboard server starting on %s (data API %s, zone %s)",
			cfg.ListenAddr, cfg.APIBaseURL, cfg.Location)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
