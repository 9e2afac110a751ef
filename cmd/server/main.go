package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/qnetdash/quorum-dashboard-be/internal/auth"
	"github.com/qnetdash/quorum-dashboard-be/internal/bootstrap"
	"github.com/qnetdash/quorum-dashboard-be/internal/config"
	"github.com/qnetdash/quorum-dashboard-be/internal/server"
	"github.com/qnetdash/quorum-dashboard-be/internal/storage/postgres"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer store.Close()

	// First-run seeding must finish before the server accepts traffic:
	// node records reference the admin user, and the auth flow expects the
	// default accounts to exist.
	hasher := auth.NewHasher(auth.DefaultBcryptCost)
	result, err := bootstrap.Run(ctx, store, hasher, bootstrap.ConfigFromEnv())
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	log.Printf("bootstrap: users seeded=%t, nodes seeded=%t", result.UsersSeeded, result.NodesSeeded)

	srv := server.New(cfg, store)

	go func() {
		log.Printf("quorum dashboard backend listening on %s", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
