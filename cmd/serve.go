package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/desertthunder/reel/internal/favorites"
	"github.com/desertthunder/reel/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the REST API and the favorites socket until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	movies, err := r.movieService()
	if err != nil {
		return err
	}
	engine, err := r.discoveryEngine()
	if err != nil {
		return err
	}

	store, _ := r.favoritesStore(ctx)
	defer store.Close()

	keyOpt := favorites.WithKey(r.config.Favorites.Key)
	hub := server.NewSocketHub(r.storageOpener(), r.config.Server.AllowedOrigins, r.logger, keyOpt)

	router := server.NewAPIRouter(server.APIConfig{
		Movies:  movies,
		Engine:  engine,
		Store:   store,
		Hub:     hub,
		Origins: r.config.Server.AllowedOrigins,
		Logger:  r.logger,
	})

	addr := r.listenAddr(cmd)
	srv := server.New(addr, router, hub, r.logger)
	r.writePlain("Serving on http://%s (Ctrl+C to stop)\n", addr)

	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	r.writePlain("✓ Server stopped\n")
	return nil
}

// listenAddr applies the --host and --port overrides to the configured address.
func (r *Runner) listenAddr(cmd *cli.Command) string {
	host, port := r.config.Server.Host, r.config.Server.Port
	if h := cmd.String("host"); h != "" {
		host = h
	}
	if p := cmd.Int("port"); p > 0 {
		port = p
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
