// Command mockapi serves the in-memory TalentIQ fake for local development.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guarzo/talentiq/modules/mockapi"
)

func main() {
	var (
		addr       string
		env        string
		secret     string
		accessTTL  time.Duration
		refreshTTL time.Duration
	)
	flag.StringVar(&addr, "addr", "127.0.0.1:8000", "listen address")
	flag.StringVar(&env, "env", "development", "environment reported by /health")
	flag.StringVar(&secret, "secret", os.Getenv("TALENTIQ_MOCK_SECRET"), "JWT signing secret")
	flag.DurationVar(&accessTTL, "access-ttl", mockapi.DefaultAccessTTL, "access token lifetime")
	flag.DurationVar(&refreshTTL, "refresh-ttl", mockapi.DefaultRefreshTTL, "refresh token lifetime")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(log)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	api := mockapi.New(mockapi.Options{
		Secret:      []byte(secret),
		AccessTTL:   accessTTL,
		RefreshTTL:  refreshTTL,
		Environment: env,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           api,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", slog.String("addr", addr), slog.Duration("access_ttl", accessTTL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_failed", slog.String("err", err.Error()))
	}
	log.Info("service_stopped")
}
