package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/guarzo/talentiq/common"
	"github.com/guarzo/talentiq/config"
	"github.com/guarzo/talentiq/modules/session"
	"github.com/guarzo/talentiq/modules/store"
	"github.com/guarzo/talentiq/modules/talentiq"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// app bundles everything a command needs.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	store common.Store
	sess  *session.Session
	svc   talentiq.Service
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "reading .env: %v\n", err)
	}

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = common.IntoLogger(ctx, log)

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("store_open_failed", slog.String("backend", cfg.Store.Backend), slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("store_close_failed", slog.String("err", err.Error()))
		}
	}()

	sess := session.New(st, session.Options{
		Logger: log,
		OnInvalidated: func(loginPath string, cause error) {
			fmt.Fprintf(os.Stderr, "session expired, please log in again (%s): %v\n", loginPath, cause)
		},
	})

	httpClient := common.NewHttpClient(cfg.API.UserAgent, &http.Client{Timeout: cfg.API.Timeout})
	defer httpClient.CloseIdleConnections()

	auth := talentiq.NewAuthClient(cfg.API.URL, httpClient)
	client := talentiq.NewClient(cfg.API.URL, httpClient, sess, auth,
		talentiq.WithLogger(log),
		talentiq.WithMetrics(talentiq.NewMetrics(prometheus.DefaultRegisterer)),
	)

	a := &app{
		cfg:   cfg,
		log:   log,
		store: st,
		sess:  sess,
		svc:   talentiq.NewService(client, auth),
	}

	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		closeStore()
		os.Exit(1)
	}
}

// openStore builds the configured session store and its closer.
func openStore(ctx context.Context, cfg *config.Config) (common.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Backend {
	case config.StoreMemory:
		return store.NewMemory(), noop, nil
	case config.StoreBolt:
		s, err := store.NewBolt(cfg.Store.Path)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case config.StoreRedis:
		s, err := store.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// setupLogger configures slog for the environment. Logs go to stderr so
// command output on stdout stays clean.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
