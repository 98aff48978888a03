package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/idilsaglam/taskdeck/internal/auth"
	"github.com/idilsaglam/taskdeck/internal/catalog"
	"github.com/idilsaglam/taskdeck/internal/cli"
	"github.com/idilsaglam/taskdeck/internal/config"
	"github.com/idilsaglam/taskdeck/internal/store"
	"github.com/idilsaglam/taskdeck/internal/store/jsonstore"
	"github.com/idilsaglam/taskdeck/internal/store/redisstore"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Root flags (apply to every subcommand)
	groupPending := flag.Bool("group", false, "group ls output by pending/done")
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	flag.Parse()

	log.SetOutput(os.Stderr)
	if err := config.LoadEnvFile(*envFile); err != nil {
		log.WithError(err).Error("config")
		return 1
	}
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("config")
		return 1
	}
	log.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("storage")
		return 1
	}
	defer closeBackend()

	var opts []auth.Option
	if cfg.HashPasswords {
		opts = append(opts, auth.WithHasher(auth.Bcrypt{}))
	}
	svc := auth.New(store.New(backend), opts...)
	svc.RestoreSession(ctx)

	app := &cli.App{
		Auth:        svc,
		Catalog:     catalog.NewView(catalog.New(cfg.CatalogBaseURL, nil)),
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		Interactive: isatty.IsTerminal(os.Stdout.Fd()),
	}

	// Hand the remaining args to the CLI runner.
	return app.Run(ctx, flag.Args(), cli.Options{
		Group: *groupPending,
	})
}

func openBackend(ctx context.Context, cfg config.Config) (store.Backend, func(), error) {
	switch cfg.Backend {
	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis url: %w", err)
		}
		rc := redis.NewClient(opts)
		if err := rc.Ping(ctx).Err(); err != nil {
			_ = rc.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		log.WithField("addr", opts.Addr).Debug("using redis backend")
		return redisstore.New(rc, cfg.RedisPrefix), func() { _ = rc.Close() }, nil
	default:
		js := jsonstore.New(cfg.DataDir)
		log.WithField("path", js.Path()).Debug("using file backend")
		return js, func() {}, nil
	}
}
