package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/authd/api"
	"github.com/kbukum/authd/auth/password"
	"github.com/kbukum/authd/authn"
	"github.com/kbukum/authd/bootstrap"
	"github.com/kbukum/authd/config"
	"github.com/kbukum/authd/database"
	"github.com/kbukum/authd/logger"
	"github.com/kbukum/authd/oauth"
	"github.com/kbukum/authd/observability"
	"github.com/kbukum/authd/redis"
	"github.com/kbukum/authd/server"
	"github.com/kbukum/authd/store"
	"github.com/kbukum/authd/version"
)

const serviceName = "authd"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "authd: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().Version
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}

	tp, err := observability.InitTracer(ctx, cfg.Tracing, cfg.Name, cfg.Version, cfg.Environment)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	app.OnStop(tp.Shutdown)

	mp, err := observability.InitMeter(ctx, cfg.Metrics, cfg.Name, cfg.Version, cfg.Environment)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	app.OnStop(mp.Shutdown)
	metrics, err := observability.NewMetrics(mp)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// Fail before opening anything when the hasher cannot be built.
	hasher, err := password.NewPbkdf2Hasher(cfg.Password)
	if err != nil {
		return err
	}

	db := database.NewComponent(cfg.Database, app.Logger)
	if err := app.RegisterComponent(db); err != nil {
		return err
	}
	var cache *redis.Component
	if cfg.Redis.Enabled {
		cache = redis.NewComponent(cfg.Redis, app.Logger)
		if err := app.RegisterComponent(cache); err != nil {
			return err
		}
	}

	app.OnConfigure(func(_ context.Context, a *bootstrap.App[*Config]) error {
		opts := []oauth.Option{oauth.WithLogger(a.Logger), oauth.WithMetrics(metrics)}
		if cache != nil {
			opts = append(opts, oauth.WithCache(oauth.NewRedisCache(cache.Client())))
		}
		svc, err := oauth.NewService(a.Cfg.OAuth, store.New(db.DB()), password.NewPool(hasher, a.Cfg.Password), opts...)
		if err != nil {
			return err
		}
		resolver, err := authn.NewResolver(svc, a.Logger, authn.WithMetrics(metrics))
		if err != nil {
			return err
		}

		srv := server.New(a.Cfg.Server, a.Logger)
		srv.RegisterDefaultEndpoints(a.Name, a.Components.HealthAll)
		api.NewHandler(svc, resolver, a.Logger).Register(srv.GinEngine())
		return a.RegisterComponent(server.NewComponent(srv))
	})

	logger.Info("configuration loaded", logger.Fields(
		"environment", cfg.Environment,
		"redis", cfg.Redis.Enabled,
		"tracing", cfg.Tracing.Enabled,
		"metrics", cfg.Metrics.Enabled,
		"migrate", cfg.Database.Migrate))
	return app.Run(ctx)
}
