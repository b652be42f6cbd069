// Command tastekit 启动餐厅推荐 HTTP 服务。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/tastekit/api"
	"github.com/rushteam/tastekit/catalog"
	"github.com/rushteam/tastekit/config"
	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/logging"
	"github.com/rushteam/tastekit/recall"
	"github.com/rushteam/tastekit/recommend"
	"github.com/rushteam/tastekit/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (or TASTEKIT_CONFIG)")
	flag.Parse()

	_ = godotenv.Load()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "tastekit:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Init(cfg.Log)

	registry, err := cfg.Schema.Registry()
	if err != nil {
		return fmt.Errorf("schema registry: %w", err)
	}

	kv, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer kv.Close()

	ratings := recall.NewStoreRatingsAdapter(kv, cfg.Store.KeyPrefix)
	var opts []catalog.FileLoaderOption
	if cfg.Catalog.Sheet != "" {
		opts = append(opts, catalog.WithSheet(cfg.Catalog.Sheet))
	}
	loader := catalog.NewFileLoader(cfg.Catalog.Path, opts...)

	svc := recommend.NewService(registry,
		&recommend.ContentBased{Loader: loader},
		&recommend.CollaborativeFiltering{Loader: loader, Ratings: ratings, Config: cfg.CF},
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(&api.Handler{Service: svc, Ratings: ratings, MaxRating: cfg.CF.MaxRating}, cfg.Server.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logging.Info().
			Str("addr", cfg.Server.Addr).
			Str("catalog", cfg.Catalog.Path).
			Str("store", kv.Name()).
			Strs("schemas", registry.Versions()).
			Strs("strategies", svc.Strategies()).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		logging.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}

func openStore(cfg config.StoreConfig) (core.KeyValueStore, error) {
	switch cfg.Driver {
	case "redis":
		s, err := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		return s, nil
	default:
		return store.NewMemoryStore(), nil
	}
}
