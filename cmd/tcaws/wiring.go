package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/sagarc03/tcaws"
	"github.com/sagarc03/tcaws/config"
	"github.com/sagarc03/tcaws/filesystem"
	"github.com/sagarc03/tcaws/httploader"
	"github.com/sagarc03/tcaws/miniostore"
	"github.com/sagarc03/tcaws/s3"
)

// app holds the components every command works with.
type app struct {
	cfg     *config.Config
	adapter *tcaws.Adapter
	loader  *tcaws.Loader
	storage *tcaws.Storage

	closers []func() error
}

// newApp builds the object store selected by cfg.Store.Backend and the
// loader and storage on top of it. Call close when done.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg}

	store, err := newObjectStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if c, ok := store.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}

	pool := tcaws.NewPool(cfg.Workers)
	a.closers = append(a.closers, func() error {
		pool.Close()
		return nil
	})

	a.adapter = tcaws.NewAdapter(store, pool, tcaws.WithLogger(logger))

	var fetcher tcaws.Fetcher
	if cfg.Loader.EnableHTTP {
		fetcher = httploader.New(
			httploader.WithTimeout(cfg.HTTPTimeout()),
			httploader.WithMaxBodySize(cfg.HTTP.MaxBodySize),
			httploader.WithUserAgent("tcaws/"+version),
		)
	}

	a.loader = tcaws.NewLoader(cfg.LoaderConfig(), a.adapter, fetcher, logger)
	a.storage = tcaws.NewStorage(a.adapter, cfg.StorageConfig())

	logger.Debug("object store ready",
		"backend", cfg.Store.Backend,
		"region", cfg.Store.Region,
		"workers", cfg.Workers,
		"http_loader", cfg.Loader.EnableHTTP,
	)

	return a, nil
}

// close releases the pool and backend resources in reverse order.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newObjectStore(ctx context.Context, cfg config.StoreConfig) (tcaws.ObjectStore, error) {
	switch cfg.Backend {
	case config.BackendAWS:
		opts := s3.Options{
			Region:       cfg.Region,
			Endpoint:     cfg.Endpoint,
			UsePathStyle: cfg.PathStyle,
		}
		if cfg.AccessKey != "" {
			opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		}
		client, err := s3.New(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("create s3 client: %w", err)
		}
		return client, nil

	case config.BackendMinio:
		store, err := miniostore.New(miniostore.Options{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		return store, nil

	case config.BackendFilesystem:
		store, err := filesystem.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open data directory: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("backend %q: %w", cfg.Backend, tcaws.ErrInvalidInput)
	}
}

// appFromCommand loads the config stored by the root command and builds an app.
func appFromCommand(ctx context.Context) (*app, error) {
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, slog.Default())
}
