package tcaws

import (
	"context"
	"fmt"
	"log/slog"
)

// Fetcher retrieves absolute http(s) URLs. It is used for requests that
// bypass the object store, see UseHTTPLoader.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Object, error)
}

type Source string

const (
	SourceStore Source = "store"
	SourceHTTP  Source = "http"
)

// Loaded is the result of Loader.Load.
type Loaded struct {
	Source Source
	// Location is zero for objects fetched over HTTP.
	Location Location
	URL      string
	Object   Object
}

// Loader is the entry point a media server calls for a source image.
type Loader struct {
	resolver *Resolver
	adapter  *Adapter
	fetcher  Fetcher
	logger   *slog.Logger
}

// NewLoader creates a Loader. fetcher may be nil when the HTTP loader is disabled.
func NewLoader(cfg LoaderConfig, adapter *Adapter, fetcher Fetcher, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		resolver: NewResolver(cfg, logger),
		adapter:  adapter,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// Locate resolves rawPath without performing any I/O. The boolean reports
// whether the request would be served by the HTTP loader instead.
func (l *Loader) Locate(rawPath string) (Location, bool) {
	if l.resolver.UseHTTPLoader(rawPath) {
		return Location{}, true
	}
	return l.resolver.Resolve(rawPath), false
}

// Load fetches the object rawPath refers to.
//
// Absolute http(s) URLs go to the Fetcher when the HTTP loader is enabled.
// Everything else is resolved to a bucket and key and read from the store;
// a missing key fails the future with ErrNotFound.
func (l *Loader) Load(ctx context.Context, rawPath string) *Future[Loaded] {
	loc, useHTTP := l.Locate(rawPath)

	if useHTTP {
		if l.fetcher == nil {
			return Completed(Loaded{}, fmt.Errorf("load %s: %w: no http fetcher configured", rawPath, ErrUnsupported))
		}
		l.logger.Debug("loading over http", "url", rawPath)
		return dispatch(l.adapter.Executor(), func() (Loaded, error) {
			obj, err := l.fetcher.Fetch(ctx, rawPath)
			if err != nil {
				return Loaded{}, fmt.Errorf("load %s: %w", rawPath, err)
			}
			return Loaded{Source: SourceHTTP, URL: rawPath, Object: obj}, nil
		})
	}

	return then(l.adapter.Get(ctx, loc.Bucket, loc.Key), func(obj Object, err error) (Loaded, error) {
		if err != nil {
			return Loaded{}, fmt.Errorf("load %s: %w", rawPath, err)
		}
		return Loaded{Source: SourceStore, Location: loc, Object: obj}, nil
	})
}
