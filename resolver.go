package tcaws

import (
	"log/slog"
	"slices"
	"strings"
)

// LoaderConfig holds the settings consulted when resolving request paths.
// It is treated as read-only; pass it by value.
type LoaderConfig struct {
	// AllowedBuckets lists bucket names that may be addressed by the first
	// path segment. Nil or empty routes every request to DefaultBucket.
	AllowedBuckets []string
	// DefaultBucket is used when the first path segment is not allowed.
	DefaultBucket string
	// RootPath is prepended to every resolved key.
	RootPath string
	// EnableHTTPLoader lets absolute http(s) URLs bypass the object store.
	EnableHTTPLoader bool
}

// IsAllowedBucket reports whether bucket is in AllowedBuckets.
func (c LoaderConfig) IsAllowedBucket(bucket string) bool {
	return slices.Contains(c.AllowedBuckets, bucket)
}

// Resolve turns a raw, percent-encoded request path into a bucket and a
// cleaned object key.
//
// The path is decoded and stripped of leading slashes. If its first segment is
// an allowed bucket, that segment becomes the bucket and the rest the key.
// Otherwise the default bucket is used and the whole path, first segment
// included, becomes the key. The root path is then prepended and the key
// cleaned with CleanKey.
//
// Resolve never fails; malformed input resolves deterministically.
func Resolve(cfg LoaderConfig, rawURL string) Location {
	path := strings.TrimLeft(Unquote(rawURL), "/")

	candidate, rest, _ := strings.Cut(path, "/")

	var loc Location
	if cfg.IsAllowedBucket(candidate) {
		loc = Location{Bucket: candidate, Key: rest}
	} else {
		// The candidate segment stays part of the key.
		loc = Location{Bucket: cfg.DefaultBucket, Key: path}
	}

	loc.Key = CleanKey(JoinRoot(cfg.RootPath, loc.Key))
	return loc
}

// UseHTTPLoader reports whether url should be fetched over HTTP instead of
// being read from the object store.
func UseHTTPLoader(cfg LoaderConfig, url string) bool {
	return cfg.EnableHTTPLoader && strings.HasPrefix(url, "http")
}

// Resolver binds a LoaderConfig to a logger.
type Resolver struct {
	cfg    LoaderConfig
	logger *slog.Logger
}

func NewResolver(cfg LoaderConfig, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.AllowedBuckets = slices.Clone(cfg.AllowedBuckets)
	return &Resolver{cfg: cfg, logger: logger}
}

func (r *Resolver) Resolve(rawURL string) Location {
	loc := Resolve(r.cfg, rawURL)
	r.logger.Debug("resolved request path", "path", rawURL, "bucket", loc.Bucket, "key", loc.Key)
	return loc
}

func (r *Resolver) UseHTTPLoader(url string) bool {
	return UseHTTPLoader(r.cfg, url)
}
