package tcaws

import (
	"context"
	"time"
)

// StorageConfig configures where Storage writes objects.
type StorageConfig struct {
	Bucket            string
	RootPath          string
	ReducedRedundancy bool
	Encrypt           bool
	PresignExpiry     time.Duration
}

// Storage reads and writes objects in a single configured bucket, under an
// optional root path. Paths are joined with the root path and cleaned.
type Storage struct {
	adapter *Adapter
	cfg     StorageConfig
}

func NewStorage(adapter *Adapter, cfg StorageConfig) *Storage {
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = DefaultPresignExpiry
	}
	return &Storage{adapter: adapter, cfg: cfg}
}

// Location returns the bucket and key path is stored under.
func (s *Storage) Location(path string) Location {
	return Location{
		Bucket: s.cfg.Bucket,
		Key:    CleanKey(JoinRoot(s.cfg.RootPath, path)),
	}
}

func (s *Storage) Put(ctx context.Context, path string, data []byte, metadata map[string]string) *Future[PutResult] {
	loc := s.Location(path)
	return s.adapter.Put(ctx, PutInput{
		Bucket:            loc.Bucket,
		Key:               loc.Key,
		Data:              data,
		Metadata:          metadata,
		ReducedRedundancy: s.cfg.ReducedRedundancy,
		Encrypt:           s.cfg.Encrypt,
	})
}

func (s *Storage) Get(ctx context.Context, path string) *Future[Object] {
	loc := s.Location(path)
	return s.adapter.Get(ctx, loc.Bucket, loc.Key)
}

func (s *Storage) Remove(ctx context.Context, path string) *Future[struct{}] {
	loc := s.Location(path)
	return s.adapter.Delete(ctx, loc.Bucket, loc.Key)
}

// URL returns a presigned GET URL for path, valid for the configured expiry.
func (s *Storage) URL(ctx context.Context, path string) *Future[string] {
	loc := s.Location(path)
	return s.adapter.Presign(ctx, loc.Bucket, loc.Key, "GET", s.cfg.PresignExpiry)
}
