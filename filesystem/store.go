// Package filesystem provides a local directory backend for tcaws.
// Each bucket is a top-level directory under the root and each key a file
// below it. Writes are atomic using temp files, etags are SHA256-based and
// content types are detected from the stored bytes. Deleting a missing key
// succeeds, as it does on S3. Presigning is not supported.
package filesystem

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sagarc03/tcaws"
)

// Store provides file system storage operations.
type Store struct {
	root   *os.Root
	logger *slog.Logger
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root, logger: slog.Default()}
}

// Open creates the directory at dir if needed and returns a Store rooted there.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open storage directory: %w", err)
	}
	return NewFileStorage(root), nil
}

// Close releases the underlying root.
func (s *Store) Close() error {
	return s.root.Close()
}

// objectPath validates bucket and key and returns the slash separated path
// of the object relative to the root.
func objectPath(bucket, key string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || strings.HasPrefix(bucket, ".") {
		return "", fmt.Errorf("%w: invalid bucket %q", tcaws.ErrInvalidInput, bucket)
	}
	if key == "" || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("%w: invalid key %q", tcaws.ErrInvalidInput, key)
	}
	return path.Join(bucket, key), nil
}

// GetObject reads the object into memory. Returns tcaws.ErrNotFound if the
// file does not exist.
func (s *Store) GetObject(ctx context.Context, bucket, key string) (tcaws.Object, error) {
	if err := ctx.Err(); err != nil {
		return tcaws.Object{}, err
	}

	p, err := objectPath(bucket, key)
	if err != nil {
		return tcaws.Object{}, err
	}

	f, err := s.root.Open(p)
	if err != nil {
		return tcaws.Object{}, classify("open file", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			s.logger.Warn("failed to close file", "path", p, "err", closeErr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return tcaws.Object{}, classify("stat file", err)
	}
	if info.IsDir() {
		return tcaws.Object{}, fmt.Errorf("%w: %s is a directory", tcaws.ErrNotFound, p)
	}

	h := sha256.New()
	var buf bytes.Buffer
	if _, err := io.Copy(io.MultiWriter(h, &buf), &ctxReader{ctx: ctx, r: f}); err != nil {
		return tcaws.Object{}, fmt.Errorf("could not read file contents: %w", err)
	}

	body := buf.Bytes()
	return tcaws.Object{
		Bucket:       bucket,
		Key:          key,
		Body:         body,
		ContentType:  tcaws.DetectContentType(body),
		ETag:         hex.EncodeToString(h.Sum(nil)),
		Size:         int64(len(body)),
		LastModified: info.ModTime().UTC(),
		Metadata:     map[string]string{},
	}, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// PutObject atomically writes obj.Body using a temp file and rename, creating
// the bucket directory and intermediate directories as needed. Storage class,
// encryption and metadata have no meaning on disk and are ignored.
func (s *Store) PutObject(ctx context.Context, obj tcaws.PutObject) (tcaws.PutResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return tcaws.PutResult{}, ctxErr
	}

	p, err := objectPath(obj.Bucket, obj.Key)
	if err != nil {
		return tcaws.PutResult{}, err
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return tcaws.PutResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			s.logger.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				s.logger.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	written, err := io.Copy(w, &ctxReader{ctx: ctx, r: bytes.NewReader(obj.Body)})
	if err != nil {
		return tcaws.PutResult{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return tcaws.PutResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	if err := s.root.MkdirAll(path.Dir(p), 0o755); err != nil {
		return tcaws.PutResult{}, fmt.Errorf("could not create intermediate directories: %w", err)
	}

	if renameErr := s.root.Rename(tmpFile, p); renameErr != nil {
		return tcaws.PutResult{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	success = true

	return tcaws.PutResult{
		Bucket:      obj.Bucket,
		Key:         obj.Key,
		ETag:        hex.EncodeToString(h.Sum(nil)),
		ContentType: obj.ContentType,
		Size:        written,
	}, nil
}

// DeleteObject removes a file. Returns tcaws.ErrNotFound if the file does not exist.
func (s *Store) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := objectPath(bucket, key)
	if err != nil {
		return err
	}

	if err := s.root.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return classify("delete file", err)
	}
	return nil
}

// PresignObject always fails with tcaws.ErrUnsupported.
func (s *Store) PresignObject(_ context.Context, _ tcaws.PresignRequest) (string, error) {
	return "", fmt.Errorf("filesystem: %w: presigned urls", tcaws.ErrUnsupported)
}

func classify(op string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%s: %w: %w", op, tcaws.ErrNotFound, err)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%s: %w: %w", op, tcaws.ErrPermission, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
