package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sagarc03/tcaws"
)

// Loader resolves and loads source objects. *tcaws.Loader implements it.
type Loader interface {
	Locate(rawPath string) (tcaws.Location, bool)
	Load(ctx context.Context, rawPath string) *tcaws.Future[tcaws.Loaded]
}

// Storage writes and removes objects under the storage bucket.
// *tcaws.Storage implements it.
type Storage interface {
	Put(ctx context.Context, path string, data []byte, metadata map[string]string) *tcaws.Future[tcaws.PutResult]
	Remove(ctx context.Context, path string) *tcaws.Future[struct{}]
}

// Presigner generates presigned URLs. *tcaws.Adapter implements it.
type Presigner interface {
	Presign(ctx context.Context, bucket, key, method string, expiry time.Duration) *tcaws.Future[string]
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins" yaml:"allowed_origins,omitempty"`
	AllowedMethods   []string `mapstructure:"allowed_methods" yaml:"allowed_methods,omitempty"`
	AllowedHeaders   []string `mapstructure:"allowed_headers" yaml:"allowed_headers,omitempty"`
	ExposedHeaders   []string `mapstructure:"exposed_headers" yaml:"exposed_headers,omitempty"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials,omitempty"`
	MaxAge           int      `mapstructure:"max_age" yaml:"max_age,omitempty"`
}

type HandlerConfig struct {
	CORS CORSConfig
	// MaxUploadSize limits PUT bodies in bytes. 0 means no limit.
	MaxUploadSize int64
	// PresignExpiry is used when a presign request carries no expires parameter.
	PresignExpiry time.Duration
	Logger        *slog.Logger
}

// Handler exposes loading, storing and presigning over HTTP.
type Handler struct {
	config    HandlerConfig
	loader    Loader
	storage   Storage
	presigner Presigner
	logger    *slog.Logger
}

// NewHandler creates a new Handler. storage and presigner may be nil, in which
// case the routes they back answer 501.
func NewHandler(config *HandlerConfig, loader Loader, storage Storage, presigner Presigner) *Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		config:    *config,
		loader:    loader,
		storage:   storage,
		presigner: presigner,
		logger:    logger,
	}
}

// Router returns an http.Handler with all routes configured.
//
//	GET    /_resolve/*  bucket and key a path resolves to
//	GET    /_presign/*  presigned URL for the resolved object
//	GET    /*           object loaded through the Loader
//	PUT    /*           store the request body under the storage bucket
//	DELETE /*           remove an object from the storage bucket
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(AccessLog(h.logger))
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/_resolve/*", h.handleResolve)
	r.Get("/_presign/*", h.handlePresign)
	r.Get("/*", h.handleGet)
	r.Head("/*", h.handleGet)
	r.Put("/*", h.handlePut)
	r.Delete("/*", h.handleDelete)

	return r
}

// requestPath returns the still percent-encoded path after prefix.
// Decoding is left to the resolver.
func requestPath(r *http.Request, prefix string) string {
	return strings.TrimPrefix(r.URL.EscapedPath(), prefix)
}

type resolveResponse struct {
	Bucket     string `json:"bucket"`
	Key        string `json:"key"`
	HTTPLoader bool   `json:"http_loader"`
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r, "/_resolve/")

	loc, useHTTP := h.loader.Locate(path)
	_ = WriteJSON(w, http.StatusOK, resolveResponse{
		Bucket:     loc.Bucket,
		Key:        loc.Key,
		HTTPLoader: useHTTP,
	})
}

type presignResponse struct {
	URL     string    `json:"url"`
	Method  string    `json:"method"`
	Expires time.Time `json:"expires"`
}

func (h *Handler) handlePresign(w http.ResponseWriter, r *http.Request) {
	if h.presigner == nil {
		h.HandleError(w, r, tcaws.ErrUnsupported)
		return
	}

	path := requestPath(r, "/_presign/")
	loc, useHTTP := h.loader.Locate(path)
	if useHTTP {
		WriteError(w, http.StatusBadRequest, "invalid_path", "HTTP loader paths cannot be presigned")
		return
	}

	method, err := tcaws.ParsePresignMethod(r.URL.Query().Get("method"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_method", "Method must be GET, HEAD, PUT or DELETE")
		return
	}

	expiry := h.config.PresignExpiry
	if expiresStr := r.URL.Query().Get("expires"); expiresStr != "" {
		seconds, convErr := strconv.Atoi(expiresStr)
		if convErr != nil || seconds <= 0 {
			WriteError(w, http.StatusBadRequest, "invalid_expires", "Expires must be a positive number of seconds")
			return
		}
		expiry = time.Duration(seconds) * time.Second
	}
	if expiry <= 0 {
		expiry = tcaws.DefaultPresignExpiry
	}

	url, err := h.presigner.Presign(r.Context(), loc.Bucket, loc.Key, method, expiry).Wait(r.Context())
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, presignResponse{
		URL:     url,
		Method:  method,
		Expires: time.Now().Add(expiry).UTC().Truncate(time.Second),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r, "/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "invalid_path", "Path is required")
		return
	}

	loaded, err := h.loader.Load(r.Context(), path).Wait(r.Context())
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	obj := loaded.Object
	if obj.ETag != "" {
		w.Header().Set("ETag", `"`+obj.ETag+`"`)
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = tcaws.DefaultContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Tcaws-Source", string(loaded.Source))

	http.ServeContent(w, r, path, obj.LastModified, bytes.NewReader(obj.Body))
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		h.HandleError(w, r, tcaws.ErrUnsupported)
		return
	}

	path := requestPath(r, "/")
	if tcaws.CleanKey(path) == "" {
		WriteError(w, http.StatusBadRequest, "invalid_path", "Path is required")
		return
	}

	body := io.Reader(r.Body)
	if h.config.MaxUploadSize > 0 {
		body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "Request body too large")
			return
		}
		WriteError(w, http.StatusBadRequest, "invalid_body", "Could not read request body")
		return
	}

	res, err := h.storage.Put(r.Context(), tcaws.Unquote(path), data, metadataFromHeader(r.Header)).Wait(r.Context())
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		h.HandleError(w, r, tcaws.ErrUnsupported)
		return
	}

	path := requestPath(r, "/")
	if tcaws.CleanKey(path) == "" {
		WriteError(w, http.StatusBadRequest, "invalid_path", "Path is required")
		return
	}

	if _, err := h.storage.Remove(r.Context(), tcaws.Unquote(path)).Wait(r.Context()); err != nil {
		h.HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// metaPrefix is the canonical form of the S3 user metadata header prefix.
const metaPrefix = "X-Amz-Meta-"

// metadataFromHeader collects X-Amz-Meta-* headers with lowercased names.
func metadataFromHeader(header http.Header) map[string]string {
	metadata := map[string]string{}
	for name, values := range header {
		if len(values) == 0 || !strings.HasPrefix(name, metaPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, metaPrefix))
		if key != "" {
			metadata[key] = values[0]
		}
	}
	return metadata
}
