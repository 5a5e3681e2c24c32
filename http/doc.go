// Package http exposes the tcaws loader and storage over HTTP.
//
// # Routes
//
//	GET    /_resolve/{path}                    JSON {bucket, key, http_loader}
//	GET    /_presign/{path}?method=&expires=   JSON {url, method, expires}
//	GET    /{path}                             object body via the Loader
//	PUT    /{path}                             store the body via Storage
//	DELETE /{path}                             remove via Storage, 204 on success
//
// Paths on the GET routes are passed to the loader still percent-encoded;
// the resolver decodes them. An allowed first segment selects the bucket,
// anything else falls back to the default bucket, and absolute http(s) URLs
// go to the HTTP loader when it is enabled.
//
// PUT reads user metadata from X-Amz-Meta-* request headers. The content
// type is always detected from the payload.
//
// # Usage
//
//	loader := tcaws.NewLoader(cfg.LoaderConfig(), adapter, fetcher, logger)
//	storage := tcaws.NewStorage(adapter, cfg.StorageConfig())
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    PresignExpiry: time.Hour,
//	    Logger:        logger,
//	}, loader, storage, adapter)
//	srv := &nethttp.Server{Addr: ":8888", Handler: handler.Router()}
//
// # Errors
//
// Failures are written as JSON {"error": code, "message": text}:
//
//	tcaws.ErrNotFound      404 not_found
//	tcaws.ErrPermission    403 forbidden
//	tcaws.ErrInvalidInput  400 invalid_input
//	tcaws.ErrUnsupported   501 unsupported
//	tcaws.ErrNetwork       502 bad_gateway
//	tcaws.ErrUpstream      502 bad_gateway
//	anything else          500 internal_error
//
// # Middleware
//
// Every request gets an X-Request-Id (reused from the request when present)
// and one access log line. CORS is applied when CORSConfig.Enabled is set.
package http
