// Package config provides configuration loading and validation for tcaws.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (TC_AWS_ prefix)
//  4. CLI flags
//
// Without an explicit file, tcaws.yaml in the working directory is read if present.
//
// # Usage
//
//	cfg, err := config.Load([]string{"tcaws.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// Keys map to TC_AWS_<SECTION>_<KEY>, for example:
//   - loader.bucket → TC_AWS_LOADER_BUCKET
//   - loader.root_path → TC_AWS_LOADER_ROOT_PATH
//   - storage.bucket → TC_AWS_STORAGE_BUCKET
//   - storage.rrs → TC_AWS_STORAGE_RRS
//   - presign.expiry → TC_AWS_PRESIGN_EXPIRY
//   - http.timeout → TC_AWS_HTTP_TIMEOUT
//
// A few keys use shorter names:
//   - loader.allowed_buckets → TC_AWS_ALLOWED_BUCKETS (comma separated)
//   - loader.enable_http → TC_AWS_ENABLE_HTTP_LOADER
//   - store.backend → TC_AWS_BACKEND
//   - store.region → TC_AWS_REGION
//   - store.endpoint → TC_AWS_ENDPOINT
//   - store.path → TC_AWS_FILESYSTEM_PATH
//   - server.port → TC_AWS_PORT
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Backend must be aws, minio, or filesystem
//   - The minio backend requires an endpoint, the filesystem backend a path
//   - Presign expiry must be between 1 second and 7 days
//   - Log level must be debug, info, warn, or error
package config
