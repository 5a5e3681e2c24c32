package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/tcaws"
	tcawshttp "github.com/sagarc03/tcaws/http"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TC_AWS"

// Backend names accepted by store.backend.
const (
	BackendAWS        = "aws"
	BackendMinio      = "minio"
	BackendFilesystem = "filesystem"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for tcaws.
type Config struct {
	Env     string               `mapstructure:"env" yaml:"env,omitempty"`
	Server  ServerConfig         `mapstructure:"server" yaml:"server"`
	Loader  LoaderConfig         `mapstructure:"loader" yaml:"loader"`
	Storage StorageConfig        `mapstructure:"storage" yaml:"storage"`
	Store   StoreConfig          `mapstructure:"store" yaml:"store"`
	Presign PresignConfig        `mapstructure:"presign" yaml:"presign"`
	HTTP    HTTPConfig           `mapstructure:"http" yaml:"http"`
	Workers int                  `mapstructure:"workers" yaml:"workers" validate:"min=1,max=1024"`
	CORS    tcawshttp.CORSConfig `mapstructure:"cors" yaml:"cors,omitempty"`
	Log     LogConfig            `mapstructure:"log" yaml:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port          int   `mapstructure:"port" yaml:"port" validate:"required,min=1,max=65535"`
	MaxUploadSize int64 `mapstructure:"max_upload_size" yaml:"max_upload_size,omitempty" validate:"min=0"`
}

// LoaderConfig holds the path resolution settings for loading source images.
type LoaderConfig struct {
	Bucket         string   `mapstructure:"bucket" yaml:"bucket"`
	AllowedBuckets []string `mapstructure:"allowed_buckets" yaml:"allowed_buckets,omitempty"`
	RootPath       string   `mapstructure:"root_path" yaml:"root_path,omitempty"`
	EnableHTTP     bool     `mapstructure:"enable_http" yaml:"enable_http"`
}

// StorageConfig holds the settings for objects written through tcaws.Storage.
type StorageConfig struct {
	Bucket            string `mapstructure:"bucket" yaml:"bucket"`
	RootPath          string `mapstructure:"root_path" yaml:"root_path,omitempty"`
	ReducedRedundancy bool   `mapstructure:"rrs" yaml:"rrs"`
	Encrypt           bool   `mapstructure:"sse" yaml:"sse"`
}

// StoreConfig selects and configures the object store backend.
type StoreConfig struct {
	Backend   string `mapstructure:"backend" yaml:"backend" validate:"required,oneof=aws minio filesystem"`
	Region    string `mapstructure:"region" yaml:"region" validate:"required"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint,omitempty" validate:"required_if=Backend minio"`
	PathStyle bool   `mapstructure:"path_style" yaml:"path_style,omitempty"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key,omitempty"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key,omitempty"`
	Path      string `mapstructure:"path" yaml:"path,omitempty" validate:"required_if=Backend filesystem"`
}

// PresignConfig holds presigned URL settings. Expiry is in seconds.
type PresignConfig struct {
	Expiry int `mapstructure:"expiry" yaml:"expiry" validate:"min=1,max=604800"`
}

// HTTPConfig configures the HTTP loader. Timeout is in seconds.
type HTTPConfig struct {
	Timeout     int   `mapstructure:"timeout" yaml:"timeout" validate:"min=1"`
	MaxBodySize int64 `mapstructure:"max_body_size" yaml:"max_body_size" validate:"min=1"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
}

// LoaderConfig converts the loader section for tcaws.NewLoader.
func (c *Config) LoaderConfig() tcaws.LoaderConfig {
	return tcaws.LoaderConfig{
		AllowedBuckets:   c.Loader.AllowedBuckets,
		DefaultBucket:    c.Loader.Bucket,
		RootPath:         c.Loader.RootPath,
		EnableHTTPLoader: c.Loader.EnableHTTP,
	}
}

// StorageConfig converts the storage section for tcaws.NewStorage.
func (c *Config) StorageConfig() tcaws.StorageConfig {
	return tcaws.StorageConfig{
		Bucket:            c.Storage.Bucket,
		RootPath:          c.Storage.RootPath,
		ReducedRedundancy: c.Storage.ReducedRedundancy,
		Encrypt:           c.Storage.Encrypt,
		PresignExpiry:     c.PresignExpiry(),
	}
}

func (c *Config) PresignExpiry() time.Duration {
	return time.Duration(c.Presign.Expiry) * time.Second
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.Timeout) * time.Second
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":           "server.port",
	"backend":        "store.backend",
	"region":         "store.region",
	"endpoint":       "store.endpoint",
	"data":           "store.path",
	"bucket":         "loader.bucket",
	"storage-bucket": "storage.bucket",
	"log-level":      "log.level",
}

// envOverrides binds keys whose environment variable does not follow the
// TC_AWS_<SECTION>_<KEY> pattern.
var envOverrides = map[string]string{
	"loader.allowed_buckets": "TC_AWS_ALLOWED_BUCKETS",
	"loader.enable_http":     "TC_AWS_ENABLE_HTTP_LOADER",
	"store.backend":          "TC_AWS_BACKEND",
	"store.region":           "TC_AWS_REGION",
	"store.endpoint":         "TC_AWS_ENDPOINT",
	"store.path_style":       "TC_AWS_PATH_STYLE",
	"store.access_key":       "TC_AWS_ACCESS_KEY",
	"store.secret_key":       "TC_AWS_SECRET_KEY",
	"store.path":             "TC_AWS_FILESYSTEM_PATH",
	"server.port":            "TC_AWS_PORT",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "")

	v.SetDefault("server.port", 8888)
	v.SetDefault("server.max_upload_size", 0) // 0 means no limit

	v.SetDefault("loader.bucket", "")
	v.SetDefault("loader.allowed_buckets", []string{})
	v.SetDefault("loader.root_path", "")
	v.SetDefault("loader.enable_http", false)

	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.root_path", "")
	v.SetDefault("storage.rrs", false)
	v.SetDefault("storage.sse", false)

	v.SetDefault("store.backend", BackendAWS)
	v.SetDefault("store.region", "eu-west-1")
	v.SetDefault("store.endpoint", "")
	v.SetDefault("store.path_style", false)
	v.SetDefault("store.access_key", "")
	v.SetDefault("store.secret_key", "")
	v.SetDefault("store.path", "./data")

	v.SetDefault("presign.expiry", 3600)

	v.SetDefault("http.timeout", 20)
	v.SetDefault("http.max_body_size", 32<<20)

	v.SetDefault("workers", tcaws.DefaultPoolSize)

	v.SetDefault("cors.enabled", false)

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("tcaws")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envOverrides {
		_ = v.BindEnv(key, env)
	}

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Loader.AllowedBuckets = splitList(cfg.Loader.AllowedBuckets)

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// splitList trims entries and drops empty ones, so "a, b," yields [a b].
func splitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for part := range strings.SplitSeq(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
