package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/upload"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names an optional YAML file layered between the defaults
// and the environment.
const ConfigPathEnvVar = "CONFIG_PATH"

type Config struct {
	Env                 string        `koanf:"env"`        // dev, staging, production (default: dev)
	Port                int           `koanf:"port"`       // HTTP server port (default: 5001)
	LogLevel            string        `koanf:"log_level"`  // debug, info, warn, error (default: info)
	LogFormat           string        `koanf:"log_format"` // json, text (default: json)
	SecretToken         string        `koanf:"secret_token"`
	BcryptCost          int           `koanf:"bcrypt_cost"` // default: 10
	ShutdownGracePeriod time.Duration `koanf:"shutdown_grace_period"`
	CORSOrigins         []string      `koanf:"cors_origins"`
	StaticDir           string        `koanf:"static_dir"` // Optional: frontend build served at /

	Database  DatabaseConfig  `koanf:"database"`
	Blob      BlobConfig      `koanf:"blob"`
	Upload    UploadConfig    `koanf:"upload"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver"` // sqlite or postgres
	File   string `koanf:"file"`   // sqlite only
	URL    string `koanf:"url"`    // postgres only
}

type BlobConfig struct {
	Driver        string   `koanf:"driver"` // local or s3
	LocalDir      string   `koanf:"local_dir"`
	PublicBaseURL string   `koanf:"public_base_url"`
	S3            S3Config `koanf:"s3"`
}

type S3Config struct {
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
}

// UploadConfig only tunes the store write. The 5 MiB file ceiling is fixed
// in pkg/upload and not configurable.
type UploadConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

type RateLimitConfig struct {
	Strict  httpx.RateLimitConfig `koanf:"strict"`
	Lenient httpx.RateLimitConfig `koanf:"lenient"`
}

// Production reports whether cookies must be Secure.
func (c Config) Production() bool {
	return c.Env == "production"
}

func defaultConfig() Config {
	return Config{
		Env:                 "dev",
		Port:                5001,
		LogLevel:            "info",
		LogFormat:           "json",
		BcryptCost:          cryptox.DefaultCost,
		ShutdownGracePeriod: 10 * time.Second,
		CORSOrigins:         []string{"http://localhost:5173"},
		Database: DatabaseConfig{
			Driver: "sqlite",
			File:   "shop.db",
		},
		Blob: BlobConfig{
			Driver:        "local",
			LocalDir:      "media",
			PublicBaseURL: "http://localhost:5001/media",
		},
		Upload: UploadConfig{
			Timeout: upload.DefaultTimeout,
		},
		RateLimit: RateLimitConfig{
			Strict:  httpx.StrictLimit,
			Lenient: httpx.LenientLimit,
		},
	}
}

// LoadConfig layers defaults, the optional CONFIG_PATH file and the
// environment, in that order of precedence, and validates the result.
func LoadConfig() (Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	if err := splitList(k, "cors_origins"); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envKeys maps environment variables to config paths. Anything not listed
// is ignored.
var envKeys = map[string]string{
	"env":                   "env",
	"port":                  "port",
	"log_level":             "log_level",
	"log_format":            "log_format",
	"secret_token":          "secret_token",
	"bcrypt_cost":           "bcrypt_cost",
	"shutdown_grace_period": "shutdown_grace_period",
	"cors_origins":          "cors_origins",
	"static_dir":            "static_dir",

	"database_driver": "database.driver",
	"database_file":   "database.file",
	"database_url":    "database.url",

	"blob_driver":          "blob.driver",
	"blob_local_dir":       "blob.local_dir",
	"blob_public_base_url": "blob.public_base_url",
	"s3_bucket":            "blob.s3.bucket",
	"s3_region":            "blob.s3.region",
	"s3_endpoint":          "blob.s3.endpoint",
	"s3_access_key":        "blob.s3.access_key",
	"s3_secret_key":        "blob.s3.secret_key",

	"upload_timeout": "upload.timeout",

	"ratelimit_strict_requests":  "ratelimit.strict.requests",
	"ratelimit_strict_window":    "ratelimit.strict.window",
	"ratelimit_strict_burst":     "ratelimit.strict.burst",
	"ratelimit_lenient_requests": "ratelimit.lenient.requests",
	"ratelimit_lenient_window":   "ratelimit.lenient.window",
	"ratelimit_lenient_burst":    "ratelimit.lenient.burst",
}

func envTransformFunc(key string) string {
	return envKeys[strings.ToLower(key)]
}

// splitList turns a comma-separated string (from the environment) into a
// slice. Values that are already lists, as from YAML, are left alone.
func splitList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

// Validate checks settings that would otherwise fail at first use. A
// missing SecretToken is allowed: the service starts and login fails.
func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.File == "" {
			errs = append(errs, errors.New("database.file is required for sqlite"))
		}
	case "postgres":
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}

	switch c.Blob.Driver {
	case "local":
		if c.Blob.LocalDir == "" {
			errs = append(errs, errors.New("blob.local_dir is required for local blobs"))
		}
	case "s3":
		if c.Blob.S3.Bucket == "" || c.Blob.S3.Region == "" {
			errs = append(errs, errors.New("s3 bucket and region are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown blob driver %q", c.Blob.Driver))
	}

	if c.Upload.Timeout <= 0 {
		errs = append(errs, errors.New("upload.timeout must be positive"))
	}
	if !c.RateLimit.Strict.Valid() || !c.RateLimit.Lenient.Valid() {
		errs = append(errs, errors.New("rate limits need positive requests, window and burst"))
	}

	return errors.Join(errs...)
}
