package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string   `env:"PORT,         default=8000"`
	Env         string   `env:"ENV,          default=development"`
	LogLevel    string   `env:"LOG_LEVEL,    default=info"`
	PublicURL   string   `env:"PUBLIC_URL,   default=http://localhost:8000"`
	SiteURL     string   `env:"SITE_URL"`
	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`

	Auth    AuthConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Storage StorageConfig
	Mail    MailConfig
}

type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET, required"`
	JWTIssuer     string        `env:"JWT_ISSUER,      default=blog-cms"`
	UserTokenTTL  time.Duration `env:"USER_TOKEN_TTL,  default=168h"`
	StaffTokenTTL time.Duration `env:"STAFF_TOKEN_TTL, default=1h"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=blog_cms"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr       string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password   string        `env:"REDIS_PASSWORD"`
	DB         int           `env:"REDIS_DB,       default=0"`
	LikeWindow time.Duration `env:"LIKE_WINDOW,    default=24h"`
}

type StorageConfig struct {
	Driver            string `env:"STORAGE_DRIVER, default=local"`
	UploadDir         string `env:"UPLOAD_DIR,     default=uploads"`
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3PublicURL       string `env:"S3_PUBLIC_URL"`
}

type MailConfig struct {
	SMTPHost      string `env:"SMTP_HOST"`
	SMTPPort      int    `env:"SMTP_PORT,      default=587"`
	SMTPUsername  string `env:"SMTP_USERNAME"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`
	From          string `env:"MAIL_FROM,      default=no-reply@localhost"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	NotifyWorkers int    `env:"NOTIFY_WORKERS, default=4"`
}

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// IsProduction reports whether verbose error details must be hidden.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MailEnabled reports whether notifications go out over SMTP.
func (c *Config) MailEnabled() bool {
	return c.Mail.SMTPHost != "" && c.Mail.AdminEmail != ""
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageLocal:
	case StorageS3:
		if c.Storage.S3Bucket == "" {
			return errors.New("config: S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Auth.UserTokenTTL <= 0 || c.Auth.StaffTokenTTL <= 0 {
		return errors.New("config: token TTLs must be positive")
	}
	return nil
}

// LoadWith reads configuration through lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}
