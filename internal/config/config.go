package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"

	"taskd/internal/token"
)

// Config holds runtime configuration for the taskd service, resolved once at
// startup. The signing secret is required for both issuing and verifying
// tokens; the process refuses to start without it.
type Config struct {
	Addr      string `env:"ADDR,default=:8080"`
	DBDSN     string `env:"DB_DSN,required"`
	RedisAddr string `env:"REDIS_ADDR,default=localhost:6379"`

	JWTSecret string `env:"JWT_SECRET,required"`

	// Token lifetimes use the <integer><unit> form (s/m/h/d); values that
	// do not parse fall back to 15 minutes.
	AccessTokenLifetime  string `env:"JWT_ACCESS_EXPIRATION,default=15m"`
	RefreshTokenLifetime string `env:"JWT_REFRESH_EXPIRATION,default=7d"`

	NATSURL          string   `env:"NATS_URL"`
	OTLPEndpoint     string   `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
	RateLimitPerMin  int      `env:"RATE_LIMIT_PER_MIN,default=100"`
	AttachmentBucket string   `env:"S3_BUCKET"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// AccessTTL is the parsed access-token lifetime. It also sizes the
// user_token cache entries.
func (c Config) AccessTTL() time.Duration {
	return token.ParseLifetime(c.AccessTokenLifetime)
}

// RefreshTTL is the parsed refresh-token lifetime.
func (c Config) RefreshTTL() time.Duration {
	return token.ParseLifetime(c.RefreshTokenLifetime)
}
