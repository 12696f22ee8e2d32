package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const devJWTSecret = "dev-secret-change-me"

type Config struct {
	Env  string `env:"APP_ENV, default=dev"`
	Port int    `env:"PORT, default=8080"`

	StorageBackend   string        `env:"STORAGE_BACKEND, default=memory"`
	StorageNamespace string        `env:"STORAGE_NAMESPACE, default=lmnts"`
	StorageTTL       time.Duration `env:"STORAGE_TTL, default=720h"`

	CORSOrigins []string `env:"CORS_ORIGINS, default=http://localhost:5173"`

	Redis        RedisConfig
	DB           DBConfig
	Auth         AuthConfig
	Credentials  CredentialsConfig
	GenAI        GenAIConfig
	OTel         OTelConfig
	Choreography ChoreographyConfig
	Sweep        SweepConfig
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=127.0.0.1:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type DBConfig struct {
	Host     string `env:"DB_HOST, default=127.0.0.1"`
	Port     string `env:"DB_PORT, default=5432"`
	User     string `env:"DB_USER, default=portal"`
	Password string `env:"DB_PASSWORD, default=portal"`
	Name     string `env:"DB_NAME, default=portal"`
	SSLMode  string `env:"DB_SSLMODE, default=disable"`
	MaxConns int32  `env:"DB_MAX_CONNS, default=5"`
}

func (d DBConfig) URL() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

type AuthConfig struct {
	JWTSecret        string        `env:"JWT_SECRET, default=dev-secret-change-me"`
	AccessTTLMinutes int           `env:"JWT_ACCESS_TTL_MINUTES, default=60"`
	BcryptCost       int           `env:"BCRYPT_COST, default=10"`
	LoginRateLimit   int           `env:"LOGIN_RATE_LIMIT, default=10"`
	LoginRateWindow  time.Duration `env:"LOGIN_RATE_WINDOW, default=1m"`
}

func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTTLMinutes) * time.Minute
}

// CredentialsConfig holds the two fixed sign-in pairs.
type CredentialsConfig struct {
	AdminIdentity string `env:"ADMIN_IDENTITY, default=info@expromedia.com.ng"`
	AdminSecret   string `env:"ADMIN_SECRET, default=admin1356@#"`
	AdminName     string `env:"ADMIN_DISPLAY_NAME, default=John Smith"`
	StaffIdentity string `env:"STAFF_IDENTITY, default=staff@expromedia.com.ng"`
	StaffSecret   string `env:"STAFF_SECRET, default=staff1356@#"`
	StaffName     string `env:"STAFF_DISPLAY_NAME, default=Sarah Jenkins"`
}

type GenAIConfig struct {
	APIKey           string        `env:"API_KEY"`
	Model            string        `env:"GENAI_MODEL, default=gemini-3-flash-preview"`
	Timeout          time.Duration `env:"GENAI_TIMEOUT, default=20s"`
	FailureThreshold int           `env:"GENAI_FAILURE_THRESHOLD, default=3"`
	Cooldown         time.Duration `env:"GENAI_COOLDOWN, default=30s"`
}

type OTelConfig struct {
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string  `env:"OTEL_SERVICE_NAME, default=grandport-portal"`
	SampleRatio float64 `env:"OTEL_TRACES_SAMPLER_ARG, default=1"`
}

type ChoreographyConfig struct {
	TickMS        int `env:"LOGIN_TICK_MS, default=120"`
	CommitDelayMS int `env:"LOGIN_COMMIT_DELAY_MS, default=600"`
	LogoutDelayMS int `env:"LOGOUT_DELAY_MS, default=2500"`
}

func (c ChoreographyConfig) Tick() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}

func (c ChoreographyConfig) CommitDelay() time.Duration {
	return time.Duration(c.CommitDelayMS) * time.Millisecond
}

func (c ChoreographyConfig) LogoutDelay() time.Duration {
	return time.Duration(c.LogoutDelayMS) * time.Millisecond
}

type SweepConfig struct {
	Schedule      string        `env:"SWEEP_SCHEDULE, default=@every 1m"`
	ChallengeTTL  time.Duration `env:"CHALLENGE_TTL, default=10m"`
	ClientIdleTTL time.Duration `env:"CLIENT_IDLE_TTL, default=30m"`
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	return LoadFrom(ctx, envconfig.OsLookuper())
}

func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StorageBackend {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("STORAGE_BACKEND must be memory, redis or postgres, got %q", c.StorageBackend)
	}

	if c.Env != "dev" && c.Auth.JWTSecret == devJWTSecret {
		return errors.New("JWT_SECRET must be set outside dev")
	}

	if c.Choreography.TickMS <= 0 || c.Choreography.CommitDelayMS < 0 || c.Choreography.LogoutDelayMS < 0 {
		return errors.New("choreography timings must not be negative and the tick must be positive")
	}

	return nil
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
