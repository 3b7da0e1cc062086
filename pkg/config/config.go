package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Session      SessionConfig
	FeatureFlags FeatureFlagsConfig
	Alerts       AlertsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Square       SquareConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MERCHTABLE_APP_ENV" required:"true"`
	Port         string `envconfig:"MERCHTABLE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MERCHTABLE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MERCHTABLE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MERCHTABLE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MERCHTABLE_DB_DSN"`
	Driver string `envconfig:"MERCHTABLE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MERCHTABLE_DB_HOST"`
	Port     int    `envconfig:"MERCHTABLE_DB_PORT" default:"5432"`
	User     string `envconfig:"MERCHTABLE_DB_USER"`
	Password string `envconfig:"MERCHTABLE_DB_PASSWORD"`
	Name     string `envconfig:"MERCHTABLE_DB_NAME"`
	SSLMode  string `envconfig:"MERCHTABLE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MERCHTABLE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MERCHTABLE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MERCHTABLE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MERCHTABLE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MERCHTABLE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MERCHTABLE_REDIS_ADDR"`
	Password     string        `envconfig:"MERCHTABLE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MERCHTABLE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MERCHTABLE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MERCHTABLE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MERCHTABLE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MERCHTABLE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MERCHTABLE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MERCHTABLE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MERCHTABLE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MERCHTABLE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTTLHours   int    `envconfig:"MERCHTABLE_JWT_REFRESH_TTL_HOURS" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MERCHTABLE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MERCHTABLE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MERCHTABLE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MERCHTABLE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MERCHTABLE_ARGON_KEY_LEN" default:"32"`
}

// SessionConfig governs the per-user sales session kept in Redis.
type SessionConfig struct {
	TTL time.Duration `envconfig:"MERCHTABLE_SALES_SESSION_TTL" default:"12h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MERCHTABLE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MERCHTABLE_AUTO_MIGRATE" default:"false"`
}

// AlertsConfig governs the low-stock alert sweep.
type AlertsConfig struct {
	SweepInterval time.Duration `envconfig:"MERCHTABLE_ALERT_SWEEP_INTERVAL" default:"5m"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MERCHTABLE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"MERCHTABLE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MERCHTABLE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	SalesTopic         string `envconfig:"MERCHTABLE_PUBSUB_SALES_TOPIC" default:"mt-sales-events"`
	SalesSubscription  string `envconfig:"MERCHTABLE_PUBSUB_SALES_SUBSCRIPTION"`
	AlertsTopic        string `envconfig:"MERCHTABLE_PUBSUB_ALERTS_TOPIC" default:"mt-alert-events"`
	AlertsSubscription string `envconfig:"MERCHTABLE_PUBSUB_ALERTS_SUBSCRIPTION"`
}

type BigQueryConfig struct {
	Dataset        string `envconfig:"MERCHTABLE_BIGQUERY_DATASET" default:"merchtable"`
	SaleFactsTable string `envconfig:"MERCHTABLE_BIGQUERY_SALE_FACTS_TABLE" default:"sale_facts"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"MERCHTABLE_SQUARE_ACCESS_TOKEN"`
	LocationID  string `envconfig:"MERCHTABLE_SQUARE_LOCATION_ID"`
	Env         string `envconfig:"MERCHTABLE_SQUARE_ENV" default:"sandbox"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

// Enabled reports whether card capture through Square is configured.
func (s SquareConfig) Enabled() bool {
	return strings.TrimSpace(s.AccessToken) != ""
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"MERCHTABLE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"MERCHTABLE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"MERCHTABLE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
