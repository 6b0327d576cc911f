package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/angelmondragon/rocketshoes/pkg/enums"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	DB      DBConfig
	Redis   RedisConfig
	Catalog CatalogConfig
	Notify  NotifyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	backend, err := enums.ParseStorageBackend(cfg.Storage.Backend)
	if err != nil {
		return nil, err
	}
	cfg.Storage.Backend = backend.String()
	if backend.IsSQL() {
		cfg.DB.Driver = backend.String()
		if err := cfg.DB.EnsureDSN(); err != nil {
			return nil, err
		}
	}
	if backend == enums.StorageBackendRedis && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("either %s or %s is required for the redis backend", EnvRedisURL, EnvRedisAddr)
	}
	if _, err := url.ParseRequestURI(cfg.Catalog.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvCatalogBaseURL, err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ROCKETSHOES_APP_ENV" default:"dev"`
	Port         string `envconfig:"ROCKETSHOES_APP_PORT" default:"3333"`
	LogLevel     string `envconfig:"ROCKETSHOES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ROCKETSHOES_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"ROCKETSHOES_AUTO_MIGRATE" default:"true"`

	// MetricsTextfile, when set, receives the cart metrics in Prometheus text
	// format after each CLI run (node_exporter textfile collector).
	MetricsTextfile string `envconfig:"ROCKETSHOES_METRICS_TEXTFILE"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects where the cart survives between sessions.
type StorageConfig struct {
	Backend string `envconfig:"ROCKETSHOES_STORAGE_BACKEND" default:"sqlite"`
	CartKey string `envconfig:"ROCKETSHOES_CART_KEY" default:"@RocketShoes:cart"`
}

// BackendKind returns the parsed backend. Load has already validated it.
func (s StorageConfig) BackendKind() enums.StorageBackend {
	return enums.StorageBackend(s.Backend)
}

type DBConfig struct {
	Driver string `envconfig:"ROCKETSHOES_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"ROCKETSHOES_DB_DSN"`

	SQLitePath string `envconfig:"ROCKETSHOES_DB_SQLITE_PATH"`

	Host     string `envconfig:"ROCKETSHOES_DB_HOST"`
	Port     int    `envconfig:"ROCKETSHOES_DB_PORT" default:"5432"`
	User     string `envconfig:"ROCKETSHOES_DB_USER"`
	Password string `envconfig:"ROCKETSHOES_DB_PASSWORD"`
	Name     string `envconfig:"ROCKETSHOES_DB_NAME"`
	SSLMode  string `envconfig:"ROCKETSHOES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ROCKETSHOES_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"ROCKETSHOES_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"ROCKETSHOES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ROCKETSHOES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ROCKETSHOES_REDIS_URL"`
	Address      string        `envconfig:"ROCKETSHOES_REDIS_ADDR"`
	Password     string        `envconfig:"ROCKETSHOES_REDIS_PASSWORD"`
	DB           int           `envconfig:"ROCKETSHOES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ROCKETSHOES_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"ROCKETSHOES_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"ROCKETSHOES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ROCKETSHOES_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"ROCKETSHOES_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// CatalogConfig points the stock gateway at the catalog API.
type CatalogConfig struct {
	BaseURL         string        `envconfig:"ROCKETSHOES_CATALOG_BASE_URL" default:"http://localhost:3333"`
	Timeout         time.Duration `envconfig:"ROCKETSHOES_CATALOG_TIMEOUT" default:"5s"`
	BreakerFailures uint32        `envconfig:"ROCKETSHOES_CATALOG_BREAKER_FAILURES" default:"5"`
	BreakerCooldown time.Duration `envconfig:"ROCKETSHOES_CATALOG_BREAKER_COOLDOWN" default:"30s"`
	SeedFile        string        `envconfig:"ROCKETSHOES_CATALOG_SEED_FILE"`
	CORSOrigins     []string      `envconfig:"ROCKETSHOES_CATALOG_CORS_ORIGINS" default:"http://localhost:3000"`
}

type NotifyConfig struct {
	Language string `envconfig:"ROCKETSHOES_NOTIFY_LANGUAGE" default:"en"`
	Persist  bool   `envconfig:"ROCKETSHOES_NOTIFY_PERSIST" default:"false"`
}

// EnsureDSN derives the DSN from the sqlite path or the postgres parts when none is set.
func (db *DBConfig) EnsureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if strings.EqualFold(db.Driver, DriverSQLite) {
		path := db.SQLitePath
		if path == "" {
			path = defaultSQLitePath()
		}
		db.DSN = fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", path)
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range postgresDBEnvVars {
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

func defaultSQLitePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "rocketshoes.db"
	}
	return filepath.Join(dir, "rocketshoes", "rocketshoes.db")
}
