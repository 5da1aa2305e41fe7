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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Cache        CacheConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	if err := cfg.Cache.validate(cfg.Redis); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STASHKEEPER_APP_ENV" required:"true"`
	Port         string `envconfig:"STASHKEEPER_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STASHKEEPER_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"STASHKEEPER_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"STASHKEEPER_LOG_WARN_STACK" default:"false"`

	// CORSOrigins is a comma separated allow list; empty means local dev origins.
	CORSOrigins []string `envconfig:"STASHKEEPER_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STASHKEEPER_DB_DSN"`
	Driver string `envconfig:"STASHKEEPER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STASHKEEPER_DB_HOST"`
	LegacyPort     int    `envconfig:"STASHKEEPER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STASHKEEPER_DB_USER"`
	LegacyPassword string `envconfig:"STASHKEEPER_DB_PASSWORD"`
	LegacyName     string `envconfig:"STASHKEEPER_DB_NAME"`
	LegacySSLMode  string `envconfig:"STASHKEEPER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STASHKEEPER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STASHKEEPER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STASHKEEPER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STASHKEEPER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"STASHKEEPER_REDIS_URL"`
	Address      string        `envconfig:"STASHKEEPER_REDIS_ADDR"`
	Password     string        `envconfig:"STASHKEEPER_REDIS_PASSWORD"`
	DB           int           `envconfig:"STASHKEEPER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STASHKEEPER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STASHKEEPER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STASHKEEPER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STASHKEEPER_REDIS_READ_TIMEOUT" default:"2s"`
	WriteTimeout time.Duration `envconfig:"STASHKEEPER_REDIS_WRITE_TIMEOUT" default:"2s"`
}

// Configured reports whether enough settings exist to dial Redis.
func (r RedisConfig) Configured() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"STASHKEEPER_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STASHKEEPER_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STASHKEEPER_JWT_EXPIRATION_MINUTES" default:"60"`
}

// CacheConfig controls the tiered read cache. TTLs map to the detail, list and
// log tiers; TagTTL must outlive the longest tier so a tag version never
// resets while an entry that recorded it is still live.
type CacheConfig struct {
	Backend   string        `envconfig:"STASHKEEPER_CACHE_BACKEND" default:"memory"`
	Namespace string        `envconfig:"STASHKEEPER_CACHE_NAMESPACE" default:"sk"`
	DetailTTL time.Duration `envconfig:"STASHKEEPER_CACHE_DETAIL_TTL" default:"5m"`
	ListTTL   time.Duration `envconfig:"STASHKEEPER_CACHE_LIST_TTL" default:"2m"`
	LogTTL    time.Duration `envconfig:"STASHKEEPER_CACHE_LOG_TTL" default:"1m"`
	TagTTL    time.Duration `envconfig:"STASHKEEPER_CACHE_TAG_TTL" default:"24h"`
}

func (c CacheConfig) validate(redis RedisConfig) error {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case CacheBackendRedis:
		if !redis.Configured() {
			return fmt.Errorf("cache backend %q requires %s or %s", CacheBackendRedis, EnvRedisURL, EnvRedisAddr)
		}
	case CacheBackendMemory, CacheBackendOff:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Backend)
	}
	longest := c.DetailTTL
	for _, ttl := range []time.Duration{c.ListTTL, c.LogTTL} {
		if ttl > longest {
			longest = ttl
		}
	}
	if c.TagTTL <= longest {
		return fmt.Errorf("%s must be longer than every tier ttl", EnvCacheTagTTL)
	}
	return nil
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STASHKEEPER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STASHKEEPER_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
