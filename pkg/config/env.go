package config

const EnvPrefix = "STASHKEEPER"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
	CacheBackendOff    = "off"
)

const (
	EnvAppEnv      = "STASHKEEPER_APP_ENV"
	EnvPort        = "STASHKEEPER_APP_PORT"
	EnvDBDSN       = "STASHKEEPER_DB_DSN"
	EnvDBDriver    = "STASHKEEPER_DB_DRIVER"
	EnvDBHost      = "STASHKEEPER_DB_HOST"
	EnvDBUser      = "STASHKEEPER_DB_USER"
	EnvDBName      = "STASHKEEPER_DB_NAME"
	EnvRedisURL    = "STASHKEEPER_REDIS_URL"
	EnvRedisAddr   = "STASHKEEPER_REDIS_ADDR"
	EnvJWTSecret   = "STASHKEEPER_JWT_SECRET"
	EnvJWTIssuer   = "STASHKEEPER_JWT_ISSUER"
	EnvJWTExpMins  = "STASHKEEPER_JWT_EXPIRATION_MINUTES"
	EnvCacheBack   = "STASHKEEPER_CACHE_BACKEND"
	EnvCacheTagTTL = "STASHKEEPER_CACHE_TAG_TTL"
	EnvUseSQLite   = "STASHKEEPER_USE_SQLITE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
