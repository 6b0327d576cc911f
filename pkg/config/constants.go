package config

const EnvPrefix = "ROCKETSHOES"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	EnvAppEnv          = "ROCKETSHOES_APP_ENV"
	EnvPort            = "ROCKETSHOES_APP_PORT"
	EnvStorageBackend  = "ROCKETSHOES_STORAGE_BACKEND"
	EnvCartKey         = "ROCKETSHOES_CART_KEY"
	EnvDBDSN           = "ROCKETSHOES_DB_DSN"
	EnvDBSQLitePath    = "ROCKETSHOES_DB_SQLITE_PATH"
	EnvDBHost          = "ROCKETSHOES_DB_HOST"
	EnvDBUser          = "ROCKETSHOES_DB_USER"
	EnvDBPassword      = "ROCKETSHOES_DB_PASSWORD"
	EnvDBName          = "ROCKETSHOES_DB_NAME"
	EnvRedisURL        = "ROCKETSHOES_REDIS_URL"
	EnvRedisAddr       = "ROCKETSHOES_REDIS_ADDR"
	EnvCatalogBaseURL  = "ROCKETSHOES_CATALOG_BASE_URL"
	EnvCatalogTimeout  = "ROCKETSHOES_CATALOG_TIMEOUT"
	EnvNotifyLanguage  = "ROCKETSHOES_NOTIFY_LANGUAGE"
	EnvNotifyPersist   = "ROCKETSHOES_NOTIFY_PERSIST"
	EnvCatalogSeedFile = "ROCKETSHOES_CATALOG_SEED_FILE"
)

var postgresDBEnvVars = []string{
	EnvDBHost,
	EnvDBUser,
	EnvDBName,
}
