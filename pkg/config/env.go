package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "ASSETDESK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	StoreDriverGorm   = "gorm"
	StoreDriverMemory = "memory"
)

const (
	EnvAppEnv       = "ASSETDESK_APP_ENV"
	EnvPort         = "ASSETDESK_APP_PORT"
	EnvLogLevel     = "ASSETDESK_LOG_LEVEL"
	EnvDBDSN        = "ASSETDESK_DB_DSN"
	EnvDBDriver     = "ASSETDESK_DB_DRIVER"
	EnvDBHost       = "ASSETDESK_DB_HOST"
	EnvDBUser       = "ASSETDESK_DB_USER"
	EnvDBName       = "ASSETDESK_DB_NAME"
	EnvStoreDriver  = "ASSETDESK_STORE_DRIVER"
	EnvStoreTimeout = "ASSETDESK_STORE_TIMEOUT"
	EnvRedisURL     = "ASSETDESK_REDIS_URL"
	EnvJWTSecret    = "ASSETDESK_JWT_SECRET"
	EnvJWTIssuer    = "ASSETDESK_JWT_ISSUER"
	EnvJWTExpMins   = "ASSETDESK_JWT_EXPIRATION_MINUTES"
	EnvAdminEmail   = "ASSETDESK_ADMIN_EMAIL"
	EnvAdminPass    = "ASSETDESK_ADMIN_PASSWORD"
	EnvUseSQLite    = "ASSETDESK_USE_SQLITE"
	EnvCronInterval = "ASSETDESK_CRON_INTERVAL"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
