package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Store         StoreConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Admin         AdminConfig
	AuthRateLimit AuthRateLimitConfig
	Idempotency   IdempotencyConfig
	Cron          CronConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	if cfg.Store.UsesDatabase() {
		if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ASSETDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"ASSETDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ASSETDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ASSETDESK_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"ASSETDESK_CORS_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type DBConfig struct {
	DSN    string `envconfig:"ASSETDESK_DB_DSN"`
	Driver string `envconfig:"ASSETDESK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ASSETDESK_DB_HOST"`
	Port     int    `envconfig:"ASSETDESK_DB_PORT" default:"5432"`
	User     string `envconfig:"ASSETDESK_DB_USER"`
	Password string `envconfig:"ASSETDESK_DB_PASSWORD"`
	Name     string `envconfig:"ASSETDESK_DB_NAME"`
	SSLMode  string `envconfig:"ASSETDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ASSETDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ASSETDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ASSETDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ASSETDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite dialector should be used.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type StoreConfig struct {
	Driver  string        `envconfig:"ASSETDESK_STORE_DRIVER" default:"gorm"`
	Timeout time.Duration `envconfig:"ASSETDESK_STORE_TIMEOUT" default:"5s"`
}

// UsesDatabase reports whether the entity store is backed by the SQL database.
func (s StoreConfig) UsesDatabase() bool {
	return !strings.EqualFold(s.Driver, StoreDriverMemory)
}

func (s StoreConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case StoreDriverGorm, StoreDriverMemory:
	default:
		return fmt.Errorf("%s must be %q or %q", EnvStoreDriver, StoreDriverGorm, StoreDriverMemory)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("%s must not be negative", EnvStoreTimeout)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"ASSETDESK_REDIS_URL"`
	Address      string        `envconfig:"ASSETDESK_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"ASSETDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"ASSETDESK_REDIS_DB" default:"0"`
	Namespace    string        `envconfig:"ASSETDESK_REDIS_NAMESPACE" default:"ad"`
	PoolSize     int           `envconfig:"ASSETDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ASSETDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ASSETDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ASSETDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ASSETDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ASSETDESK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ASSETDESK_JWT_ISSUER" default:"assetdesk"`
	ExpirationMinutes      int    `envconfig:"ASSETDESK_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"ASSETDESK_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ASSETDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ASSETDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ASSETDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ASSETDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ASSETDESK_ARGON_KEY_LEN" default:"32"`
}

// AdminConfig seeds the console administrator at startup when both email and
// password are present.
type AdminConfig struct {
	Email    string `envconfig:"ASSETDESK_ADMIN_EMAIL"`
	Name     string `envconfig:"ASSETDESK_ADMIN_NAME" default:"Administrator"`
	Password string `envconfig:"ASSETDESK_ADMIN_PASSWORD"`
}

func (a AdminConfig) ShouldSeed() bool {
	return strings.TrimSpace(a.Email) != "" && a.Password != ""
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"ASSETDESK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"ASSETDESK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"ASSETDESK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type IdempotencyConfig struct {
	TTL         time.Duration `envconfig:"ASSETDESK_IDEMPOTENCY_TTL" default:"24h"`
	LockTTL     time.Duration `envconfig:"ASSETDESK_IDEMPOTENCY_LOCK_TTL" default:"30s"`
	RequireKeys bool          `envconfig:"ASSETDESK_IDEMPOTENCY_REQUIRED" default:"false"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"ASSETDESK_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"ASSETDESK_CRON_LOCK_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	UseSQLite       bool   `envconfig:"ASSETDESK_USE_SQLITE" default:"false"`
	AutoMigrate     bool   `envconfig:"ASSETDESK_AUTO_MIGRATE" default:"false"`
	MigrationsDir   string `envconfig:"ASSETDESK_MIGRATIONS_DIR" default:"pkg/migrate/migrations"`
	ReconcileOnBoot bool   `envconfig:"ASSETDESK_RECONCILE_ON_BOOT" default:"true"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DBDriverSQLite
	}
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:assetdesk.db?cache=shared&_foreign_keys=on"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
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
