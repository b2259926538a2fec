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
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Pricing       PricingConfig
	Checkout      CheckoutConfig
	Paystack      PaystackConfig
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
	Env          string `envconfig:"PADISTORE_APP_ENV" required:"true"`
	Port         string `envconfig:"PADISTORE_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"PADISTORE_APP_BASE_URL" default:"http://localhost:8080"`
	LogLevel     string `envconfig:"PADISTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PADISTORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PADISTORE_DB_DSN"`
	Driver string `envconfig:"PADISTORE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"PADISTORE_DB_HOST"`
	Port     int    `envconfig:"PADISTORE_DB_PORT" default:"5432"`
	User     string `envconfig:"PADISTORE_DB_USER"`
	Password string `envconfig:"PADISTORE_DB_PASSWORD"`
	Name     string `envconfig:"PADISTORE_DB_NAME"`
	SSLMode  string `envconfig:"PADISTORE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PADISTORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PADISTORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PADISTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PADISTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PADISTORE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PADISTORE_REDIS_ADDR"`
	Password     string        `envconfig:"PADISTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"PADISTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PADISTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PADISTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PADISTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PADISTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PADISTORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PADISTORE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PADISTORE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"PADISTORE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"PADISTORE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PADISTORE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PADISTORE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PADISTORE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PADISTORE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PADISTORE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PADISTORE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"PADISTORE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"PADISTORE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"PADISTORE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"PADISTORE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"PADISTORE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PADISTORE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PADISTORE_AUTO_MIGRATE" default:"false"`
}

type PricingConfig struct {
	FreeShippingThreshold string `envconfig:"PADISTORE_PRICING_FREE_SHIPPING_THRESHOLD" default:"53000"`
	PadiCodeThreshold     string `envconfig:"PADISTORE_PRICING_PADI_CODE_THRESHOLD" default:"100000"`
	PadiCodePercent       string `envconfig:"PADISTORE_PRICING_PADI_CODE_PERCENT" default:"2"`
	PadiCodePrefix        string `envconfig:"PADISTORE_PRICING_PADI_CODE_PREFIX" default:"PADI"`
}

type CheckoutConfig struct {
	SelectionTTL time.Duration `envconfig:"PADISTORE_CHECKOUT_SELECTION_TTL" default:"72h"`
	CartTTL      time.Duration `envconfig:"PADISTORE_CART_TTL" default:"720h"`
	CouponTTL    time.Duration `envconfig:"PADISTORE_COUPON_TTL" default:"72h"`
}

type PaystackConfig struct {
	SecretKey   string        `envconfig:"PADISTORE_PAYSTACK_SECRET_KEY"`
	BaseURL     string        `envconfig:"PADISTORE_PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	CallbackURL string        `envconfig:"PADISTORE_PAYSTACK_CALLBACK_URL"`
	Timeout     time.Duration `envconfig:"PADISTORE_PAYSTACK_TIMEOUT" default:"15s"`
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
	for _, env := range hostDBEnvVars {
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
