package config

// EnvPrefix scopes every environment variable the service reads.
const EnvPrefix = "PADISTORE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced from code and tests.
const (
	EnvAppEnv   = "PADISTORE_APP_ENV"
	EnvPort     = "PADISTORE_APP_PORT"
	EnvDBDSN    = "PADISTORE_DB_DSN"
	EnvDBHost   = "PADISTORE_DB_HOST"
	EnvDBUser   = "PADISTORE_DB_USER"
	EnvDBName   = "PADISTORE_DB_NAME"
	EnvRedisURL = "PADISTORE_REDIS_URL"

	EnvJWTSecret  = "PADISTORE_JWT_SECRET"
	EnvJWTIssuer  = "PADISTORE_JWT_ISSUER"
	EnvJWTExpMins = "PADISTORE_JWT_EXPIRATION_MINUTES"
)

var hostDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
