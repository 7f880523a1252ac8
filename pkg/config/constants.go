package config

// EnvPrefix is the envconfig prefix shared by every configuration section.
const EnvPrefix = "mceverse"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv  = "MCEVERSE_APP_ENV"
	EnvAppPort = "MCEVERSE_APP_PORT"

	EnvDBDSN      = "MCEVERSE_DB_DSN"
	EnvDBHost     = "MCEVERSE_DB_HOST"
	EnvDBPort     = "MCEVERSE_DB_PORT"
	EnvDBUser     = "MCEVERSE_DB_USER"
	EnvDBPassword = "MCEVERSE_DB_PASSWORD"
	EnvDBName     = "MCEVERSE_DB_NAME"

	EnvRedisURL = "MCEVERSE_REDIS_URL"

	EnvJWTSecret            = "MCEVERSE_JWT_SECRET"
	EnvJWTIssuer            = "MCEVERSE_JWT_ISSUER"
	EnvJWTExpirationMinutes = "MCEVERSE_JWT_EXPIRATION_MINUTES"
)
