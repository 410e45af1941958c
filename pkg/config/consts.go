package config

const (
	EnvPrefix = "LAGERHUB"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "LAGERHUB_APP_ENV"
	EnvPort                   = "LAGERHUB_APP_PORT"
	EnvRedisURL               = "LAGERHUB_REDIS_URL"
	EnvJWTSecret              = "LAGERHUB_JWT_SECRET"
	EnvJWTIssuer              = "LAGERHUB_JWT_ISSUER"
	EnvJWTExpMins             = "LAGERHUB_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "LAGERHUB_REFRESH_TOKEN_TTL_MINUTES"

	EnvDBDSN  = "LAGERHUB_DB_DSN"
	EnvDBHost = "LAGERHUB_DB_HOST"
	EnvDBUser = "LAGERHUB_DB_USER"
	EnvDBName = "LAGERHUB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
