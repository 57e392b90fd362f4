package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so the
// prefix only matters for fields without a tag.
const EnvPrefix = "DEALERHUB"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Env var names referenced outside struct tags (tests, error messages).
const (
	EnvAppEnv                 = "DEALERHUB_APP_ENV"
	EnvPort                   = "DEALERHUB_APP_PORT"
	EnvDBDSN                  = "DEALERHUB_DB_DSN"
	EnvDBHost                 = "DEALERHUB_DB_HOST"
	EnvDBUser                 = "DEALERHUB_DB_USER"
	EnvDBName                 = "DEALERHUB_DB_NAME"
	EnvRedisURL               = "DEALERHUB_REDIS_URL"
	EnvJWTSecret              = "DEALERHUB_JWT_SECRET"
	EnvJWTIssuer              = "DEALERHUB_JWT_ISSUER"
	EnvJWTExpMins             = "DEALERHUB_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "DEALERHUB_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
