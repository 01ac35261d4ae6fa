package config

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv         = "SKLAD_APP_ENV"
	EnvAppPort        = "SKLAD_APP_PORT"
	EnvLogLevel       = "SKLAD_LOG_LEVEL"
	EnvDataDir        = "SKLAD_DATA_DIR"
	EnvBackupDir      = "SKLAD_BACKUP_DIR"
	EnvVisionAPIKey   = "SKLAD_VISION_API_KEY"
	EnvVisionEndpoint = "SKLAD_VISION_ENDPOINT"
	EnvVisionTimeout  = "SKLAD_VISION_TIMEOUT"
	EnvCORSOrigins    = "SKLAD_CORS_ALLOWED_ORIGINS"
)
