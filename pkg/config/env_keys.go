package config

const EnvPrefix = "LEMON"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "LEMON_APP_ENV"
	EnvPort      = "LEMON_APP_PORT"
	EnvLogLevel  = "LEMON_LOG_LEVEL"
	EnvLogFormat = "LEMON_LOG_FORMAT"
	EnvCORS      = "LEMON_CORS_ORIGINS"

	EnvRedisURL  = "LEMON_REDIS_URL"
	EnvRedisAddr = "LEMON_REDIS_ADDR"

	EnvSessionSecret = "LEMON_SESSION_SECRET"
	EnvSessionIssuer = "LEMON_SESSION_ISSUER"
	EnvSessionTTL    = "LEMON_SESSION_TTL"

	EnvSheetsProductsURL  = "LEMON_SHEETS_PRODUCTS_URL"
	EnvSheetsUsersURL     = "LEMON_SHEETS_USERS_URL"
	EnvSheetsAddressesURL = "LEMON_SHEETS_ADDRESSES_URL"
	EnvSheetsOrdersURL    = "LEMON_SHEETS_ORDERS_URL"
	EnvSheetsFeedbackURL  = "LEMON_SHEETS_FEEDBACK_URL"
	EnvSheetsTimeout      = "LEMON_SHEETS_TIMEOUT"
	EnvSheetsRatePerSec   = "LEMON_SHEETS_RATE_PER_SEC"
	EnvSheetsBurst        = "LEMON_SHEETS_BURST"

	EnvOrderTimezone = "LEMON_ORDER_TIMEZONE"
	EnvWhatsApp      = "LEMON_WHATSAPP_NUMBER"
)
