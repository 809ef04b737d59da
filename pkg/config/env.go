package config

const EnvPrefix = "CUSTOMORDER"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "CUSTOMORDER_APP_ENV"
	EnvPort         = "CUSTOMORDER_APP_PORT"
	EnvLogLevel     = "CUSTOMORDER_LOG_LEVEL"
	EnvLogWarnStack = "CUSTOMORDER_LOG_WARN_STACK"
	EnvLogFormat    = "CUSTOMORDER_LOG_FORMAT"
	EnvTimezone     = "CUSTOMORDER_APP_TIMEZONE"
	EnvCORSOrigins  = "CUSTOMORDER_CORS_ALLOWED_ORIGINS"
	EnvCatalogFile  = "CUSTOMORDER_CATALOG_FILE"

	EnvRedisURL  = "CUSTOMORDER_REDIS_URL"
	EnvRedisAddr = "CUSTOMORDER_REDIS_ADDR"

	EnvDBDSN = "CUSTOMORDER_DB_DSN"

	EnvGCPProjectID       = "CUSTOMORDER_GCP_PROJECT_ID"
	EnvGCPCredentialsJSON = "CUSTOMORDER_GCP_CREDENTIALS_JSON"

	EnvStorageProvider = "CUSTOMORDER_STORAGE_PROVIDER"
	EnvDriveFolderID   = "CUSTOMORDER_DRIVE_FOLDER_ID"
	EnvGCSBucket       = "CUSTOMORDER_GCS_BUCKET_NAME"

	EnvEmailJSBaseURL    = "CUSTOMORDER_EMAILJS_BASE_URL"
	EnvEmailJSPublicKey  = "CUSTOMORDER_EMAILJS_PUBLIC_KEY"
	EnvEmailJSPrivateKey = "CUSTOMORDER_EMAILJS_PRIVATE_KEY"
	EnvEmailJSServiceID  = "CUSTOMORDER_EMAILJS_SERVICE_ID"
	EnvEmailJSTemplateID = "CUSTOMORDER_EMAILJS_TEMPLATE_ID"

	EnvFormDraftTTL = "CUSTOMORDER_FORM_DRAFT_TTL"

	EnvSubmitRateLimitWindow = "CUSTOMORDER_SUBMIT_RATE_LIMIT_WINDOW"
	EnvSubmitRateLimitIP     = "CUSTOMORDER_SUBMIT_RATE_LIMIT_IP_LIMIT"

	EnvAuditEnabled = "CUSTOMORDER_AUDIT_ENABLED"
	EnvAutoMigrate  = "CUSTOMORDER_AUTO_MIGRATE"
)
