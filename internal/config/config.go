package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	// TemplateSource selects where templates are read from: "dynamo" or "s3".
	TemplateSource   string
	S3BucketName     string
	S3TemplatePrefix string

	DefaultLanguage string

	JWTPublicKeyPath string

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SMTPTLS      bool

	SNSRegion   string
	SMSSenderID string

	SendRateLimit  float64 // sends per second per client
	SendRateBurst  int
	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Notifications         string
	NotificationTemplates string
	NotificationMessages  string
}

const (
	TemplateSourceDynamo = "dynamo"
	TemplateSourceS3     = "s3"
)

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Notifications:         getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			NotificationTemplates: getEnv("DYNAMO_TABLE_NOTIFICATION_TEMPLATES", "notification_templates"),
			NotificationMessages:  getEnv("DYNAMO_TABLE_NOTIFICATION_MESSAGES", "notification_messages"),
		},
		TemplateSource:   strings.ToLower(getEnv("TEMPLATE_SOURCE", TemplateSourceDynamo)),
		S3BucketName:     getEnv("S3_BUCKET_NAME", "notification-templates"),
		S3TemplatePrefix: getEnv("S3_TEMPLATE_PREFIX", "templates/"),
		DefaultLanguage:  getEnv("DEFAULT_LANGUAGE", "en-US"),
		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		SMTPHost:         getEnv("SMTP_HOST", "localhost"),
		SMTPPort:         getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:         getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SMTPTLS:          getEnvBool("SMTP_TLS", false),
		SNSRegion:        getEnv("SNS_REGION", "us-east-1"),
		SMSSenderID:      getEnv("SMS_SENDER_ID", ""),
		SendRateLimit:    getEnvFloat("SEND_RATE_LIMIT", 5),
		SendRateBurst:    getEnvInt("SEND_RATE_BURST", 10),
		AllowedOrigins:   strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
