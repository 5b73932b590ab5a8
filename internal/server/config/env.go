package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig is an intermediate DTO for environment parsing. Only variables
// that are actually set override the defaults already present in Config,
// which is why every field is a pointer.
type envConfig struct {
	Host        *string `env:"SERVER_HOST"`
	Port        *int    `env:"SERVER_PORT"`
	Environment *string `env:"APP_ENV"`
	BaseURL     *string `env:"BASE_URL"`
	DatabaseDSN *string `env:"DATABASE_DSN"`

	SecretKey            *string        `env:"JWT_SECRET"`
	AccessTokenValidity  *time.Duration `env:"ACCESS_TOKEN_VALIDITY"`
	RefreshTokenValidity *time.Duration `env:"REFRESH_TOKEN_VALIDITY"`

	SMTPHost     *string `env:"SMTP_HOST"`
	SMTPPort     *int    `env:"SMTP_PORT"`
	SMTPUser     *string `env:"SMTP_USER"`
	SMTPPassword *string `env:"SMTP_PASSWORD"`
	MailFrom     *string `env:"MAIL_FROM"`

	S3Enabled   *bool   `env:"S3_ENABLED"`
	S3Endpoint  *string `env:"S3_ENDPOINT"`
	S3Region    *string `env:"S3_REGION"`
	S3Bucket    *string `env:"S3_BUCKET"`
	S3AccessKey *string `env:"S3_ACCESS_KEY"`
	S3SecretKey *string `env:"S3_SECRET_KEY"`

	UploadDir *string `env:"UPLOAD_DIR"`
}

// parseEnv overlays environment variables onto cfg. Unset variables leave
// the existing values untouched.
func parseEnv(cfg *Config) error {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setIf(&cfg.Host, e.Host)
	setIf(&cfg.Port, e.Port)
	setIf(&cfg.Environment, e.Environment)
	setIf(&cfg.BaseURL, e.BaseURL)
	setIf(&cfg.DatabaseDSN, e.DatabaseDSN)
	setIf(&cfg.SecretKey, e.SecretKey)
	setIf(&cfg.AccessTokenValidityDuration, e.AccessTokenValidity)
	setIf(&cfg.RefreshTokenValidityDuration, e.RefreshTokenValidity)
	setIf(&cfg.SMTPHost, e.SMTPHost)
	setIf(&cfg.SMTPPort, e.SMTPPort)
	setIf(&cfg.SMTPUser, e.SMTPUser)
	setIf(&cfg.SMTPPassword, e.SMTPPassword)
	setIf(&cfg.MailFrom, e.MailFrom)
	setIf(&cfg.S3Enabled, e.S3Enabled)
	setIf(&cfg.S3Endpoint, e.S3Endpoint)
	setIf(&cfg.S3Region, e.S3Region)
	setIf(&cfg.S3Bucket, e.S3Bucket)
	setIf(&cfg.S3AccessKey, e.S3AccessKey)
	setIf(&cfg.S3SecretKey, e.S3SecretKey)
	setIf(&cfg.UploadDir, e.UploadDir)

	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
