package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Email        EmailConfig        `mapstructure:"email"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
	UPI          UPIConfig          `mapstructure:"upi"`
	Admin        AdminConfig        `mapstructure:"admin"`
	Upload       UploadConfig       `mapstructure:"upload"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql, postgres
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
	// EventCacheTTLSeconds bounds how stale the published event list may be.
	EventCacheTTLSeconds int `mapstructure:"event_cache_ttl_seconds"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Driver string    `mapstructure:"driver"` // oss, s3
	OSS    OSSConfig `mapstructure:"oss"`
	S3     S3Config  `mapstructure:"s3"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"` // empty for AWS, set for R2/MinIO
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	PublicURL       string `mapstructure:"public_url"`
}

type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
	FromName     string `mapstructure:"from_name"`
	FrontendURL  string `mapstructure:"frontend_url"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type SubscriptionConfig struct {
	PaymentRetentionDays     int `mapstructure:"payment_retention_days"`
	ReconcileIntervalSeconds int `mapstructure:"reconcile_interval_seconds"`
	AttendanceIntervalSecs   int `mapstructure:"attendance_interval_seconds"`
}

type UPIConfig struct {
	PayeeVPA  string `mapstructure:"payee_vpa"`
	PayeeName string `mapstructure:"payee_name"`
}

type AdminConfig struct {
	// SeedEmails are promoted to the admin role once at startup.
	SeedEmails []string `mapstructure:"seed_emails"`
}

type UploadConfig struct {
	MaxScreenshotSize int64    `mapstructure:"max_screenshot_size"`
	AllowedTypes      []string `mapstructure:"allowed_types"`
}

func Load(configPath string) (*Config, error) {
	// config.local.yaml carries real secrets and is not committed
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero-valued settings.
func (c *Config) ApplyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.JWT.ExpireHours <= 0 {
		c.JWT.ExpireHours = 72
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "oss"
	}
	if c.Redis.EventCacheTTLSeconds <= 0 {
		c.Redis.EventCacheTTLSeconds = 30
	}
	if c.Subscription.PaymentRetentionDays <= 0 {
		c.Subscription.PaymentRetentionDays = 3
	}
	if c.Subscription.ReconcileIntervalSeconds <= 0 {
		c.Subscription.ReconcileIntervalSeconds = 60
	}
	if c.Subscription.AttendanceIntervalSecs <= 0 {
		c.Subscription.AttendanceIntervalSecs = 600
	}
	if c.Upload.MaxScreenshotSize <= 0 {
		c.Upload.MaxScreenshotSize = 5 * 1024 * 1024
	}
	if len(c.Upload.AllowedTypes) == 0 {
		c.Upload.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}
	}
}
