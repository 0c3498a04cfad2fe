package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Delivery DeliveryConfig `mapstructure:"delivery"`
	Clinic   ClinicConfig   `mapstructure:"clinic"`
	Render   RenderConfig   `mapstructure:"render"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// StorageConfig selects and configures the progress/report storage backend.
// Driver is "postgres" for server deployments or "sqlite" for standalone use.
type StorageConfig struct {
	Driver     string         `mapstructure:"driver"`
	Postgres   DatabaseConfig `mapstructure:"postgres"`
	SQLitePath string         `mapstructure:"sqlite_path"`
	Migrations string         `mapstructure:"migrations"`
}

// DatabaseConfig represents PostgreSQL connection configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// CacheConfig configures the rendered-report cache.
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	RedisURL    string        `mapstructure:"redis_url"`
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	MemoryItems int           `mapstructure:"memory_items"`
}

// DeliveryConfig configures outbound report delivery.
type DeliveryConfig struct {
	SMTP         SMTPConfig `mapstructure:"smtp"`
	WhatsAppLink string     `mapstructure:"whatsapp_link"`
	RatePerMin   int        `mapstructure:"rate_per_min"`
}

// SMTPConfig represents SMTP mail transport configuration
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Sender   string `mapstructure:"sender"`
}

// ClinicConfig carries the clinic identity strings rendered on every report.
type ClinicConfig struct {
	ReportTitle string `mapstructure:"report_title"`
	DoctorLine  string `mapstructure:"doctor_line"`
	Name        string `mapstructure:"name"`
	FooterText  string `mapstructure:"footer_text"`
}

// RenderConfig configures the PDF document renderer.
type RenderConfig struct {
	FontPath string `mapstructure:"font_path"`
	LogoPath string `mapstructure:"logo_path"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
