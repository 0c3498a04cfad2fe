// Package config loads application configuration from file, environment,
// and defaults using Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

// Manager loads and validates the application configuration
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/mypcos-ai/")

	viper.SetEnvPrefix("MYPCOS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars are enough to run.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Storage defaults
	viper.SetDefault("storage.driver", "sqlite")
	viper.SetDefault("storage.sqlite_path", "mypcos.db")
	viper.SetDefault("storage.migrations", "migrations")
	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", 5432)
	viper.SetDefault("storage.postgres.database", "mypcos")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "")
	viper.SetDefault("storage.postgres.ssl_mode", "disable")
	viper.SetDefault("storage.postgres.max_open_conns", 25)
	viper.SetDefault("storage.postgres.max_idle_conns", 5)
	viper.SetDefault("storage.postgres.conn_max_lifetime", "5m")

	// Cache defaults
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.default_ttl", "1h")
	viper.SetDefault("cache.memory_items", 256)

	// Delivery defaults
	viper.SetDefault("delivery.smtp.host", "")
	viper.SetDefault("delivery.smtp.port", 587)
	viper.SetDefault("delivery.smtp.sender", "")
	viper.SetDefault("delivery.whatsapp_link", "https://wa.me/message/KOVNJCQPRWZDF1")
	viper.SetDefault("delivery.rate_per_min", 30)

	// Clinic identity defaults
	viper.SetDefault("clinic.report_title", "PCOS Assessment Report")
	viper.SetDefault("clinic.doctor_line", "Dr. Arshad Mohammed, MD")
	viper.SetDefault("clinic.name", "Clinics Northside")
	viper.SetDefault("clinic.footer_text", "Clinics Northside | Confidential | www.clinicsnorthside.com")

	// Render defaults
	viper.SetDefault("render.font_path", "")
	viper.SetDefault("render.logo_path", "")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetStorageConfig returns storage configuration
func (m *Manager) GetStorageConfig() *domain.StorageConfig {
	return &m.config.Storage
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	switch config.Storage.Driver {
	case "postgres":
		pg := config.Storage.Postgres
		if pg.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if pg.Database == "" {
			return fmt.Errorf("postgres database name is required")
		}
		if pg.Username == "" {
			return fmt.Errorf("postgres username is required")
		}
	case "sqlite":
		if config.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", config.Storage.Driver)
	}

	if config.Delivery.SMTP.Host != "" && config.Delivery.SMTP.Sender == "" {
		return fmt.Errorf("smtp sender is required when smtp host is set")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// PostgresDSN returns a formatted PostgreSQL connection string
func (m *Manager) PostgresDSN() string {
	pg := m.config.Storage.Postgres
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		pg.Host, pg.Port, pg.Username, pg.Password, pg.Database, pg.SSLMode)
}

// PostgresURL returns the URL form used by the migration runner
func (m *Manager) PostgresURL() string {
	pg := m.config.Storage.Postgres
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pg.Username, pg.Password, pg.Host, pg.Port, pg.Database, pg.SSLMode)
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}
