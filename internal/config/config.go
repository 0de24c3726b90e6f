package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Поддерживаемые движки хранения
const (
	StorageEnginePostgres = "postgres"
	StorageEngineMemory   = "memory"
)

var (
	// ErrReadConfig возвращается при ошибке чтения файла конфигурации
	ErrReadConfig = errors.New("config: failed to read config file")

	// ErrInvalidConfig возвращается при некорректных значениях конфигурации
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig      `toml:"server"`
	Logs      LogsConfig        `toml:"logs"`
	Storage   StorageConfig     `toml:"storage"`
	Database  DatabaseConfig    `toml:"database"`
	Metrics   MetricsConfig     `toml:"metrics"`
	Payment   IntegrationConfig `toml:"payment_service"`
	Analytics IntegrationConfig `toml:"analytics_service"`
	Category  IntegrationConfig `toml:"category_service"`
	Booking   BookingConfig     `toml:"booking"`
	Access    AccessConfig      `toml:"access"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// StorageConfig выбор движка хранения
type StorageConfig struct {
	Engine string `toml:"engine"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения к PostgreSQL
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// MetricsConfig настройки prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// IntegrationConfig настройки клиента внешнего сервиса
type IntegrationConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// BookingConfig настройки движка бронирований
type BookingConfig struct {
	// ValidateCategories включает строгую проверку категории через
	// CategoryService при создании и изменении услуги (по умолчанию выкл.)
	ValidateCategories bool `toml:"validate_categories"`

	// EnforcePriceRange включает строгую проверку priceMin <= priceMax
	// (по умолчанию выкл., разрешительный контракт источника)
	EnforcePriceRange bool `toml:"enforce_price_range"`

	// PendingTTLMinutes срок жизни неподтверждённого бронирования в минутах;
	// 0 отключает фоновую отмену (поведение по умолчанию: слот может
	// удерживаться Pending-бронированием бессрочно)
	PendingTTLMinutes int `toml:"pending_ttl_minutes"`

	// ExpireIntervalSeconds период запуска фоновой отмены
	ExpireIntervalSeconds int `toml:"expire_interval_seconds"`
}

// AccessConfig настройки ролей платформы
type AccessConfig struct {
	AdminIDs []int64 `toml:"admin_ids"`
}

// Load читает и валидирует конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadConfig, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Logs.Level == "" {
		cfg.Logs.Level = "info"
	}
	if cfg.Storage.Engine == "" {
		cfg.Storage.Engine = StorageEnginePostgres
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "marketplace-service"
	}
	if cfg.Booking.ExpireIntervalSeconds == 0 {
		cfg.Booking.ExpireIntervalSeconds = 60
	}
}

func validate(cfg *Config) error {
	switch cfg.Storage.Engine {
	case StorageEnginePostgres, StorageEngineMemory:
	default:
		return fmt.Errorf("%w: unknown storage engine %q", ErrInvalidConfig, cfg.Storage.Engine)
	}

	if cfg.Storage.Engine == StorageEnginePostgres && cfg.Database.Host == "" {
		return fmt.Errorf("%w: database.host is required for postgres storage", ErrInvalidConfig)
	}

	if cfg.Booking.PendingTTLMinutes < 0 {
		return fmt.Errorf("%w: booking.pending_ttl_minutes must be >= 0", ErrInvalidConfig)
	}

	return nil
}
