package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Security SecurityConfig `mapstructure:"security"`
	Sheet    SheetConfig    `mapstructure:"sheet"`

	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
	SlowQuery    time.Duration `mapstructure:"slow_query"` // 0 disables
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	RedisPrefix     string        `mapstructure:"redis_prefix"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
}

type SecurityConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTLH        time.Duration `mapstructure:"jwt_ttl_h"`
	BcryptCost     int           `mapstructure:"bcrypt_cost"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	// AdminIPs restricts /api/admin to these client IPs. Empty allows all.
	AdminIPs []string `mapstructure:"admin_ips"`
}

type SheetConfig struct {
	// CacheTTL bounds how long a computed character sheet is served from cache.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// RankingSize caps the per-campaign points ranking.
	RankingSize int `mapstructure:"ranking_size"`
}

// MaintenanceConfig schedules background jobs. Zero disables a job.
type MaintenanceConfig struct {
	RankingRefresh time.Duration `mapstructure:"ranking_refresh"`
	AuditRetention time.Duration `mapstructure:"audit_retention"`
	AuditPurge     time.Duration `mapstructure:"audit_purge"`
}

// Load reads config from the given YAML file path. Every key can be
// overridden from the environment as GURPS_<SECTION>_<KEY>.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("GURPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.admin_key", "")
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/gurps.db")
	v.SetDefault("database.mysql_dsn", "")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("database.slow_query", "200ms")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.redis_prefix", "gurps:")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("security.jwt_secret", "")
	v.SetDefault("security.jwt_ttl_h", "72h")
	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.rate_limit_rps", 50)
	v.SetDefault("security.rate_limit_burst", 100)
	v.SetDefault("security.admin_ips", []string{})
	v.SetDefault("sheet.cache_ttl", "10m")
	v.SetDefault("sheet.ranking_size", 50)
	v.SetDefault("maintenance.ranking_refresh", "1h")
	v.SetDefault("maintenance.audit_retention", "2160h")
	v.SetDefault("maintenance.audit_purge", "24h")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	switch c.Database.Mode {
	case "sqlite":
		if c.Database.SQLitePath == "" {
			errs = append(errs, "database.sqlite_path is required in sqlite mode")
		}
	case "mysql":
		if c.Database.MySQLDSN == "" {
			errs = append(errs, "database.mysql_dsn is required in mysql mode")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.mode must be one of [sqlite, mysql], got %q", c.Database.Mode))
	}
	if c.Security.JWTSecret == "" {
		errs = append(errs, "security.jwt_secret is required")
	}
	if c.Security.JWTTTLH <= 0 {
		errs = append(errs, "security.jwt_ttl_h must be positive")
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		errs = append(errs, fmt.Sprintf("security.bcrypt_cost must be 4-31, got %d", c.Security.BcryptCost))
	}
	if c.Security.RateLimitRPS <= 0 || c.Security.RateLimitBurst <= 0 {
		errs = append(errs, "security.rate_limit_rps and rate_limit_burst must be positive")
	}
	if c.Sheet.RankingSize <= 0 {
		errs = append(errs, "sheet.ranking_size must be positive")
	}
	if c.Maintenance.AuditPurge > 0 && c.Maintenance.AuditRetention <= 0 {
		errs = append(errs, "maintenance.audit_retention must be positive when audit_purge is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
