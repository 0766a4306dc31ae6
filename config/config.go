package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Wizard  WizardConfig
	Print   PrintConfig
}

type AppConfig struct {
	Port       string
	Env        string
	LogLevel   string
	CORSOrigin string
}

type BackendConfig struct {
	BaseURL         string
	Timeout         time.Duration
	RetryCount      int
	IdempotencyKeys bool
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Enabled reports whether a database was configured.
func (c DBConfig) Enabled() bool {
	return c.Host != ""
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	SessionExpiry time.Duration
}

type WizardConfig struct {
	SessionTTL      time.Duration
	NavigationDelay time.Duration
}

type PrintConfig struct {
	Dir string
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	return load(viper.New(), ".env")
}

func load(v *viper.Viper, file string) (*Config, error) {
	setDefaults(v)

	v.SetConfigFile(file)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	sessionTTL := parseDuration(v.GetString("WIZARD_SESSION_TTL"), 2*time.Hour)

	config := &Config{
		App: AppConfig{
			Port:       v.GetString("APP_PORT"),
			Env:        v.GetString("APP_ENV"),
			LogLevel:   v.GetString("APP_LOG_LEVEL"),
			CORSOrigin: v.GetString("APP_CORS_ORIGIN"),
		},
		Backend: BackendConfig{
			BaseURL:         v.GetString("BACKEND_BASE_URL"),
			Timeout:         parseDuration(v.GetString("BACKEND_TIMEOUT"), 15*time.Second),
			RetryCount:      v.GetInt("BACKEND_RETRY_COUNT"),
			IdempotencyKeys: v.GetBool("BACKEND_IDEMPOTENCY_KEYS"),
		},
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			SessionExpiry: sessionTTL,
		},
		Wizard: WizardConfig{
			SessionTTL:      sessionTTL,
			NavigationDelay: parseDuration(v.GetString("WIZARD_NAVIGATION_DELAY"), 900*time.Millisecond),
		},
		Print: PrintConfig{
			Dir: v.GetString("PRINT_DIR"),
		},
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_LOG_LEVEL", "info")
	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8081/api/v1")
	v.SetDefault("BACKEND_TIMEOUT", "15s")
	v.SetDefault("BACKEND_RETRY_COUNT", 2)
	v.SetDefault("BACKEND_IDEMPOTENCY_KEYS", false)
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("WIZARD_SESSION_TTL", "2h")
	v.SetDefault("WIZARD_NAVIGATION_DELAY", "900ms")
	v.SetDefault("PRINT_DIR", "reports")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
