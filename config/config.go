// Package config loads the service configuration from defaults, an optional
// config file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConfigFileEnv names the environment variable pointing at an optional config file.
const ConfigFileEnv = "TASKFLOW_CONFIG"

// Config is the complete service configuration.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	HTTP         HTTPConfig         `mapstructure:"http"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Users        UsersConfig        `mapstructure:"users"`
	Notification NotificationConfig `mapstructure:"notification"`
}

// AppConfig controls the mono application.
type AppConfig struct {
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// LogLevel is info or error
	LogLevel string `mapstructure:"log_level"`
}

// HTTPConfig controls the Fiber server.
type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// RequireAuth puts task, log and notification routes behind the bearer token middleware.
	RequireAuth bool `mapstructure:"require_auth"`
}

// DatabaseConfig holds the SQLite file of each module.
type DatabaseConfig struct {
	UsersPath    string `mapstructure:"users_path"`
	TasksPath    string `mapstructure:"tasks_path"`
	ActivityPath string `mapstructure:"activity_path"`
	Debug        bool   `mapstructure:"debug"`
}

// RedisConfig controls the load-count cache.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
	PoolSize int           `mapstructure:"pool_size"`
}

// JWTConfig controls login tokens.
type JWTConfig struct {
	SecretKey           string        `mapstructure:"secret_key"`
	Issuer              string        `mapstructure:"issuer"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration"`
}

// UsersConfig controls the user directory.
type UsersConfig struct {
	SeedDemo bool `mapstructure:"seed_demo"`
}

// NotificationConfig controls the notification feed.
type NotificationConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		App: AppConfig{
			ShutdownTimeout: 30 * time.Second,
			LogLevel:        "info",
		},
		HTTP: HTTPConfig{
			Port:         3000,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			UsersPath:    "users.db",
			TasksPath:    "tasks.db",
			ActivityPath: "activity.db",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Prefix:   "taskflow:load:",
			TTL:      5 * time.Minute,
			PoolSize: 20,
		},
		JWT: JWTConfig{
			SecretKey:           "change-me-in-production",
			Issuer:              "task-workflow",
			AccessTokenDuration: 24 * time.Hour,
		},
		Notification: NotificationConfig{
			Capacity: 100,
		},
	}
}

// Load builds the configuration. Later sources win: defaults, the file named
// by TASKFLOW_CONFIG, then environment variables such as HTTP_PORT or
// DATABASE_TASKS_PATH.
func Load() (Config, error) {
	return load(viper.New(), os.Getenv(ConfigFileEnv))
}

func load(v *viper.Viper, configFile string) (Config, error) {
	setDefaults(v, Default())

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("app.shutdown_timeout", d.App.ShutdownTimeout)
	v.SetDefault("app.log_level", d.App.LogLevel)

	v.SetDefault("http.port", d.HTTP.Port)
	v.SetDefault("http.read_timeout", d.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", d.HTTP.WriteTimeout)
	v.SetDefault("http.require_auth", d.HTTP.RequireAuth)

	v.SetDefault("database.users_path", d.Database.UsersPath)
	v.SetDefault("database.tasks_path", d.Database.TasksPath)
	v.SetDefault("database.activity_path", d.Database.ActivityPath)
	v.SetDefault("database.debug", d.Database.Debug)

	v.SetDefault("redis.enabled", d.Redis.Enabled)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.prefix", d.Redis.Prefix)
	v.SetDefault("redis.ttl", d.Redis.TTL)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)

	v.SetDefault("jwt.secret_key", d.JWT.SecretKey)
	v.SetDefault("jwt.issuer", d.JWT.Issuer)
	v.SetDefault("jwt.access_token_duration", d.JWT.AccessTokenDuration)

	v.SetDefault("users.seed_demo", d.Users.SeedDemo)

	v.SetDefault("notification.capacity", d.Notification.Capacity)
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}
	if c.Database.UsersPath == "" || c.Database.TasksPath == "" || c.Database.ActivityPath == "" {
		errs = append(errs, errors.New("database paths must not be empty"))
	}
	if c.JWT.SecretKey == "" {
		errs = append(errs, errors.New("jwt.secret_key must not be empty"))
	}
	if c.JWT.AccessTokenDuration <= 0 {
		errs = append(errs, errors.New("jwt.access_token_duration must be positive"))
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when redis is enabled"))
	}
	if c.App.LogLevel != "info" && c.App.LogLevel != "error" {
		errs = append(errs, fmt.Errorf("app.log_level must be info or error, got %q", c.App.LogLevel))
	}
	if c.Notification.Capacity <= 0 {
		errs = append(errs, errors.New("notification.capacity must be positive"))
	}
	return errors.Join(errs...)
}
