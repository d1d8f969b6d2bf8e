// Package config loads runtime configuration from the environment.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
)

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite". Sqlite is intended for local
	// development and tests only.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SchedulerConfig struct {
	// SweepInterval controls how often the overdue sweep runs. The sweep is
	// idempotent, so running it more often than daily is harmless.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	// LockTTL bounds how long a crashed worker can hold the sweep lock.
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

// Load reads configuration from the environment with the CONDOVIA prefix.
// A local .env file is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CONDOVIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "condovia.db")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("scheduler.sweep_interval", time.Hour)
	v.SetDefault("scheduler.lock_ttl", 10*time.Minute)
	v.SetDefault("log.level", "info")

	// AutomaticEnv alone does not surface env vars through Unmarshal, so
	// bind the known keys explicitly.
	for _, key := range []string{
		"server.addr",
		"database.driver",
		"database.dsn",
		"redis.addr",
		"redis.password",
		"redis.db",
		"scheduler.sweep_interval",
		"scheduler.lock_ttl",
		"log.level",
	} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
