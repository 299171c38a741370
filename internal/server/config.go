package server

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hasanasadov/hasscreen/internal/logging"
)

type Config struct {
	Server ServerConfig
	Log    logging.Config
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// LoadConfig reads configuration from ./config/config.yaml (optional)
// and the environment. Environment variables win over file values.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.BindEnv("server.port", "PORT")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Server.ReadTimeout = parseDuration(v, "server.read_timeout", 15*time.Second)
	cfg.Server.WriteTimeout = parseDuration(v, "server.write_timeout", 15*time.Second)
	cfg.Server.IdleTimeout = parseDuration(v, "server.idle_timeout", 60*time.Second)

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return defaultVal
	}
	return d
}
