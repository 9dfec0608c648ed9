package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppConfig struct {
	App struct {
		Name string `mapstructure:"NAME"`
		Port string `mapstructure:"PORT"`
	} `mapstructure:"APP"`

	DATABASE struct {
		Mongo struct {
			Url        string `mapstructure:"URL"`
			Database   string `mapstructure:"DATABASE"`
			Collection string `mapstructure:"COLLECTION"`
		} `mapstructure:"MONGO"`
		Redis struct {
			Addr     string        `mapstructure:"ADDR"`
			Password string        `mapstructure:"PASSWORD"`
			DB       int           `mapstructure:"DB"`
			CacheTTL time.Duration `mapstructure:"CACHE_TTL"`
		} `mapstructure:"REDIS"`
	} `mapstructure:"DATABASE"`

	AVATAR struct {
		StaticRoot     string `mapstructure:"STATIC_ROOT"`
		TempDir        string `mapstructure:"TEMP_DIR"`
		Size           int    `mapstructure:"SIZE"`
		Quality        int    `mapstructure:"QUALITY"`
		MaxUploadBytes int64  `mapstructure:"MAX_UPLOAD_BYTES"`
	} `mapstructure:"AVATAR"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP.NAME", "personnel-directory")
	v.SetDefault("APP.PORT", ":8080")
	v.SetDefault("DATABASE.MONGO.URL", "")
	v.SetDefault("DATABASE.MONGO.DATABASE", "my-first-project")
	v.SetDefault("DATABASE.MONGO.COLLECTION", "users")
	v.SetDefault("DATABASE.REDIS.ADDR", "")
	v.SetDefault("DATABASE.REDIS.PASSWORD", "")
	v.SetDefault("DATABASE.REDIS.DB", 0)
	v.SetDefault("DATABASE.REDIS.CACHE_TTL", 5*time.Minute)
	v.SetDefault("AVATAR.STATIC_ROOT", "./static")
	v.SetDefault("AVATAR.TEMP_DIR", "./temp")
	v.SetDefault("AVATAR.SIZE", 150)
	v.SetDefault("AVATAR.QUALITY", 90)
	v.SetDefault("AVATAR.MAX_UPLOAD_BYTES", 10<<20)
}

// LoadConfig reads application.yaml from dir (if present) and lets
// PERSONNEL_* environment variables override any key.
func LoadConfig(dir string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("application")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("PERSONNEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Warn().Str("dir", dir).Msg("no application.yaml found, using defaults and environment")
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if config.DATABASE.Mongo.Url == "" {
		return nil, fmt.Errorf("mongo url is empty")
	}

	log.Info().Msg("configuration loaded...")
	return &config, nil
}
