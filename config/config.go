package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`

	// External scheduling provider (calendar event + meeting + notifications).
	SchedulingEndpoint       string `mapstructure:"SCHEDULING_ENDPOINT"`
	SchedulingHealthEndpoint string `mapstructure:"SCHEDULING_HEALTH_ENDPOINT"`
	SchedulingTimeoutSec     int    `mapstructure:"SCHEDULING_TIMEOUT_SEC"`

	// Agency calendar ICS feed consumed for busy intervals.
	CalendarICSURL          string `mapstructure:"CALENDAR_ICS_URL"`
	CalendarFetchTimeoutSec int    `mapstructure:"CALENDAR_FETCH_TIMEOUT_SEC"`

	// Booking session lifetime in minutes.
	SessionTTLMin int `mapstructure:"SESSION_TTL_MIN"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("SCHEDULING_ENDPOINT", "")
	viper.SetDefault("SCHEDULING_HEALTH_ENDPOINT", "")
	viper.SetDefault("SCHEDULING_TIMEOUT_SEC", 30)
	viper.SetDefault("CALENDAR_ICS_URL", "")
	viper.SetDefault("CALENDAR_FETCH_TIMEOUT_SEC", 15)
	viper.SetDefault("SESSION_TTL_MIN", 30)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
