package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Dialog session lifecycle.
	SessionTTLMinutes int    `mapstructure:"SESSION_TTL_MINUTES"`
	SessionKeyPrefix  string `mapstructure:"SESSION_KEY_PREFIX"`

	// External collaborators.
	NLUServiceURL       string `mapstructure:"NLU_SERVICE_URL"`
	ExecutionServiceURL string `mapstructure:"EXECUTION_SERVICE_URL"`
	ReminderWebhookURL  string `mapstructure:"REMINDER_WEBHOOK_URL"`

	// Tenant catalog (Mongo).
	MongoURI string `mapstructure:"MONGO_URI"`
	MongoDB  string `mapstructure:"MONGO_DB"`

	// Dialog YAML config directory (intent_signals.yaml, intent_execution.yaml).
	DialogConfigDir string `mapstructure:"DIALOG_CONFIG_DIR"`

	// Decision policy toggles.
	AllowTimeWindows        bool `mapstructure:"ALLOW_TIME_WINDOWS"`
	AllowConstraintOnlyTime bool `mapstructure:"ALLOW_CONSTRAINT_ONLY_TIME"`
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
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("SESSION_TTL_MINUTES", 30)
	viper.SetDefault("SESSION_KEY_PREFIX", "dlg")
	viper.SetDefault("NLU_SERVICE_URL", "http://nlu-service:8000/resolve")
	viper.SetDefault("EXECUTION_SERVICE_URL", "http://execution-service:8100/dispatch")
	viper.SetDefault("REMINDER_WEBHOOK_URL", "")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "concierge")
	viper.SetDefault("DIALOG_CONFIG_DIR", "./config")
	viper.SetDefault("ALLOW_TIME_WINDOWS", true)
	viper.SetDefault("ALLOW_CONSTRAINT_ONLY_TIME", true)

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
