package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Email    EmailConfig
	RabbitMQ RabbitMQConfig
	Redis    RedisConfig
	App      AppConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port    string
	Timeout time.Duration
}

// EmailConfig holds the raw provider inputs; precedence between them is
// applied by the resolver, not here.
type EmailConfig struct {
	Service      string
	User         string
	Password     string
	ResendAPIKey string
	FromEmail    string
	LocalMode    bool
}

// Underscored viper keys need explicit mapstructure tags; the decoder's
// default case-insensitive match cannot cross the underscore.
type RabbitMQConfig struct {
	URL          string
	Exchange     string
	CreatedQueue string `mapstructure:"created_queue"`
	UpdatedQueue string `mapstructure:"updated_queue"`
	FailedQueue  string `mapstructure:"failed_queue"`
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AppConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type AuthConfig struct {
	JWTSecret string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.timeout", "300s")
	viper.SetDefault("rabbitmq.exchange", "formflow.events")
	viper.SetDefault("rabbitmq.created_queue", "submission.created")
	viper.SetDefault("rabbitmq.updated_queue", "submission.updated")
	viper.SetDefault("rabbitmq.failed_queue", "submission.failed")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("app.base_url", "https://formflow.com")

	// Read from environment
	viper.AutomaticEnv()
	viper.BindEnv("email.service", "EMAIL_SERVICE")
	viper.BindEnv("email.user", "EMAIL_USER")
	viper.BindEnv("email.password", "EMAIL_PASSWORD")
	viper.BindEnv("email.resendapikey", "RESEND_API_KEY")
	viper.BindEnv("email.fromemail", "FROM_EMAIL")
	viper.BindEnv("email.localmode", "LOCAL_MODE")
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("rabbitmq.url", "RABBITMQ_URL")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("auth.jwtsecret", "JWT_SECRET")
	viper.BindEnv("app.base_url", "BASE_URL")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
