package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	// Proxies whose X-Forwarded-For is believed. Empty trusts none.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// MongoDB.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisBookingDB int    `mapstructure:"REDIS_BOOKING_DB"`

	// Booking sessions.
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`
	CommitTimeout time.Duration `mapstructure:"COMMIT_TIMEOUT"`

	// Stripe.
	StripeKey           string        `mapstructure:"STRIPE_KEY"`
	Currency            string        `mapstructure:"CURRENCY"`
	PaymentTimeout      time.Duration `mapstructure:"PAYMENT_TIMEOUT"`
	PaymentPollInterval time.Duration `mapstructure:"PAYMENT_POLL_INTERVAL"`

	// Kafka. An empty broker list disables event publishing.
	KafkaBrokers      []string `mapstructure:"KAFKA_BROKERS"`
	KafkaBookingTopic string   `mapstructure:"KAFKA_BOOKING_TOPIC"`
}

var AppConfig Config

func LoadConfig() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TRUSTED_PROXIES", []string{})
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "hobbyist")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_BOOKING_DB", 0)
	v.SetDefault("SESSION_TTL", 30*time.Minute)
	v.SetDefault("COMMIT_TIMEOUT", 10*time.Minute)
	v.SetDefault("STRIPE_KEY", "")
	v.SetDefault("CURRENCY", "usd")
	v.SetDefault("PAYMENT_TIMEOUT", 5*time.Minute)
	v.SetDefault("PAYMENT_POLL_INTERVAL", 2*time.Second)
	v.SetDefault("KAFKA_BROKERS", []string{})
	v.SetDefault("KAFKA_BOOKING_TOPIC", "booking.confirmed")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
