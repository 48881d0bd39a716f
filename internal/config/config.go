package config

import (
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	URL          string
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Enabled bool
}

type JWTConfig struct {
	Secret string
}

var (
	instance *Config
	once     sync.Once
)

// Load reads configuration from environment variables (a local .env file is
// honored if present) and applies defaults. Safe to call more than once.
func Load() *Config {
	once.Do(func() {
		// Missing .env is fine outside development.
		_ = godotenv.Load()

		viper.SetDefault("RECRUIT_HOST", "")
		viper.SetDefault("RECRUIT_PORT", "8080")
		viper.SetDefault("RECRUIT_READ_TIMEOUT", 30*time.Second)
		viper.SetDefault("RECRUIT_WRITE_TIMEOUT", 30*time.Second)
		viper.SetDefault("RECRUIT_IDLE_TIMEOUT", 60*time.Second)
		viper.SetDefault("RECRUIT_JWT_SECRET", "secret")
		viper.SetDefault("MYSQL_USER", "root")
		viper.SetDefault("MYSQL_PASSWORD", "password")
		viper.SetDefault("MYSQL_HOST", "localhost")
		viper.SetDefault("MYSQL_PORT", "3306")
		viper.SetDefault("MYSQL_DB", "recruit")
		viper.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/0")
		viper.SetDefault("REDIS_MAX_RETRIES", 3)
		viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
		viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
		viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
		viper.SetDefault("REDIS_POOL_SIZE", 100)
		viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
		viper.SetDefault("KAFKA_ENABLED", false)
		viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
		viper.SetDefault("KAFKA_TOPIC", "recruit.notifications")
		viper.SetDefault("KAFKA_GROUP_ID", "recruit-realtime")
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Host:         viper.GetString("RECRUIT_HOST"),
				Port:         viper.GetString("RECRUIT_PORT"),
				ReadTimeout:  viper.GetDuration("RECRUIT_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("RECRUIT_WRITE_TIMEOUT"),
				IdleTimeout:  viper.GetDuration("RECRUIT_IDLE_TIMEOUT"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("MYSQL_HOST"),
				Port:     viper.GetString("MYSQL_PORT"),
				User:     viper.GetString("MYSQL_USER"),
				Password: viper.GetString("MYSQL_PASSWORD"),
				DBName:   viper.GetString("MYSQL_DB"),
			},
			Redis: RedisConfig{
				URL:          viper.GetString("REDIS_URL"),
				MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
				DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
				ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
				PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
				MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
			},
			Kafka: KafkaConfig{
				Brokers: strings.Split(viper.GetString("KAFKA_BROKERS"), ","),
				Topic:   viper.GetString("KAFKA_TOPIC"),
				GroupID: viper.GetString("KAFKA_GROUP_ID"),
				Enabled: viper.GetBool("KAFKA_ENABLED"),
			},
			JWT: JWTConfig{
				Secret: viper.GetString("RECRUIT_JWT_SECRET"),
			},
		}
	})
	return instance
}
