package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Hub    HubConfig
	Kafka  KafkaConfig
	Minio  MinioConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type MongoConfig struct {
	URI      string
	Database string
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

// JWTConfig carries one independent signing secret per role.
type JWTConfig struct {
	CustomerSecret string
	BusinessSecret string
	AdminSecret    string
}

type HubConfig struct {
	HandshakeTimeout time.Duration
	AuthTimeout      time.Duration
	SendBuffer       int
}

// KafkaConfig is optional; no brokers means no audit events.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// MinioConfig is optional; no endpoint disables attachment upload.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("SECURENT_HOST", "")
	viper.SetDefault("SECURENT_PORT", "8080")
	viper.SetDefault("SECURENT_READ_TIMEOUT", 30*time.Second)
	viper.SetDefault("SECURENT_WRITE_TIMEOUT", 30*time.Second)
	viper.SetDefault("SECURENT_IDLE_TIMEOUT", 60*time.Second)
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "securent")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("REDIS_MAX_RETRIES", 3)
	viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
	viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
	viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
	viper.SetDefault("REDIS_POOL_SIZE", 100)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
	viper.SetDefault("SECURENT_CUSTOMER_JWT_SECRET", "customer-secret")
	viper.SetDefault("SECURENT_BUSINESS_JWT_SECRET", "business-secret")
	viper.SetDefault("SECURENT_ADMIN_JWT_SECRET", "admin-secret")
	viper.SetDefault("SECURENT_HANDSHAKE_TIMEOUT", 10*time.Second)
	viper.SetDefault("SECURENT_AUTH_TIMEOUT", 5*time.Second)
	viper.SetDefault("SECURENT_SEND_BUFFER", 256)
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_AUDIT_TOPIC", "securent.notifications.audit")
	viper.SetDefault("MINIO_ENDPOINT", "")
	viper.SetDefault("MINIO_ACCESS_KEY", "")
	viper.SetDefault("MINIO_SECRET_KEY", "")
	viper.SetDefault("MINIO_BUCKET", "securent-notifications")
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SECURENT_HOST"),
			Port:         viper.GetString("SECURENT_PORT"),
			ReadTimeout:  viper.GetDuration("SECURENT_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("SECURENT_WRITE_TIMEOUT"),
			IdleTimeout:  viper.GetDuration("SECURENT_IDLE_TIMEOUT"),
		},
		Mongo: MongoConfig{
			URI:      viper.GetString("MONGO_URI"),
			Database: viper.GetString("MONGO_DB"),
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
		JWT: JWTConfig{
			CustomerSecret: viper.GetString("SECURENT_CUSTOMER_JWT_SECRET"),
			BusinessSecret: viper.GetString("SECURENT_BUSINESS_JWT_SECRET"),
			AdminSecret:    viper.GetString("SECURENT_ADMIN_JWT_SECRET"),
		},
		Hub: HubConfig{
			HandshakeTimeout: viper.GetDuration("SECURENT_HANDSHAKE_TIMEOUT"),
			AuthTimeout:      viper.GetDuration("SECURENT_AUTH_TIMEOUT"),
			SendBuffer:       viper.GetInt("SECURENT_SEND_BUFFER"),
		},
		Kafka: KafkaConfig{
			Brokers: splitBrokers(viper.GetString("KAFKA_BROKERS")),
			Topic:   viper.GetString("KAFKA_AUDIT_TOPIC"),
		},
		Minio: MinioConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
		},
	}, nil
}

func splitBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}
