package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Booking BookingConfig `yaml:"booking"`
	Ticket  TicketConfig  `yaml:"ticket"`
	Worker  WorkerConfig  `yaml:"worker"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

type StorageConfig struct {
	// Backend is "memory" or "redis".
	Backend       string `yaml:"backend"`
	MarkerTTLDays int    `yaml:"marker_ttl_days"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	RecipientLabel    string `yaml:"recipient_label"`
	EventsCacheTTL    int    `yaml:"events_cache_ttl_seconds"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
	RedeemPerMinute   int    `yaml:"redeem_per_minute"`
	RedeemBurst       int    `yaml:"redeem_burst"`
}

type TicketConfig struct {
	ImageTimeoutMillis int    `yaml:"image_timeout_millis"`
	OutputDir          string `yaml:"output_dir"`
}

func (t TicketConfig) ImageTimeout() time.Duration {
	if t.ImageTimeoutMillis <= 0 {
		return 1500 * time.Millisecond
	}
	return time.Duration(t.ImageTimeoutMillis) * time.Millisecond
}

type WorkerConfig struct {
	SenderAddress string `yaml:"sender_address"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// SHOW_API_URL overrides the file so deployments can point at another API.
	if u := os.Getenv("SHOW_API_URL"); u != "" {
		cfg.API.BaseURL = u
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:5000"
	}
	if cfg.Booking.RecipientLabel == "" {
		cfg.Booking.RecipientLabel = " [Numéro de l'artiste]"
	}

	return &cfg, nil
}
