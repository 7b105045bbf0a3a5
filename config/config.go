package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/Domenick1991/classbooking/internal/window"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Auth      AuthConfig      `yaml:"auth"`
	Studio    StudioConfig    `yaml:"studio"`
	Booking   BookingConfig   `yaml:"booking"`
	Generator GeneratorConfig `yaml:"generator"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // postgres | memory
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int32  `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
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

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

type StudioConfig struct {
	HomeTimezone       string `yaml:"home_timezone"`
	Locale             string `yaml:"locale"`
	MorningHour        int    `yaml:"morning_hour"`
	MorningCutoff      string `yaml:"morning_cutoff"`
	EveningHour        int    `yaml:"evening_hour"`
	EveningCutoff      string `yaml:"evening_cutoff"`
	DefaultLeadMinutes int    `yaml:"default_lead_minutes"`
}

type BookingConfig struct {
	OperationTimeoutMS int `yaml:"operation_timeout_ms"`
	MaxTxRetries       int `yaml:"max_tx_retries"`
	ScheduleCacheTTL   int `yaml:"schedule_cache_ttl_seconds"`
}

type GeneratorConfig struct {
	Cron       string `yaml:"cron"`
	DaysAhead  int    `yaml:"days_ahead"`
	RunOnStart bool   `yaml:"run_on_start"`
}

// LoadConfig reads the YAML file at path after loading an optional .env file.
// JWT_SECRET and DATABASE_PASSWORD from the environment override the file.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	return cfg, nil
}

// Parse decodes YAML, fills defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		HTTP:    HTTPConfig{Address: ":8080"},
		GRPC:    GRPCConfig{Address: ":9090"},
		Storage: StorageConfig{Driver: "postgres"},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Name:     "classbooking",
			SSLMode:  "disable",
			MaxConns: 20,
		},
		Kafka: KafkaConfig{
			BookingEventsTopic: "booking-events",
			NotificationsTopic: "booking-notifications",
			GroupID:            "classbooking-worker",
		},
		Studio: StudioConfig{
			HomeTimezone:       "Europe/London",
			Locale:             "en-GB",
			MorningHour:        6,
			MorningCutoff:      "20:30",
			EveningHour:        18,
			EveningCutoff:      "15:00",
			DefaultLeadMinutes: 120,
		},
		Booking: BookingConfig{
			OperationTimeoutMS: 3000,
			MaxTxRetries:       5,
			ScheduleCacheTTL:   30,
		},
		Generator: GeneratorConfig{
			Cron:      "0 2 * * *",
			DaysAhead: 28,
		},
	}
}

func (c *Config) Validate() error {
	if c.Storage.Driver != "postgres" && c.Storage.Driver != "memory" {
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	if _, err := time.LoadLocation(c.Studio.HomeTimezone); err != nil {
		return fmt.Errorf("studio.home_timezone: %w", err)
	}
	if _, _, err := domain.ParseClock(c.Studio.MorningCutoff); err != nil {
		return fmt.Errorf("studio.morning_cutoff: %w", err)
	}
	if _, _, err := domain.ParseClock(c.Studio.EveningCutoff); err != nil {
		return fmt.Errorf("studio.evening_cutoff: %w", err)
	}
	if c.Generator.DaysAhead < 0 {
		return errors.New("generator.days_ahead must not be negative")
	}
	if c.Booking.OperationTimeoutMS <= 0 {
		return errors.New("booking.operation_timeout_ms must be positive")
	}
	return nil
}

// HomeLocation is only valid after Validate.
func (c *Config) HomeLocation() *time.Location {
	loc, err := time.LoadLocation(c.Studio.HomeTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) WindowPolicy() window.Policy {
	mh, mm, _ := domain.ParseClock(c.Studio.MorningCutoff)
	eh, em, _ := domain.ParseClock(c.Studio.EveningCutoff)
	return window.Policy{
		MorningHour:   c.Studio.MorningHour,
		MorningCutoff: window.Cutoff{Hour: mh, Minute: mm},
		EveningHour:   c.Studio.EveningHour,
		EveningCutoff: window.Cutoff{Hour: eh, Minute: em},
		Lead:          time.Duration(c.Studio.DefaultLeadMinutes) * time.Minute,
	}
}

func (c *Config) OperationTimeout() time.Duration {
	return time.Duration(c.Booking.OperationTimeoutMS) * time.Millisecond
}

func (c *Config) ScheduleCacheTTL() time.Duration {
	return time.Duration(c.Booking.ScheduleCacheTTL) * time.Second
}
