package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/au-temperature-map/internal/animation"
	"github.com/couchcryptid/au-temperature-map/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	HTTP2Cleartext  bool
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset locations.
	RegionsPath       string
	TemperaturesPath  string
	RegionKeyProperty string

	// Animation and rendering.
	Start              domain.YearMonth
	End                domain.YearMonth
	MinTemp            float64
	MaxTemp            float64
	TickInterval       time.Duration
	TransitionDuration time.Duration
	EndPolicy          animation.EndPolicy
	DefaultSelection   domain.Selection
	FrameCacheSize     int

	// Kafka frame sink.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaFrameTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	start, err := domain.ParseYearMonth(sharedcfg.EnvOrDefault("START_MONTH", "2000-01"))
	if err != nil {
		return nil, fmt.Errorf("invalid START_MONTH: %w", err)
	}
	end, err := domain.ParseYearMonth(sharedcfg.EnvOrDefault("END_MONTH", "2024-06"))
	if err != nil {
		return nil, fmt.Errorf("invalid END_MONTH: %w", err)
	}
	if end.Compare(start) < 0 {
		return nil, errors.New("END_MONTH must not be before START_MONTH")
	}

	minTemp, err := parseFloat("MIN_TEMP", "0")
	if err != nil {
		return nil, err
	}
	maxTemp, err := parseFloat("MAX_TEMP", "35")
	if err != nil {
		return nil, err
	}
	if minTemp >= maxTemp {
		return nil, errors.New("MIN_TEMP must be below MAX_TEMP")
	}

	tick, err := parsePositiveDuration("TICK_INTERVAL", "300ms")
	if err != nil {
		return nil, err
	}
	transition, err := parsePositiveDuration("TRANSITION_DURATION", "200ms")
	if err != nil {
		return nil, err
	}

	policy, err := animation.ParseEndPolicy(sharedcfg.EnvOrDefault("END_POLICY", "stop"))
	if err != nil {
		return nil, fmt.Errorf("invalid END_POLICY: %w", err)
	}

	cacheSize, err := strconv.Atoi(sharedcfg.EnvOrDefault("FRAME_CACHE_SIZE", "256"))
	if err != nil || cacheSize <= 0 {
		return nil, errors.New("invalid FRAME_CACHE_SIZE")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		HTTP2Cleartext:  os.Getenv("HTTP2_CLEARTEXT") == "true",
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RegionsPath:       sharedcfg.EnvOrDefault("REGIONS_PATH", "data/regions.geojson"),
		TemperaturesPath:  sharedcfg.EnvOrDefault("TEMPERATURES_PATH", "data/temperatures.csv"),
		RegionKeyProperty: sharedcfg.EnvOrDefault("REGION_KEY_PROPERTY", "POA_CODE"),

		Start:              start,
		End:                end,
		MinTemp:            minTemp,
		MaxTemp:            maxTemp,
		TickInterval:       tick,
		TransitionDuration: transition,
		EndPolicy:          policy,
		DefaultSelection: domain.Selection{
			sharedcfg.EnvOrDefault("CITY_1", "2000"),
			sharedcfg.EnvOrDefault("CITY_2", "3000"),
		},
		FrameCacheSize: cacheSize,

		KafkaEnabled:    os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaFrameTopic: sharedcfg.EnvOrDefault("KAFKA_FRAME_TOPIC", "temperature-frames"),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

func parseFloat(key, def string) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
