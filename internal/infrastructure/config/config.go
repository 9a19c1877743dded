package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Service identifies which binary is loading configuration
type Service string

const (
	ServiceCart      Service = "cart"
	ServiceCatalogue Service = "catalogue"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Redis     RedisConfig
	Catalogue CatalogueConfig
	Mongo     MongoConfig
	Store     StoreConfig
	Connector ConnectorConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port address of the Redis server
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// CatalogueConfig holds settings for calls to the catalogue service
type CatalogueConfig struct {
	Host           string
	Port           string
	Timeout        time.Duration
	MaxConcurrency int // 0 = one request per cart item, all in parallel
}

// BaseURL returns the catalogue service root URL
func (c CatalogueConfig) BaseURL() string {
	return "http://" + net.JoinHostPort(c.Host, c.Port)
}

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URL        string
	Database   string
	Collection string
}

// StoreConfig bounds individual backing-store calls
type StoreConfig struct {
	Timeout time.Duration
}

// ConnectorConfig holds the backing-store connection retry settings
type ConnectorConfig struct {
	RetryDelay     time.Duration
	AttemptTimeout time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
}

// envBindings maps config keys to the environment variables the services
// have always been configured with.
var envBindings = map[string][]string{
	"app.env":                   {"APP_ENV"},
	"redis.host":                {"REDIS_HOST"},
	"redis.port":                {"REDIS_PORT"},
	"redis.password":            {"REDIS_PASSWORD"},
	"redis.db":                  {"REDIS_DB"},
	"catalogue.host":            {"CATALOGUE_HOST"},
	"catalogue.port":            {"CATALOGUE_PORT"},
	"catalogue.timeout":         {"CATALOGUE_TIMEOUT"},
	"catalogue.max_concurrency": {"CATALOGUE_MAX_CONCURRENCY"},
	"mongo.url":                 {"MONGO_URL"},
	"mongo.database":            {"MONGO_DATABASE"},
	"mongo.collection":          {"MONGO_COLLECTION"},
	"store.timeout":             {"STORE_TIMEOUT"},
	"connector.retry_delay":     {"CONNECT_RETRY_DELAY"},
	"connector.attempt_timeout": {"CONNECT_ATTEMPT_TIMEOUT"},
	"log.level":                 {"LOG_LEVEL"},
	"log.format":                {"LOG_FORMAT"},
	"log.output":                {"LOG_OUTPUT"},
	"http.read_timeout":         {"HTTP_READ_TIMEOUT"},
	"http.write_timeout":        {"HTTP_WRITE_TIMEOUT"},
	"http.idle_timeout":         {"HTTP_IDLE_TIMEOUT"},
	"telemetry.enabled":         {"OTEL_ENABLED"},
	"telemetry.endpoint":        {"OTEL_EXPORTER_OTLP_ENDPOINT"},
	"telemetry.sampling_ratio":  {"OTEL_SAMPLING_RATIO"},
	"telemetry.insecure":        {"OTEL_INSECURE"},
	"telemetry.service_name":    {"OTEL_SERVICE_NAME"},
}

// portEnv is the listening port variable of each service
var portEnv = map[Service]string{
	ServiceCart:      "CART_SERVER_PORT",
	ServiceCatalogue: "CATALOGUE_SERVER_PORT",
}

// Load loads configuration for a service from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables (REDIS_HOST, CATALOGUE_HOST, MONGO_URL, ...)
// 2. config.toml
// 3. Built-in defaults
func Load(service Service) (*Config, error) {
	port, ok := portEnv[service]
	if !ok {
		return nil, fmt.Errorf("unknown service %q", service)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	if err := v.BindEnv("app.port", port); err != nil {
		return nil, fmt.Errorf("bind app.port: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name: string(service),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Catalogue: CatalogueConfig{
			Host:           v.GetString("catalogue.host"),
			Port:           v.GetString("catalogue.port"),
			Timeout:        v.GetDuration("catalogue.timeout"),
			MaxConcurrency: v.GetInt("catalogue.max_concurrency"),
		},
		Mongo: MongoConfig{
			URL:        v.GetString("mongo.url"),
			Database:   v.GetString("mongo.database"),
			Collection: v.GetString("mongo.collection"),
		},
		Store: StoreConfig{
			Timeout: v.GetDuration("store.timeout"),
		},
		Connector: ConnectorConfig{
			RetryDelay:     v.GetDuration("connector.retry_delay"),
			AttemptTimeout: v.GetDuration("connector.attempt_timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.endpoint"),
			SamplingRatio:     samplingRatio(v),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          !v.IsSet("telemetry.insecure") || v.GetBool("telemetry.insecure"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// samplingRatio distinguishes an explicit 0 from an unset value
func samplingRatio(v *viper.Viper) float64 {
	if !v.IsSet("telemetry.sampling_ratio") {
		return 1.0
	}
	return v.GetFloat64("telemetry.sampling_ratio")
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "redis"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Catalogue.Host == "" {
		cfg.Catalogue.Host = "catalogue"
	}
	if cfg.Catalogue.Port == "" {
		cfg.Catalogue.Port = "8080"
	}
	if cfg.Catalogue.Timeout == 0 {
		cfg.Catalogue.Timeout = 5 * time.Second
	}
	if cfg.Mongo.URL == "" {
		cfg.Mongo.URL = "mongodb://mongodb:27017/catalogue"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "catalogue"
	}
	if cfg.Mongo.Collection == "" {
		cfg.Mongo.Collection = "products"
	}
	if cfg.Store.Timeout == 0 {
		cfg.Store.Timeout = 3 * time.Second
	}
	if cfg.Connector.RetryDelay == 0 {
		cfg.Connector.RetryDelay = 2000 * time.Millisecond
	}
	if cfg.Connector.AttemptTimeout == 0 {
		cfg.Connector.AttemptTimeout = 5 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if _, err := strconv.Atoi(c.App.Port); err != nil {
		return fmt.Errorf("app.port must be numeric, got %q", c.App.Port)
	}
	if _, err := strconv.Atoi(c.Catalogue.Port); err != nil {
		return fmt.Errorf("catalogue.port must be numeric, got %q", c.Catalogue.Port)
	}
	if c.Catalogue.Timeout < 0 {
		return fmt.Errorf("catalogue.timeout cannot be negative")
	}
	if c.Catalogue.MaxConcurrency < 0 {
		return fmt.Errorf("catalogue.max_concurrency cannot be negative")
	}
	if c.Store.Timeout < 0 {
		return fmt.Errorf("store.timeout cannot be negative")
	}
	if c.Connector.RetryDelay < 0 {
		return fmt.Errorf("connector.retry_delay cannot be negative")
	}
	if c.Connector.AttemptTimeout < 0 {
		return fmt.Errorf("connector.attempt_timeout cannot be negative")
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	return nil
}
