package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	API struct {
		Port           string
		BasePath       string
		LegacyBasePath string
	}
	DB struct {
		DSN string
	}
	OpenSearch struct {
		Addresses         []string
		Username          string
		Password          string
		LegacyIndex       string
		NotificationIndex string
	}
	Kafka struct {
		Brokers []string
		Topic   string
		GroupID string
	}
	Redis struct {
		Addr          string
		Password      string
		SettingsKey   string
		SettingsTopic string
	}
	Logging struct {
		Dir        string
		Level      string
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
	}
	Projection struct {
		QueueSize    int
		MaxWorkers   int
		MaxAttempts  int
		RetryBackoff time.Duration
	}
	ClusterAPI struct {
		RatePerSecond float64
		Burst         int
	}
	Search struct {
		Resort bool
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(envFile()); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	// API settings
	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")
	cfg.API.LegacyBasePath = os.Getenv("API_LEGACY_BASE_PATH")

	// Database DSN
	cfg.DB.DSN = os.Getenv("DB_DSN")

	// OpenSearch settings
	cfg.OpenSearch.Addresses = splitList(os.Getenv("OPENSEARCH_ADDRESSES"))
	cfg.OpenSearch.Username = os.Getenv("OPENSEARCH_USERNAME")
	cfg.OpenSearch.Password = os.Getenv("OPENSEARCH_PASSWORD")
	cfg.OpenSearch.LegacyIndex = os.Getenv("LEGACY_INDEX")
	cfg.OpenSearch.NotificationIndex = os.Getenv("NOTIFICATION_INDEX")

	// Kafka settings
	cfg.Kafka.Brokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")

	// Redis settings
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.SettingsKey = os.Getenv("REDIS_SETTINGS_KEY")
	cfg.Redis.SettingsTopic = os.Getenv("REDIS_SETTINGS_CHANNEL")

	// Logging settings
	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")
	if v, err := strconv.Atoi(os.Getenv("LOG_MAX_SIZE_MB")); err == nil {
		cfg.Logging.MaxSizeMB = v
	}
	if v, err := strconv.Atoi(os.Getenv("LOG_MAX_BACKUPS")); err == nil {
		cfg.Logging.MaxBackups = v
	}
	if v, err := strconv.Atoi(os.Getenv("LOG_MAX_AGE_DAYS")); err == nil {
		cfg.Logging.MaxAgeDays = v
	}

	// Projection worker settings
	if qs, err := strconv.Atoi(os.Getenv("QUEUE_SIZE")); err == nil {
		cfg.Projection.QueueSize = qs
	}
	if mw, err := strconv.Atoi(os.Getenv("MAX_WORKERS")); err == nil {
		cfg.Projection.MaxWorkers = mw
	}
	if ma, err := strconv.Atoi(os.Getenv("PROJECTION_MAX_ATTEMPTS")); err == nil {
		cfg.Projection.MaxAttempts = ma
	}
	if d, err := time.ParseDuration(os.Getenv("PROJECTION_RETRY_BACKOFF")); err == nil {
		cfg.Projection.RetryBackoff = d
	}

	// Cluster API proxy settings
	if r, err := strconv.ParseFloat(os.Getenv("CLUSTER_API_RATE"), 64); err == nil {
		cfg.ClusterAPI.RatePerSecond = r
	}
	if b, err := strconv.Atoi(os.Getenv("CLUSTER_API_BURST")); err == nil {
		cfg.ClusterAPI.Burst = b
	}

	cfg.Search.Resort, _ = strconv.ParseBool(os.Getenv("MERGE_RESORT"))

	// Validate required settings
	missing := []string{}
	if cfg.DB.DSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if len(cfg.OpenSearch.Addresses) == 0 {
		missing = append(missing, "OPENSEARCH_ADDRESSES")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.API.Port == "" {
		cfg.API.Port = ":9191"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/_plugins/_alerting/destinations"
	}
	if cfg.API.LegacyBasePath == "" {
		cfg.API.LegacyBasePath = "/_opendistro/_alerting/destinations"
	}
	if cfg.OpenSearch.LegacyIndex == "" {
		cfg.OpenSearch.LegacyIndex = ".opendistro-alerting-config"
	}
	if cfg.OpenSearch.NotificationIndex == "" {
		cfg.OpenSearch.NotificationIndex = ".opensearch-notifications-config"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "notification-config-changed"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "alerting-destinations"
	}
	if cfg.Redis.SettingsKey == "" {
		cfg.Redis.SettingsKey = "alerting:settings"
	}
	if cfg.Redis.SettingsTopic == "" {
		cfg.Redis.SettingsTopic = "alerting:settings:changed"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = 100
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = 5
	}
	if cfg.Logging.MaxAgeDays == 0 {
		cfg.Logging.MaxAgeDays = 28
	}
	if cfg.Projection.QueueSize == 0 {
		cfg.Projection.QueueSize = 500
	}
	if cfg.Projection.MaxWorkers == 0 {
		cfg.Projection.MaxWorkers = 4
	}
	if cfg.Projection.MaxAttempts == 0 {
		cfg.Projection.MaxAttempts = 3
	}
	if cfg.Projection.RetryBackoff == 0 {
		cfg.Projection.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.ClusterAPI.RatePerSecond == 0 {
		cfg.ClusterAPI.RatePerSecond = 5
	}
	if cfg.ClusterAPI.Burst == 0 {
		cfg.ClusterAPI.Burst = 1
	}
}

func envFile() string {
	if f := os.Getenv("ENV_FILE"); f != "" {
		return f
	}
	return "../.env"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
