// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultModel           = "mistralai/mixtral-8x7b-instruct"
	DefaultOutlierQuantile = 0.99
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top and
// lets environment variables override any key (dataset.path -> DATASET_PATH).
func Load() (*Config, error) {
	loadEnvFile()
	return LoadFrom(viper.New(), "./configs", "../../configs", ".")
}

// LoadFrom is Load against a caller supplied viper instance and search paths.
func LoadFrom(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg, v)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// bindEnvKeys registers keys that may only exist in the environment so that
// Unmarshal sees them even without a config file.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"dataset.source", "dataset.path", "dataset.table",
		"llm.api_url", "llm.api_key", "llm.model",
		"cache.enabled", "cache.backend", "cache.dir",
		"database.redis.address", "database.postgres.host", "database.postgres.user",
		"database.postgres.password", "database.postgres.database",
		"camunda.broker_address", "logging.level", "logging.format",
	} {
		_ = v.BindEnv(key)
	}
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			// Unset variables expand to "" so the env fallbacks and defaults apply.
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig accepts the short variable names documented in .env.example.
func overrideEmptyConfig(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		if val := os.Getenv("OPENROUTER_API_KEY"); val != "" {
			cfg.LLM.APIKey = val
		}
	}
	if cfg.LLM.APIURL == "" {
		if val := os.Getenv("API_URL"); val != "" {
			cfg.LLM.APIURL = val
		}
	}
	if cfg.Dataset.Path == "" {
		if val := os.Getenv("DATA_PATH"); val != "" {
			cfg.Dataset.Path = val
		}
	}
}

func applyDefaults(cfg *Config, v *viper.Viper) {
	if cfg.App.Name == "" {
		cfg.App.Name = "freelancer-analytics"
	}

	if cfg.Dataset.Source == "" {
		cfg.Dataset.Source = "csv"
	}
	if cfg.Dataset.Table == "" {
		cfg.Dataset.Table = "freelancer_earnings"
	}
	if len(cfg.Dataset.RequiredColumns) == 0 {
		cfg.Dataset.RequiredColumns = []string{"Earnings_USD", "Job_Category", "Payment_Method"}
	}
	if !v.IsSet("dataset.outlier_quantile") {
		cfg.Dataset.OutlierQuantile = DefaultOutlierQuantile
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 5
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultModel
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 15000
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 300
	}
	if !v.IsSet("llm.temperature") {
		cfg.LLM.Temperature = 0.3
	}
	if !v.IsSet("llm.max_retries") {
		cfg.LLM.MaxRetries = 2
	}

	if !v.IsSet("cache.enabled") {
		cfg.Cache.Enabled = true
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "file"
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = "cache"
	}
	if cfg.Cache.TTLDays == 0 {
		cfg.Cache.TTLDays = 7
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.QueryLogDir == "" {
		cfg.Logging.QueryLogDir = "logs"
	}

	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}
	if !v.IsSet("worker.enabled") {
		cfg.Worker.Enabled = true
	}
	if cfg.Worker.MaxJobsActive == 0 {
		cfg.Worker.MaxJobsActive = 1
	}
	if cfg.Worker.Timeout == 0 {
		cfg.Worker.Timeout = 60000
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":8080"
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Dataset.Source {
	case "csv":
		if cfg.Dataset.Path == "" {
			return fmt.Errorf("dataset.path is required for the csv source")
		}
	case "postgres":
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required for the postgres source")
		}
	default:
		return fmt.Errorf("dataset.source must be csv or postgres, got %q", cfg.Dataset.Source)
	}

	if cfg.Dataset.OutlierQuantile < 0 || cfg.Dataset.OutlierQuantile > 1 {
		return fmt.Errorf("dataset.outlier_quantile must be within [0, 1]")
	}

	switch cfg.Cache.Backend {
	case "file":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis cache")
		}
	default:
		return fmt.Errorf("cache.backend must be file or redis, got %q", cfg.Cache.Backend)
	}

	return nil
}

// ValidateLLM is checked only by commands that actually call the model.
func ValidateLLM(cfg *Config) error {
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required (set OPENROUTER_API_KEY in .env)")
	}
	if cfg.LLM.APIURL == "" {
		return fmt.Errorf("llm.api_url is required (set API_URL in .env)")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
