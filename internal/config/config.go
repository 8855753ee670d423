// internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Engine   EngineConfig
	Storage  StorageConfig
	Drive    DriveConfig
}

type ServerConfig struct {
	Port                   string
	Mode                   string
	ReadTimeout            int
	WriteTimeout           int
	ShutdownTimeoutSeconds int
	AllowedOrigins         []string
}

type DatabaseConfig struct {
	Host             string
	Port             string
	User             string
	Password         string
	DBName           string
	SSLMode          string
	MaxConcurrentTxs int64
}

// DSN returns a key/value connection string understood by lib/pq and pgx.
func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// AppConfig controls where datasets are read from and reports are written to.
type AppConfig struct {
	DataDir     string
	OutputDir   string
	RecordStore string // "file" or "postgres"
	LogLevel    string
	LogFormat   string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ReportTTLSeconds int
	LockTTLSeconds   int
}

// EngineConfig tunes the replenishment calculations.
type EngineConfig struct {
	ForecastDays          int
	DashboardForecastDays int
	JitterEnabled         bool
	JitterSeed            int64
	LeadTimes             map[string]int
	DefaultLeadTimeDays   int
}

// StorageConfig selects the object store reports are uploaded to and datasets synced from.
type StorageConfig struct {
	Provider        string // "", "minio" or "gcs"
	Bucket          string
	Endpoint        string
	Region          string
	AccessKey       string
	SecretKey       string
	UseSSL          bool
	Prefix          string
	CredentialsFile string
}

type DriveConfig struct {
	Port            string
	CredentialsFile string
	FolderID        string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults()

		// Read from environment variables
		viper.AutomaticEnv()

		instance = build()

		ensureDir(instance.App.OutputDir)
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_READ_TIMEOUT", 15)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "inventory")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONCURRENT_TXS", 10)
	viper.SetDefault("APP_DATA_DIR", "./data")
	viper.SetDefault("APP_OUTPUT_DIR", "./data/output")
	viper.SetDefault("APP_RECORD_STORE", "file")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_REPORT_TTL_SECONDS", 300)
	viper.SetDefault("CACHE_LOCK_TTL_SECONDS", 120)
	viper.SetDefault("ENGINE_FORECAST_DAYS", 30)
	viper.SetDefault("ENGINE_DASHBOARD_FORECAST_DAYS", 10)
	viper.SetDefault("ENGINE_JITTER_ENABLED", true)
	viper.SetDefault("ENGINE_JITTER_SEED", 0)
	viper.SetDefault("ENGINE_LEAD_TIMES", "")
	viper.SetDefault("ENGINE_DEFAULT_LEAD_TIME_DAYS", 0)
	viper.SetDefault("STORAGE_PROVIDER", "")
	viper.SetDefault("STORAGE_BUCKET", "")
	viper.SetDefault("STORAGE_ENDPOINT", "")
	viper.SetDefault("STORAGE_REGION", "")
	viper.SetDefault("STORAGE_ACCESS_KEY", "")
	viper.SetDefault("STORAGE_SECRET_KEY", "")
	viper.SetDefault("STORAGE_USE_SSL", true)
	viper.SetDefault("STORAGE_PREFIX", "reports")
	viper.SetDefault("STORAGE_CREDENTIALS_FILE", "")
	viper.SetDefault("DRIVE_PORT", "8081")
	viper.SetDefault("DRIVE_CREDENTIALS_FILE", "credentials.json")
	viper.SetDefault("DRIVE_FOLDER_ID", "")
}

func build() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                   viper.GetString("SERVER_PORT"),
			Mode:                   viper.GetString("SERVER_MODE"),
			ReadTimeout:            viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:           viper.GetInt("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeoutSeconds: viper.GetInt("SERVER_SHUTDOWN_TIMEOUT"),
			AllowedOrigins:         viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:             viper.GetString("DB_HOST"),
			Port:             viper.GetString("DB_PORT"),
			User:             viper.GetString("DB_USER"),
			Password:         viper.GetString("DB_PASSWORD"),
			DBName:           viper.GetString("DB_NAME"),
			SSLMode:          viper.GetString("DB_SSLMODE"),
			MaxConcurrentTxs: viper.GetInt64("DB_MAX_CONCURRENT_TXS"),
		},
		App: AppConfig{
			DataDir:     viper.GetString("APP_DATA_DIR"),
			OutputDir:   viper.GetString("APP_OUTPUT_DIR"),
			RecordStore: strings.ToLower(viper.GetString("APP_RECORD_STORE")),
			LogLevel:    viper.GetString("LOG_LEVEL"),
			LogFormat:   viper.GetString("LOG_FORMAT"),
		},
		Cache: CacheConfig{
			Enabled:          viper.GetBool("CACHE_ENABLED"),
			RedisURL:         viper.GetString("REDIS_URL"),
			RedisHost:        viper.GetString("REDIS_HOST"),
			RedisPort:        viper.GetString("REDIS_PORT"),
			RedisPassword:    viper.GetString("REDIS_PASSWORD"),
			RedisDB:          viper.GetInt("REDIS_DB"),
			ReportTTLSeconds: viper.GetInt("CACHE_REPORT_TTL_SECONDS"),
			LockTTLSeconds:   viper.GetInt("CACHE_LOCK_TTL_SECONDS"),
		},
		Engine: EngineConfig{
			ForecastDays:          viper.GetInt("ENGINE_FORECAST_DAYS"),
			DashboardForecastDays: viper.GetInt("ENGINE_DASHBOARD_FORECAST_DAYS"),
			JitterEnabled:         viper.GetBool("ENGINE_JITTER_ENABLED"),
			JitterSeed:            viper.GetInt64("ENGINE_JITTER_SEED"),
			LeadTimes:             ParseLeadTimes(viper.GetString("ENGINE_LEAD_TIMES")),
			DefaultLeadTimeDays:   viper.GetInt("ENGINE_DEFAULT_LEAD_TIME_DAYS"),
		},
		Storage: StorageConfig{
			Provider:        strings.ToLower(viper.GetString("STORAGE_PROVIDER")),
			Bucket:          viper.GetString("STORAGE_BUCKET"),
			Endpoint:        viper.GetString("STORAGE_ENDPOINT"),
			Region:          viper.GetString("STORAGE_REGION"),
			AccessKey:       viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:       viper.GetString("STORAGE_SECRET_KEY"),
			UseSSL:          viper.GetBool("STORAGE_USE_SSL"),
			Prefix:          viper.GetString("STORAGE_PREFIX"),
			CredentialsFile: viper.GetString("STORAGE_CREDENTIALS_FILE"),
		},
		Drive: DriveConfig{
			Port:            viper.GetString("DRIVE_PORT"),
			CredentialsFile: viper.GetString("DRIVE_CREDENTIALS_FILE"),
			FolderID:        viper.GetString("DRIVE_FOLDER_ID"),
		},
	}
}

// ParseLeadTimes reads supplier lead times from "Supplier A=7,Supplier E=12".
// Malformed entries are skipped.
func ParseLeadTimes(raw string) map[string]int {
	leadTimes := make(map[string]int)
	for _, entry := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		days, err := strconv.Atoi(strings.TrimSpace(value))
		if name == "" || err != nil || days <= 0 {
			continue
		}
		leadTimes[name] = days
	}
	return leadTimes
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
