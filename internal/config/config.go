package config

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Drive    DriveConfig
	Owners   OwnerConfig
	Policy   PolicyConfig
	LogLevel string
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	// Driver is memory, postgres (lib/pq) or pgx.
	Driver   string
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	UploadDir            string
	IngestTimeoutSeconds int
	// LedgerMode is replace or append.
	LedgerMode string
	// CountMode is auto, units or orders.
	CountMode string
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	DashboardTTLSeconds int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

type DriveConfig struct {
	CredentialsJSON string
}

type OwnerConfig struct {
	MineMarkers  []string
	OtherMarkers []string
}

type PolicyConfig struct {
	FastConsumableMarkers []string
	HighTurnoverROI       float64
	DeliveredTerms        []string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads .env and the environment once per process.
func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()

		instance = FromViper(viper.GetViper())

		ensureDir(instance.App.UploadDir)
	})

	return instance
}

// FromViper builds a Config from v after applying defaults. It does not touch
// the filesystem.
func FromViper(v *viper.Viper) *Config {
	setDefaults(v)
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: list(v, "SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			URL:      v.GetString("DB_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		App: AppConfig{
			UploadDir:            v.GetString("APP_UPLOAD_DIR"),
			IngestTimeoutSeconds: v.GetInt("APP_INGEST_TIMEOUT_SECONDS"),
			LedgerMode:           strings.ToLower(v.GetString("APP_LEDGER_MODE")),
			CountMode:            strings.ToLower(v.GetString("APP_COUNT_MODE")),
		},
		Cache: CacheConfig{
			Enabled:             v.GetBool("CACHE_ENABLED"),
			RedisURL:            v.GetString("REDIS_URL"),
			RedisHost:           v.GetString("REDIS_HOST"),
			RedisPort:           v.GetString("REDIS_PORT"),
			RedisPassword:       v.GetString("REDIS_PASSWORD"),
			RedisDB:             v.GetInt("REDIS_DB"),
			DashboardTTLSeconds: v.GetInt("CACHE_DASHBOARD_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
			Region:    v.GetString("S3_REGION"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
		},
		Owners: OwnerConfig{
			MineMarkers:  list(v, "OWNER_MINE_MARKERS"),
			OtherMarkers: list(v, "OWNER_OTHER_MARKERS"),
		},
		Policy: PolicyConfig{
			FastConsumableMarkers: list(v, "POLICY_FAST_CONSUMABLE_MARKERS"),
			HighTurnoverROI:       v.GetFloat64("POLICY_HIGH_TURNOVER_ROI"),
			DeliveredTerms:        list(v, "POLICY_DELIVERED_TERMS"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}
}

// IngestTimeout is the per-call ingest deadline.
func (c *Config) IngestTimeout() time.Duration {
	if c.App.IngestTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.App.IngestTimeoutSeconds) * time.Second
}

// TTL is how long cached read models live. Zero means the cache default.
func (c CacheConfig) TTL() time.Duration {
	if c.DashboardTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.DashboardTTLSeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 90)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", "*")
	v.SetDefault("DB_DRIVER", "memory")
	v.SetDefault("DB_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "warehouse")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
	v.SetDefault("APP_INGEST_TIMEOUT_SECONDS", 60)
	v.SetDefault("APP_LEDGER_MODE", "replace")
	v.SetDefault("APP_COUNT_MODE", "auto")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 60)
	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "warehouse-uploads")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("S3_REGION", "")
	v.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
	v.SetDefault("OWNER_MINE_MARKERS", "")
	v.SetDefault("OWNER_OTHER_MARKERS", "")
	v.SetDefault("POLICY_FAST_CONSUMABLE_MARKERS", "")
	v.SetDefault("POLICY_HIGH_TURNOVER_ROI", 50)
	v.SetDefault("POLICY_DELIVERED_TERMS", "")
	v.SetDefault("LOG_LEVEL", "info")
}

// list reads a comma-separated env value. Empty entries are dropped so an unset
// key yields nil and callers fall back to their built-in defaults.
func list(v *viper.Viper, key string) []string {
	var out []string
	for _, part := range strings.Split(v.GetString(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
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
