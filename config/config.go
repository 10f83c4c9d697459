package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/learnclub/club-portal-backend/store"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port          string
	Env           string
	DatabaseURL   string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBDriver      string
	AutoMigrate   bool
	SupabaseURL   string
	AnonKey       string
	ServiceKey    string
	JWTSecret     string
	FrontendURL   string
	CORSOrigins   []string
	MaxUploadSize int64
}

// Load đọc cấu hình từ biến môi trường (godotenv đã nạp .env trước đó).
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("MAX_UPLOAD_MB", 20)

	cfg := &Config{
		Port:          v.GetString("PORT"),
		Env:           v.GetString("APP_ENV"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBUser:        v.GetString("DB_USER"),
		DBPassword:    v.GetString("DB_PASSWORD"),
		DBName:        v.GetString("DB_NAME"),
		DBDriver:      strings.ToLower(v.GetString("DB_DRIVER")),
		AutoMigrate:   v.GetBool("DB_AUTO_MIGRATE"),
		SupabaseURL:   strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
		AnonKey:       v.GetString("SUPABASE_ANON_KEY"),
		ServiceKey:    v.GetString("SUPABASE_SERVICE_ROLE_KEY"),
		JWTSecret:     v.GetString("SUPABASE_JWT_SECRET"),
		FrontendURL:   strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		MaxUploadSize: v.GetInt64("MAX_UPLOAD_MB") << 20,
	}
	for _, o := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{cfg.FrontendURL}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Validate() error {
	var missing []string
	switch c.DBDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" && (c.DBHost == "" || c.DBUser == "" || c.DBName == "") {
			missing = append(missing, "DATABASE_URL (or DB_HOST/DB_USER/DB_NAME)")
		}
		for key, val := range map[string]string{
			"SUPABASE_URL":              c.SupabaseURL,
			"SUPABASE_ANON_KEY":         c.AnonKey,
			"SUPABASE_SERVICE_ROLE_KEY": c.ServiceKey,
			"SUPABASE_JWT_SECRET":       c.JWTSecret,
		} {
			if val == "" {
				missing = append(missing, key)
			}
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.MaxUploadSize <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DSN cho PostgreSQL; DATABASE_URL (Supabase connection string) được ưu tiên.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Ho_Chi_Minh",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func NewLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// OpenDB kết nối Postgres, cấu hình pool và migrate nếu bật DB_AUTO_MIGRATE.
func OpenDB(c *Config, log *zap.Logger) (*gorm.DB, error) {
	level := logger.Info
	if c.IsProduction() {
		level = logger.Warn
	}
	db, err := gorm.Open(postgres.Open(c.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// Lấy *sql.DB để config connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if c.AutoMigrate {
		if err := db.AutoMigrate(store.Models()...); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("postgres connected and migrated")
	} else {
		log.Info("postgres connected")
	}
	return db, nil
}
