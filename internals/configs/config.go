package configs

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config dibangun sekali di main lalu dioper ke komponen yang butuh.
type Config struct {
	AppEnv string
	Debug  bool
	Port   string

	DB DBConfig

	JWTSecret string
	JWTTTL    time.Duration
	OTPTTL    time.Duration

	// offset jam zona sekolah terhadap UTC (default +7)
	SchoolUTCOffsetHours int

	GoogleClientID string

	Storage StorageConfig
	Mail    MailConfig

	RollbarToken string
	CorsOrigins  []string

	TokenBlacklistTTLDays int
	CleanupCron           string

	Seed SeedConfig
}

// SeedConfig: admin awal + file JSON user opsional.
type SeedConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
	UsersFile     string
}

type DBConfig struct {
	Driver     string // postgres | sqlite
	User       string
	Password   string
	Host       string
	Port       string
	Name       string
	SSLMode    string
	SQLitePath string
}

type StorageConfig struct {
	Driver string // oss | b2 | memory

	OSSEndpoint  string
	OSSAccessKey string
	OSSSecretKey string
	OSSBucket    string
	OSSPrefix    string

	B2AccountID string
	B2AppKey    string
	B2Bucket    string
}

type MailConfig struct {
	Driver         string // sendgrid | console
	SendGridAPIKey string
	FromName       string
	FromEmail      string
}

// =======================
// ENV LOADER
// =======================

// Load membaca .env (kalau ada) lalu mengisi Config dari viper + ENV.
func Load() (*Config, error) {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ .env not found, using system ENV")
		} else {
			log.Println("✅ .env loaded")
		}
	} else {
		log.Println("🚀 Running in Railway, using system ENV")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DEBUG", false)
	v.SetDefault("PORT", "3000")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "lingoschool")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("SQLITE_PATH", "lingoschool.db")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", 24*time.Hour)
	v.SetDefault("OTP_TTL", 10*time.Minute)
	v.SetDefault("SCHOOL_UTC_OFFSET_HOURS", 7)
	v.SetDefault("GOOGLE_CLIENT_ID", "")

	v.SetDefault("STORAGE_DRIVER", "memory")
	v.SetDefault("ALI_OSS_ENDPOINT", "")
	v.SetDefault("ALI_OSS_ACCESS_KEY", "")
	v.SetDefault("ALI_OSS_SECRET_KEY", "")
	v.SetDefault("ALI_OSS_BUCKET", "")
	v.SetDefault("ALI_OSS_PREFIX", "lingoschool")
	v.SetDefault("B2_ACCOUNT_ID", "")
	v.SetDefault("B2_APP_KEY", "")
	v.SetDefault("B2_BUCKET", "")

	v.SetDefault("MAIL_DRIVER", "console")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM_NAME", "LingoSchool")
	v.SetDefault("MAIL_FROM", "noreply@localhost")

	v.SetDefault("ROLLBAR_TOKEN", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("TOKEN_BLACKLIST_TTL_DAYS", 7)
	v.SetDefault("CLEANUP_CRON", "15 2 * * *")

	v.SetDefault("SEED_ADMIN_USERNAME", "")
	v.SetDefault("SEED_ADMIN_EMAIL", "")
	v.SetDefault("SEED_ADMIN_PASSWORD", "")
	v.SetDefault("SEED_USERS_FILE", "")
}

// FromViper dipisah dari Load supaya bisa dites tanpa .env.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv: v.GetString("APP_ENV"),
		Debug:  v.GetBool("DEBUG"),
		Port:   v.GetString("PORT"),
		DB: DBConfig{
			Driver:     strings.ToLower(v.GetString("DB_DRIVER")),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetString("DB_PORT"),
			Name:       v.GetString("DB_NAME"),
			SSLMode:    v.GetString("DB_SSLMODE"),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		JWTSecret:            v.GetString("JWT_SECRET"),
		JWTTTL:               v.GetDuration("JWT_TTL"),
		OTPTTL:               v.GetDuration("OTP_TTL"),
		SchoolUTCOffsetHours: v.GetInt("SCHOOL_UTC_OFFSET_HOURS"),
		GoogleClientID:       v.GetString("GOOGLE_CLIENT_ID"),
		Storage: StorageConfig{
			Driver:       strings.ToLower(v.GetString("STORAGE_DRIVER")),
			OSSEndpoint:  v.GetString("ALI_OSS_ENDPOINT"),
			OSSAccessKey: v.GetString("ALI_OSS_ACCESS_KEY"),
			OSSSecretKey: v.GetString("ALI_OSS_SECRET_KEY"),
			OSSBucket:    v.GetString("ALI_OSS_BUCKET"),
			OSSPrefix:    v.GetString("ALI_OSS_PREFIX"),
			B2AccountID:  v.GetString("B2_ACCOUNT_ID"),
			B2AppKey:     v.GetString("B2_APP_KEY"),
			B2Bucket:     v.GetString("B2_BUCKET"),
		},
		Mail: MailConfig{
			Driver:         strings.ToLower(v.GetString("MAIL_DRIVER")),
			SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
			FromName:       v.GetString("MAIL_FROM_NAME"),
			FromEmail:      v.GetString("MAIL_FROM"),
		},
		RollbarToken:          v.GetString("ROLLBAR_TOKEN"),
		CorsOrigins:           splitCSV(v.GetString("CORS_ORIGINS")),
		TokenBlacklistTTLDays: v.GetInt("TOKEN_BLACKLIST_TTL_DAYS"),
		CleanupCron:           v.GetString("CLEANUP_CRON"),
		Seed: SeedConfig{
			AdminUsername: strings.TrimSpace(v.GetString("SEED_ADMIN_USERNAME")),
			AdminEmail:    strings.TrimSpace(v.GetString("SEED_ADMIN_EMAIL")),
			AdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
			UsersFile:     v.GetString("SEED_USERS_FILE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if !c.Debug {
			return fmt.Errorf("JWT_SECRET is required")
		}
		log.Println("❌ JWT_SECRET not set, using insecure debug secret")
		c.JWTSecret = "debug-secret"
	}
	if c.JWTTTL <= 0 {
		c.JWTTTL = 24 * time.Hour
	}
	// OTP 5..10 menit
	if c.OTPTTL < 5*time.Minute || c.OTPTTL > 10*time.Minute {
		c.OTPTTL = 10 * time.Minute
	}
	if c.SchoolUTCOffsetHours < -12 || c.SchoolUTCOffsetHours > 14 {
		return fmt.Errorf("SCHOOL_UTC_OFFSET_HOURS out of range: %d", c.SchoolUTCOffsetHours)
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	switch c.Storage.Driver {
	case "oss", "b2", "memory":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.TokenBlacklistTTLDays <= 0 {
		c.TokenBlacklistTTLDays = 7
	}
	return nil
}

// SchoolLocation: zona tetap UTC+offset, tanpa tzdata.
func (c *Config) SchoolLocation() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", c.SchoolUTCOffsetHours), c.SchoolUTCOffsetHours*3600)
}

func splitCSV(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
