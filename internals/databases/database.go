package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"lingoschool_backend/internals/configs"
)

// Connect membuka koneksi sesuai DB_DRIVER (postgres untuk produksi, sqlite untuk lokal).
func Connect(cfg *configs.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         configs.NewGormLogger(cfg.Debug),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DB.Driver {
	case "sqlite":
		log.Printf("🔌 Opening SQLite %s ...", cfg.DB.SQLitePath)
		db, err = gorm.Open(sqlite.Open(cfg.DB.SQLitePath), gcfg)
	default:
		log.Println("🔌 Connecting to PostgreSQL ...")
		// PreferSimpleProtocol cocok untuk PgBouncer (transaction pooling)
		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=lingoschool&options=-c statement_timeout=5000",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name, cfg.DB.SSLMode,
		)
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), gcfg)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DB.Driver, err)
	}
	log.Println("✅ DB connected.")
	return db, nil
}

// OpenSQLite dipakai untuk dev & test; gorm config sama dengan Connect.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         configs.NewGormLogger(false),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
}

func TunePool(db *gorm.DB, driver string) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	if driver == "sqlite" {
		// satu writer untuk sqlite
		sqlDB.SetMaxOpenConns(1)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries(db *gorm.DB) {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := Ping(context.Background(), db); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
