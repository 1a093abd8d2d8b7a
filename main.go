package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"lingoschool_backend/internals/configs"
	database "lingoschool_backend/internals/databases"
	scheduler "lingoschool_backend/internals/features/users/auth/scheduler"
	helper "lingoschool_backend/internals/helpers"
	"lingoschool_backend/internals/helpers/dbtime"
	"lingoschool_backend/internals/helpers/mailer"
	"lingoschool_backend/internals/helpers/reporting"
	"lingoschool_backend/internals/helpers/storage"
	middlewares "lingoschool_backend/internals/middlewares"
	"lingoschool_backend/internals/middlewares/logger"
	routes "lingoschool_backend/internals/route"
	"lingoschool_backend/internals/seeds"
)

func main() {
	cfg, err := configs.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	if reporting.Init(cfg) {
		defer reporting.Close()
	}
	helper.ConfigureErrors(cfg.Debug, reporting.Report)

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            helper.ErrorHandler,
		BodyLimit:               60 * 1024 * 1024,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	// ⚙️ middleware dasar + performa
	app.Use(middlewares.RecoveryMiddleware(cfg.Debug))
	app.Use(middlewares.RequestContext(10 * time.Second))
	app.Use(logger.LoggerMiddleware(cfg.SchoolLocation()))
	app.Use(middlewares.CorsMiddleware(cfg.CorsOrigins))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching

	// 🔌 DB connect + pool + migrate + warm-up
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	database.TunePool(db, cfg.DB.Driver)
	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ migrate: %v", err)
	}
	database.WarmUpQueries(db)

	// 🌱 seed admin awal / user JSON (opsional)
	if err := seeds.RunAllSeeds(db, cfg.Seed); err != nil {
		log.Fatalf("❌ seed: %v", err)
	}

	store, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("❌ storage: %v", err)
	}
	mail, err := mailer.New(cfg.Mail)
	if err != nil {
		log.Fatalf("❌ mailer: %v", err)
	}

	// ⏱ scheduler setelah DB siap
	cron, err := scheduler.Start(db, cfg)
	if err != nil {
		log.Fatalf("❌ scheduler: %v", err)
	}

	// ✅ Routes
	deps := routes.Deps{
		DB:     db,
		Cfg:    cfg,
		Store:  store,
		Mailer: mail,
		Time:   dbtime.NewPolicy(cfg.SchoolLocation()),
	}
	routes.SetupRoutes(app, deps, routes.NewServices(deps))

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	// Start server non-blocking
	go func() {
		log.Printf("✅ Listening on :%s", cfg.Port)
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown + tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down...")

	<-cron.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	database.Close(db)
}
