package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"goldengate/internal/config"
	"goldengate/internal/feed"
	"goldengate/internal/http/handlers"
	applog "goldengate/internal/log"
	"goldengate/internal/repos"
	"goldengate/internal/scheduler"
	"goldengate/internal/workspace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	// Optional file logging
	var extra io.Writer
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			applog.New(nil).Warn("could not open log file", zap.String("path", cfg.LogFile), zap.Error(err))
		} else {
			defer f.Close()
			extra = f
		}
	}
	lg := applog.New(extra)
	defer func() { _ = lg.Sync() }()
	applog.SetLogger(lg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------- Storage & change feed ----------
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = repos.ConnectRedis(repos.RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			lg.Fatal("redis connect failed", zap.Error(err))
		}
		defer rdb.Close()
	}

	var slots repos.SlotStore
	switch cfg.Storage {
	case config.StorageRedis:
		slots = repos.NewRedisSlotRepo(rdb, cfg.RedisPrefix)
	case config.StorageMemory:
		slots = repos.NewMemorySlots()
	default:
		db, err := repos.OpenDB(cfg.DBDSN)
		if err != nil {
			lg.Fatal("open db failed", zap.Error(err))
		}
		defer db.Close()
		slots = repos.NewSlotRepo(db)
	}

	var notifier feed.Notifier
	if rdb != nil {
		rf := feed.NewRedis(rdb, cfg.RedisPrefix, lg.Named("feed"))
		defer rf.Close()
		notifier = rf
	} else {
		bus := feed.NewBus()
		defer bus.Close()
		notifier = bus
	}

	ws, err := workspace.New(workspace.Options{Slots: slots, Feed: notifier, Logger: lg})
	if err != nil {
		lg.Fatal("workspace init failed", zap.Error(err))
	}
	if err := ws.Open(ctx); err != nil {
		lg.Fatal("workspace open failed", zap.Error(err))
	}
	defer ws.Close()

	// ---------- Report snapshots ----------
	if cfg.ReportCron != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			lg.Fatal("unknown TIMEZONE", zap.String("timezone", cfg.Timezone), zap.Error(err))
		}
		sched, err := scheduler.New(cfg.ReportCron, cfg.ReportDir, loc, ws.Reports, lg.Named("scheduler"))
		if err != nil {
			lg.Fatal("scheduler init failed", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    1 << 20, // 1 MiB
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{Output: os.Stdout}))
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
	}))

	// ---------- App handlers ----------
	deps := handlers.NewDeps(ws)
	deps.Mount(app, limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Demasiados intentos. Inténtalo más tarde."})
		},
	}))

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "session": ws.Gate.State().String()})
	})
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Página no encontrada"})
	})

	go func() {
		<-ctx.Done()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	lg.Info("listening", zap.String("port", cfg.Port), zap.String("storage", cfg.Storage), zap.String("origin", ws.Origin))
	if err := app.Listen(":" + cfg.Port); err != nil {
		lg.Error("server stopped", zap.Error(err))
	}
}
