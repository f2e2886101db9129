package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"littlelemon/configs"
	"littlelemon/middlewares"
	"littlelemon/pkg/events"
	"littlelemon/pkg/logging"
	"littlelemon/pkg/ratelimit"
	"littlelemon/routes"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := logging.Init(logging.Options{Component: cfg.App.Name, Level: cfg.App.LogLevel, File: cfg.App.LogFile})

	// DB
	db, err := configs.ConnectionDB(cfg)
	if err != nil {
		fatal(log, "connect database", err)
	}
	if err := configs.SetupDatabase(db); err != nil {
		fatal(log, "migrate", err)
	}
	if err := configs.SeedGroups(db); err != nil {
		fatal(log, "seed groups", err)
	}
	if err := configs.SeedCategories(db); err != nil {
		fatal(log, "seed categories", err)
	}
	if err := configs.SeedAdmin(db, cfg, log); err != nil {
		fatal(log, "seed admin", err)
	}

	// Rate limit store: redis when reachable, otherwise per-process memory
	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, using in-memory rate limiter", "addr", cfg.Redis.Addr, "error", err)
		} else {
			limiter = ratelimit.NewRedisLimiter(rdb)
			defer rdb.Close()
		}
		cancel()
	}

	// Order events
	var pub events.Publisher = events.Nop{}
	if cfg.Rabbit.URL != "" {
		rp, err := events.DialRabbit(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
		if err != nil {
			log.Warn("rabbitmq unavailable, order events disabled", "error", err)
		} else {
			pub = rp
			defer rp.Close()
		}
	}

	// HTTP
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.MetricsMiddleware())
	r.Use(middlewares.CORSMiddleware(cfg.App.Origins))

	routes.RegisterRoutes(r, routes.Deps{
		DB:        db,
		JWTSecret: cfg.JWT.Secret,
		JWTTTL:    cfg.JWT.TTL,
		Limiter:   limiter,
		RateLimit: middlewares.RateLimitOptions{
			Anon:   cfg.RateLimit.Anon,
			User:   cfg.RateLimit.User,
			Window: cfg.RateLimit.Window,
		},
		Events: pub,
	})

	addr := fmt.Sprintf(":%s", cfg.App.Port)
	log.Info("server running", "addr", addr, "db", cfg.DB.Driver)
	if err := r.Run(addr); err != nil {
		fatal(log, "http server", err)
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
