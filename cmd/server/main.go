package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"low-altitude/uavops/internal/airspace"
	"low-altitude/uavops/internal/api"
	"low-altitude/uavops/internal/common"
	"low-altitude/uavops/internal/config"
	"low-altitude/uavops/internal/conflict"
	"low-altitude/uavops/internal/db"
	"low-altitude/uavops/internal/logging"
	"low-altitude/uavops/internal/metrics"
	"low-altitude/uavops/internal/routes"
	"low-altitude/uavops/internal/session"
	"low-altitude/uavops/internal/simulation"
	"low-altitude/uavops/internal/workers"
)

const (
	checkCacheSize  = 512
	dispatchWorkers = 2
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	// Initialize structured logging
	if err := logging.Init(logging.Options{AppEnv: cfg.AppEnv, File: cfg.LogFile}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("uavops starting up",
		"environment", cfg.AppEnv,
		"db_driver", cfg.DBDriver,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	// Connect to DB with GORM
	gdb, err := db.OpenORM(cfg)
	if err != nil {
		logging.Fatal("Failed to open database (GORM)", "error", err.Error())
	}
	if err := db.Instrument(gdb, metricsReg); err != nil {
		logging.Warn("Failed to instrument GORM", "error", err.Error())
	}
	if err := db.Migrate(gdb); err != nil {
		logging.Fatal("Failed to migrate database", "error", err.Error())
	}
	if err := db.Seed(context.Background(), gdb); err != nil {
		logging.Fatal("Failed to seed database", "error", err.Error())
	}

	// Stats and health checks go through sqlx
	sqlDB, err := db.ConnectSQLX(cfg, gdb)
	if err != nil {
		logging.Fatal("Failed to connect sqlx", "error", err.Error())
	}
	logging.Info("Database ready", "driver", cfg.DBDriver)

	var (
		redisClient *redis.Client
		cache       common.CacheInterface
		queue       common.QueueService
	)
	if cfg.RedisEnabled() {
		redisClient = common.NewRedisClient(cfg.RedisAddr(), cfg.RedisPassword)
		cache = common.NewRedisCacheService(redisClient, "uavops:cache:")
		rq := common.NewRedisQueueService(redisClient, common.DispatchStream, common.DispatchGroup)
		if err := rq.CreateConsumerGroup(context.Background()); err != nil {
			logging.Fatal("Failed to create dispatch consumer group", "error", err.Error())
		}
		queue = rq
	} else {
		mem := common.NewCacheService(5*time.Minute, 10*time.Minute)
		mem.ObserveLookups(func(hit bool) { metricsReg.ObserveCache("stats", hit) })
		cache = mem
		queue = common.NewMemoryQueueService(0)
		logging.Info("REDIS_HOST not set, using in-process cache and queue")
	}
	// Closing the Redis cache also closes the client shared with the queue.
	defer cache.Close()

	registry := airspace.LoadGeoJSONFile(cfg.NoFlyZoneFile)
	checker, err := conflict.NewCachedChecker(conflict.NewChecker(registry, nil), checkCacheSize, metricsReg)
	if err != nil {
		logging.Fatal("Failed to build conflict checker", "error", err.Error())
	}
	logging.Info("No-fly zones loaded", "zones", registry.Len())

	sessions := session.NewManager(session.Config{
		Checker: checker,
		Simulation: simulation.Options{
			TickInterval:   cfg.SimTick,
			TimeMultiplier: cfg.SimTimeMultiplier,
		},
		Redis:   redisClient,
		Metrics: metricsReg,
	}, cfg.SessionTTL)

	deps := api.InitDependencies(api.Infra{
		DB:       gdb,
		SQL:      sqlDB,
		Cache:    cache,
		Queue:    queue,
		Registry: registry,
		Checker:  checker,
		Sessions: sessions,
		Metrics:  metricsReg,
		Gatherer: prometheus.DefaultGatherer,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(deps, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	hostname, _ := os.Hostname()
	worker := workers.NewDispatchWorker("dispatch-"+hostname, gdb, queue, metricsReg)
	g.Go(func() error {
		return worker.Start(gctx, dispatchWorkers)
	})

	monitor := workers.NewQueueMonitor(queue, metricsReg)
	g.Go(func() error {
		monitor.Start(gctx, 15*time.Second)
		return nil
	})

	g.Go(func() error {
		logging.Info("Server starting", "port", cfg.Port, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		sessions.Shutdown()
		return err
	})

	if err := g.Wait(); err != nil {
		logging.Error("Server stopped with error", "error", err.Error())
	}
	logging.Info("Server stopped")
}
