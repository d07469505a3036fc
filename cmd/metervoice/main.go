package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"metervoice/internal/config"
	"metervoice/internal/database"
	httpapi "metervoice/internal/http"
	"metervoice/internal/logger"
	"metervoice/internal/migrate"
	"metervoice/internal/notify"
	"metervoice/internal/repository"
	"metervoice/internal/schedule"
	"metervoice/internal/service"
	"metervoice/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "metervoice")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var db *sql.DB
	var appts repository.AppointmentsRepo
	var operators repository.OperatorsRepo
	var callLog repository.CallLogRepo

	if cfg.DBEnabled {
		if d, err := database.Open(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for metervoice")
		} else {
			log.Warn("DB enabled but connection failed, falling back to in-memory store", zap.Error(err))
		}
	}
	if db != nil {
		if cfg.AutoMigrate {
			if err := migrate.Run(db, "migrations", log); err != nil {
				log.Fatal("migrations failed", zap.Error(err))
			}
		}
		appts = repository.NewPostgresAppointmentsRepo(db)
		operators = repository.NewPostgresOperatorsRepo(db)
		callLog = repository.NewPostgresCallLogRepo(db)
	} else {
		// In-memory fallback keeps the voice flow testable without Postgres.
		appts = repository.NewMemoryAppointmentsRepo()
		operators = repository.NewMemoryOperatorsRepo()
		callLog = repository.NewMemoryCallLogRepo()
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	sessions := store.NewCallSessionStore(
		store.NewRedisKV(redisClient),
		time.Duration(cfg.Gateway.SessionTTL)*time.Second,
	)

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.SMS.BaseURL != "" {
		notifier = notify.NewSMSClient(cfg.SMS, log)
	} else {
		log.Warn("SMS_BASE_URL not set, operator notifications disabled")
	}

	svc := service.NewSchedulingService(
		appts,
		callLog,
		schedule.NewPolicy(),
		notify.NewPhoneResolver(operators),
		notifier,
		log,
	)

	router := httpapi.NewRouter(log)
	auth := httpapi.NewAuthMiddleware(cfg.Gateway.JWTSecret, log)
	router.RegisterVoiceRoutes(httpapi.NewVoiceHandler(svc, sessions, log), auth)
	router.RegisterAdminRoutes(httpapi.NewExportHandler(appts, log), auth)
	router.RegisterHealthRoute()

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	if db != nil {
		_ = database.Close(db)
	}
}
