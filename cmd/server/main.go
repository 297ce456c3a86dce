package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"jsmc-rsvp/internal/config"
	"jsmc-rsvp/internal/handler"
	"jsmc-rsvp/internal/logger"
	"jsmc-rsvp/internal/model"
	"jsmc-rsvp/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Fatal("config.load_failed", "err", err)
	}
	logger.Init(cfg.Log)

	db, err := cfg.OpenGormDB()
	if err != nil {
		logger.Fatal("db.connect_failed", "driver", cfg.Database.Driver, "err", err)
	}
	if cfg.Database.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			logger.Fatal("db.migrate_failed", "err", err)
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("db.handle_failed", "err", err)
	}
	defer sqlDB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalogSvc := service.NewCatalogService(db)
	memberSvc := service.NewMemberService(db)
	rsvpSvc := service.NewRsvpService(db)
	rsvpSvc.SetVerifyURL(cfg.RSVP.VerifyURL)

	importSvc, err := service.NewImportService(memberSvc)
	if err != nil {
		logger.Fatal("import.init_failed", "err", err)
	}
	defer importSvc.Close()
	if cfg.Storage.S3.Bucket != "" {
		archiver, err := service.NewS3Archiver(ctx, cfg.Storage.S3)
		if err != nil {
			logger.Warn("s3.init_failed", "err", err)
		} else {
			importSvc.SetFileArchiver(archiver)
			logger.Info("s3.enabled", "bucket", cfg.Storage.S3.Bucket)
		}
	}

	if cfg.MOI.Enabled() {
		raw, err := cfg.NewRawClient()
		if err != nil {
			logger.Warn("moi.client_failed", "err", err)
		} else if cs := service.NewCatalogSync(raw, cfg.MOI.DatabaseID, cfg.MOI.ArchiveTableID); cs.Ready() {
			rsvpSvc.SetArchiver(cs)
			logger.Info("moi.archive_enabled", "table", cfg.MOI.ArchiveTableID)
		} else {
			logger.Warn("moi.archive_disabled", "hint", "run cmd/catalog_init and set moi.database_id / moi.archive_table_id")
		}
	}

	sched := service.NewScheduler()
	if err := sched.EveryMinutes(cfg.Scheduler.CloseIntervalMin, "close_expired", func(ctx context.Context) error {
		n, err := catalogSvc.CloseExpired(ctx)
		if n > 0 {
			logger.Info("catalog.closed_expired", "count", n)
		}
		return err
	}); err != nil {
		logger.Fatal("scheduler.init_failed", "err", err)
	}

	if cfg.Kafka.Enabled() {
		outbox := service.NewOutbox(db)
		rsvpSvc.SetOutbox(outbox)
		pub := service.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer pub.Close()
		if err := sched.EverySeconds(cfg.Scheduler.RelayIntervalSec, "outbox_relay", func(ctx context.Context) error {
			_, err := outbox.Relay(ctx, pub)
			return err
		}); err != nil {
			logger.Fatal("scheduler.init_failed", "err", err)
		}
		logger.Info("kafka.enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}
	sched.Start()
	defer sched.Stop()

	gin.SetMode(gin.ReleaseMode)
	r := handler.NewRouter(handler.Services{
		Catalog: catalogSvc,
		Picks:   service.NewPickListService(db),
		Members: memberSvc,
		Imports: importSvc,
		Rsvp:    rsvpSvc,
		Reports: service.NewReportService(db),
		Auth:    service.NewAuthService(cfg.Auth),
		Ping:    sqlDB.PingContext,
	}, cfg.Server.CORSOrigins, cfg.Server.StaticDir)

	srv := &http.Server{Addr: cfg.Addr(), Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info("server.starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server.failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server.shutdown_failed", "err", err)
	}
	logger.Info("server.stopped")
}
