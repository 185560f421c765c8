package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	httpadp "bank-loan-service/internal/adapter/http"
	"bank-loan-service/internal/adapter/notifier"
	"bank-loan-service/internal/adapter/repository/mysql"
	"bank-loan-service/internal/config"
	"bank-loan-service/internal/domain/rate"
	"bank-loan-service/internal/infrastructure/blob"
	"bank-loan-service/internal/infrastructure/cache"
	"bank-loan-service/internal/infrastructure/db"
	"bank-loan-service/internal/infrastructure/logger"
	"bank-loan-service/internal/infrastructure/messaging"
	"bank-loan-service/internal/infrastructure/token"
	"bank-loan-service/internal/usecase/auth"
	"bank-loan-service/internal/usecase/credit"
	"bank-loan-service/internal/usecase/document"
	"bank-loan-service/internal/usecase/loan"

	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	log, flush := logger.New(cfg.LogLevel, cfg.LogJSON, cfg.LogFile)
	defer flush()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal("mysql connect failed", zap.Error(err))
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			log.Fatal("auto-migrate failed", zap.Error(err))
		}
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal("redis connect failed", zap.Error(err))
	}
	defer rdb.Close()

	blobs, err := blob.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatal("upload dir unusable", zap.String("dir", cfg.UploadDir), zap.Error(err))
	}

	// a nil Transport makes the notifier log instead of publish
	var transport notifier.Transport
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := messaging.NewKafkaPublisher(cfg.KafkaBrokers, "bank-loan-service")
		if err != nil {
			log.Fatal("kafka client failed", zap.Error(err))
		}
		defer kp.Close()
		transport = kp
	} else {
		log.Warn("KAFKA_BROKERS not set, notifications are logged only")
	}

	users := mysql.NewUserRepository(gdb)
	docs := mysql.NewDocumentRepository(gdb)
	loans := mysql.NewLoanRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	var rates rate.Repository = mysql.NewRateRepository(gdb)
	if ttl := cfg.RateCacheTTL(); ttl > 0 {
		rates = cache.NewRateCache(rates, rdb, ttl, log)
	}

	jwt := &token.JWT{Secret: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer, TTL: cfg.JWTTTL()}

	policy := credit.NewPolicy(rates)
	authUC := auth.NewUsecase(users, tx, jwt, log)
	docUC := document.NewUsecase(docs, blobs, tx, log, cfg.BlobTimeout())
	loanUC := loan.NewUsecase(loans, tx, policy,
		notifier.New(transport, log, cfg.NotifyTimeout(), cfg.NotifyTopic), log)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	if n, err := policy.SeedDefaults(bootCtx); err != nil {
		log.Fatal("seed interest rates failed", zap.Error(err))
	} else if n > 0 {
		log.Info("interest rates seeded", zap.Int("count", n))
	}
	if cfg.SeedAdminUsername != "" {
		created, err := authUC.SeedAdmin(bootCtx, auth.RegisterInput{
			Username: cfg.SeedAdminUsername,
			Password: cfg.SeedAdminPassword,
			Email:    cfg.SeedAdminEmail,
		})
		if err != nil {
			log.Fatal("seed admin failed", zap.Error(err))
		}
		if created {
			log.Info("admin seeded", zap.String("username", cfg.SeedAdminUsername))
		}
	}
	cancelBoot()

	e := httpadp.NewRouter(httpadp.RouterDeps{
		Health:         httpadp.NewHandler(),
		Auth:           httpadp.NewAuthHandler(authUC),
		Documents:      httpadp.NewDocumentHandler(docUC, cfg.UploadMaxBytes),
		Loans:          httpadp.NewLoanHandler(loanUC),
		Rates:          httpadp.NewRateHandler(policy),
		Tokens:         jwt,
		Users:          users,
		Redis:          rdb,
		IdempotencyTTL: cfg.IdempotencyTTL(),
		// room for multipart framing around the largest allowed file
		BodyLimit: strconv.FormatInt(cfg.UploadMaxBytes+1<<20, 10),
		AuthRPS:   cfg.AuthRPS,
		AuthBurst: cfg.AuthBurst,
		Log:       log,
	})

	addr := ":" + cfg.AppPort
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.AppEnv))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
	}

	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("stopped")
}
