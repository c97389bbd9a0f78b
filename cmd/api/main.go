package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/billbook-api/internal/application/service"
	"github.com/sangkips/billbook-api/internal/config"
	domainRepo "github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/internal/infrastructure/cache"
	"github.com/sangkips/billbook-api/internal/infrastructure/database"
	"github.com/sangkips/billbook-api/internal/infrastructure/repository"
	"github.com/sangkips/billbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/billbook-api/internal/presentation/http/handler"
	"github.com/sangkips/billbook-api/internal/presentation/http/routes"
	"github.com/sangkips/billbook-api/pkg/logger"
	"github.com/sangkips/billbook-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const idempotencySweepInterval = time.Hour

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log := logger.Get()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	if err := database.SeedDefaultData(db); err != nil {
		log.WithError(err).Warn("Failed to seed default data")
	}

	// Redis backs OTP codes, import jobs and the import lock. Without it OTPs
	// live in process memory and imports run without job tracking or locking.
	var (
		otpStore domainRepo.OTPStore
		jobs     domainRepo.ImportJobStore
		locker   domainRepo.Locker
	)
	if cfg.Redis.Enabled {
		rdb, lockClient, err := database.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, falling back to in-memory OTP store")
		} else {
			defer rdb.Close()
			otpStore = cache.NewRedisOTPStore(rdb)
			jobs = cache.NewRedisJobStore(rdb)
			locker = cache.NewRedisLocker(lockClient)
		}
	}
	if otpStore == nil {
		otpStore = cache.NewMemoryOTPStore()
	}

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	gstSlabRepo := repository.NewGstSlabRepository(db)
	settingsRepo := repository.NewInvoiceSettingsRepository(db)
	challanRepo := repository.NewChallanRepository(db)
	billRepo := repository.NewBillRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	region := cfg.Billing.PhoneRegion

	// Initialize services
	authService := service.NewAuthService(tx, userRepo, vendorRepo, customerRepo, otpStore, jwtManager, cfg.OTP, region)
	vendorService := service.NewVendorService(vendorRepo, region)
	customerService := service.NewCustomerService(customerRepo, region)
	gstSlabService := service.NewGstSlabService(tx, gstSlabRepo)
	sequencer := service.NewInvoiceSequencer(tx, settingsRepo, cfg.Billing)
	challanService := service.NewChallanService(tx, vendorRepo, customerRepo, challanRepo, txnRepo, gstSlabRepo, cfg.Billing.ChallanPrefix)
	billService := service.NewBillService(tx, sequencer, customerRepo, challanRepo, billRepo, txnRepo)
	outstandingService := service.NewOutstandingService(analyticsRepo, customerRepo, billRepo, paymentRepo)
	paymentService := service.NewPaymentService(tx, customerRepo, billRepo, paymentRepo, txnRepo, outstandingService)
	exportService := service.NewExportService(outstandingService)
	importService := service.NewImportService(customerRepo, jobs, locker, region, cfg.Import.MaxRows)

	if err := request.RegisterValidators(); err != nil {
		log.WithError(err).Fatal("Failed to register request validators")
	}

	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Vendor:    handler.NewVendorHandler(vendorService, sequencer, gstSlabService),
		Customer:  handler.NewCustomerHandler(customerService, outstandingService, exportService, importService),
		Challan:   handler.NewChallanHandler(challanService),
		Bill:      handler.NewBillHandler(billService),
		Payment:   handler.NewPaymentHandler(paymentService),
		Dashboard: handler.NewDashboardHandler(outstandingService, billService, paymentService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Scope:           service.NewScopeResolver(vendorRepo, customerRepo),
	})

	go sweepIdempotencyKeys(ctx, idempotencyRepo)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"app": cfg.App.Name, "env": cfg.App.Env, "port": port}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shut down")
	}
}

// sweepIdempotencyKeys purges expired idempotency keys until ctx ends
func sweepIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository) {
	ticker := time.NewTicker(idempotencySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				logger.LogError("main", "sweepIdempotencyKeys", "delete expired", nil, err)
			}
		}
	}
}
