package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m04kA/SMC-MarketplaceService/internal/access"
	cancelBookingHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/cancel_booking"
	checkAvailabilityHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/check_availability"
	completeBookingHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/complete_booking"
	confirmBookingHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/confirm_booking"
	createBookingHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/create_booking"
	createServiceHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/create_service"
	getBookingHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_booking"
	getCategoryServicesHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_category_services"
	getClientBookingsHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_client_bookings"
	getProviderBookingsHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_provider_bookings"
	getProviderServicesHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_provider_services"
	getServiceHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_service"
	getServiceBookingsHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_service_bookings"
	setAvailabilityHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/set_availability"
	setServiceStatusHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/set_service_status"
	updateServiceHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/update_service"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceService/internal/config"
	availabilityRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/memory"
	serviceRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/service"
	analyticsClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/analyticsservice"
	categoryClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/categoryservice"
	paymentClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/paymentservice"
	availabilityService "github.com/m04kA/SMC-MarketplaceService/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-MarketplaceService/internal/service/bookings"
	catalogService "github.com/m04kA/SMC-MarketplaceService/internal/service/catalog"
	bookServiceUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/book_service"
	"github.com/m04kA/SMC-MarketplaceService/internal/worker/expirer"
	"github.com/m04kA/SMC-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/logger"
	"github.com/m04kA/SMC-MarketplaceService/pkg/metrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-MarketplaceService/pkg/txmanager"
)

// TxManager объединяет режимы транзакций, нужные сервисам и usecase
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-MarketplaceService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Инициализируем слой хранения согласно выбранному движку
	var (
		serviceRepository      catalogService.ServiceRepository
		bookingRepository      bookingsService.BookingRepository
		bookingWriteRepository bookServiceUC.BookingRepository
		expirerBookingRepo     expirer.BookingRepository
		availabilityRepository availabilityService.AvailabilityRepository
		availabilityClaimRepo  bookServiceUC.AvailabilityRepository
		availabilityLifecycle  bookingsService.AvailabilityRepository
		expirerAvailability    expirer.AvailabilityRepository
		txMgr                  TxManager
		db                     *sql.DB
	)

	switch cfg.Storage.Engine {
	case config.StorageEnginePostgres:
		db, err = sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		if cfg.Metrics.Enabled {
			wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
			log.Info("Database metrics collection started")

			services := serviceRepo.NewRepository(wrappedDB)
			bookings := bookingRepo.NewRepository(wrappedDB)
			slots := availabilityRepo.NewRepository(wrappedDB)

			serviceRepository = services
			bookingRepository = bookings
			bookingWriteRepository = bookings
			expirerBookingRepo = bookings
			availabilityRepository = slots
			availabilityClaimRepo = slots
			availabilityLifecycle = slots
			expirerAvailability = slots
			txMgr = txmanager.NewTransactionManager(wrappedDB)
		} else {
			services := serviceRepo.NewRepository(db)
			bookings := bookingRepo.NewRepository(db)
			slots := availabilityRepo.NewRepository(db)

			serviceRepository = services
			bookingRepository = bookings
			bookingWriteRepository = bookings
			expirerBookingRepo = bookings
			availabilityRepository = slots
			availabilityClaimRepo = slots
			availabilityLifecycle = slots
			expirerAvailability = slots
			txMgr = simpletxmanager.NewTransactionManager(db)
		}

	case config.StorageEngineMemory:
		store := memory.NewStore()
		services := memory.NewServiceRepository(store)
		bookings := memory.NewBookingRepository(store)
		slots := memory.NewAvailabilityRepository(store)

		serviceRepository = services
		bookingRepository = bookings
		bookingWriteRepository = bookings
		expirerBookingRepo = bookings
		availabilityRepository = slots
		availabilityClaimRepo = slots
		availabilityLifecycle = slots
		expirerAvailability = slots
		txMgr = memory.NewTxManager(store)
		log.Info("Using in-memory storage engine")
	}

	// Инициализируем интеграционных клиентов (nil = интеграция отключена)
	var (
		paymentForUC        bookServiceUC.PaymentServiceClient
		paymentForBookings  bookingsService.PaymentServiceClient
		paymentForExpirer   expirer.PaymentServiceClient
		analyticsForUC      bookServiceUC.AnalyticsServiceClient
		analyticsForService bookingsService.AnalyticsServiceClient
		categoryForCatalog  catalogService.CategoryServiceClient
	)

	if cfg.Payment.Enabled {
		client := paymentClient.NewClient(cfg.Payment.URL, time.Duration(cfg.Payment.Timeout)*time.Second, log)
		paymentForUC = client
		paymentForBookings = client
		paymentForExpirer = client
		log.Info("PaymentService client initialized (%s, timeout=%ds)", cfg.Payment.URL, cfg.Payment.Timeout)
	}

	if cfg.Analytics.Enabled {
		client := analyticsClient.NewClient(cfg.Analytics.URL, time.Duration(cfg.Analytics.Timeout)*time.Second, log)
		analyticsForUC = client
		analyticsForService = client
		log.Info("AnalyticsService client initialized (%s, timeout=%ds)", cfg.Analytics.URL, cfg.Analytics.Timeout)
	}

	if cfg.Category.Enabled {
		client := categoryClient.NewClient(cfg.Category.URL, time.Duration(cfg.Category.Timeout)*time.Second, log)
		categoryForCatalog = client
		log.Info("CategoryService client initialized (%s, timeout=%ds)", cfg.Category.URL, cfg.Category.Timeout)
	}

	// Политика доступа платформы
	policy := access.NewPolicy(cfg.Access.AdminIDs)

	// Метрики для сервисов (nil-безопасно через интерфейсы)
	var (
		bookingsMetrics bookingsService.Metrics
		ucMetrics       bookServiceUC.Metrics
	)
	if cfg.Metrics.Enabled {
		bookingsMetrics = metricsCollector
		ucMetrics = metricsCollector
	}

	// Инициализируем сервисы
	catalogSvc := catalogService.NewService(
		serviceRepository,
		categoryForCatalog,
		policy,
		catalogService.Options{
			ValidateCategories: cfg.Booking.ValidateCategories,
			EnforcePriceRange:  cfg.Booking.EnforcePriceRange,
		},
		log,
	)

	availabilitySvc := availabilityService.NewService(
		serviceRepository,
		availabilityRepository,
		policy,
		log,
	)

	bookingSvc := bookingsService.NewService(
		bookingRepository,
		serviceRepository,
		availabilityLifecycle,
		txMgr,
		paymentForBookings,
		analyticsForService,
		policy,
		bookingsMetrics,
		log,
	)

	// Инициализируем use case бронирования
	bookServiceUseCase := bookServiceUC.NewUseCase(
		serviceRepository,
		availabilityClaimRepo,
		bookingWriteRepository,
		txMgr,
		paymentForUC,
		analyticsForUC,
		ucMetrics,
		log,
	)

	// Инициализируем handlers
	createService := createServiceHandler.NewHandler(catalogSvc, log)
	updateService := updateServiceHandler.NewHandler(catalogSvc, log)
	setServiceStatus := setServiceStatusHandler.NewHandler(catalogSvc, log)
	getService := getServiceHandler.NewHandler(catalogSvc, log)
	getCategoryServices := getCategoryServicesHandler.NewHandler(catalogSvc, log)
	getProviderServices := getProviderServicesHandler.NewHandler(catalogSvc, log)
	setAvailability := setAvailabilityHandler.NewHandler(availabilitySvc, log)
	checkAvailability := checkAvailabilityHandler.NewHandler(availabilitySvc, log)
	createBooking := createBookingHandler.NewHandler(bookServiceUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	confirmBooking := confirmBookingHandler.NewHandler(bookingSvc, log)
	completeBooking := completeBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getClientBookings := getClientBookingsHandler.NewHandler(bookingSvc, log)
	getProviderBookings := getProviderBookingsHandler.NewHandler(bookingSvc, log)
	getServiceBookings := getServiceBookingsHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Просмотр каталога
	api.HandleFunc("/services/{serviceId}", getService.Handle).Methods(http.MethodGet)
	api.HandleFunc("/categories/{categoryId}/services", getCategoryServices.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/services", getProviderServices.Handle).Methods(http.MethodGet)

	// Проверка доступности слота
	api.HandleFunc("/services/{serviceId}/availability/{startTime}", checkAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Каталог услуг ---
	protected.HandleFunc("/services", createService.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/services/{serviceId}", updateService.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/services/{serviceId}/status", setServiceStatus.Handle).Methods(http.MethodPatch)

	// --- Доступность слотов ---
	protected.HandleFunc("/services/{serviceId}/availability", setAvailability.Handle).Methods(http.MethodPut)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/complete", completeBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// --- Списки бронирований ---
	protected.HandleFunc("/clients/{clientId}/bookings", getClientBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/providers/{providerId}/bookings", getProviderBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/services/{serviceId}/bookings", getServiceBookings.Handle).Methods(http.MethodGet)

	// Фоновая отмена протухших Pending бронирований (если включена)
	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	var expireWorker *expirer.Worker
	if cfg.Booking.PendingTTLMinutes > 0 {
		expireWorker = expirer.New(
			expirerBookingRepo,
			expirerAvailability,
			txMgr,
			paymentForExpirer,
			log,
			time.Duration(cfg.Booking.PendingTTLMinutes)*time.Minute,
			time.Duration(cfg.Booking.ExpireIntervalSeconds)*time.Second,
		)
		expireWorker.Start(rootCtx)
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if expireWorker != nil {
		expireWorker.Stop()
		log.Info("Expirer worker stopped")
	}

	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
