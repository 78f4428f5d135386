package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/daengle/petcare-backend/internal/config"
	"github.com/daengle/petcare-backend/internal/db"
	"github.com/daengle/petcare-backend/internal/filter"
	httpHandlers "github.com/daengle/petcare-backend/internal/http/handlers"
	httpRouter "github.com/daengle/petcare-backend/internal/http/router"
	"github.com/daengle/petcare-backend/internal/logger"
	"github.com/daengle/petcare-backend/internal/repository"
	"github.com/daengle/petcare-backend/internal/service"
	"github.com/daengle/petcare-backend/internal/storage"
	"github.com/daengle/petcare-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	banWords, err := filter.NewBanWordFilterFromFile(cfg.BanWordsPath)
	if err != nil {
		log.Fatalf("main: не удалось загрузить список запрещённых слов: %v", err)
	}

	// Репозитории.
	accountRepo := repository.NewAccountRepository(dbConn)
	estimateRepo := repository.NewEstimateRepository(dbConn)
	reservationRepo := repository.NewReservationRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(accountRepo, tokenManager)
	profileService := service.NewProfileService(accountRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	estimateService := service.NewEstimateService(estimateRepo, reservationRepo, accountRepo)
	reservationService := service.NewReservationService(reservationRepo)
	reviewService := service.NewReviewService(reviewRepo, reservationRepo, banWords)

	// Вебсокеты: хаб доставляет уведомления в открытые соединения.
	hub := ws.NewHub()
	go hub.Run()

	notificationService.SetPusher(hub)
	estimateService.SetNotifier(notificationService)
	reservationService.SetNotifier(notificationService)
	reviewService.SetNotifier(notificationService)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	profileHandler := httpHandlers.NewProfileHandler(profileService)
	estimateHandler := httpHandlers.NewEstimateHandler(estimateService)
	reservationHandler := httpHandlers.NewReservationHandler(reservationService)
	reviewHandler := httpHandlers.NewReviewHandler(reviewService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	mediaHandler := httpHandlers.NewMediaHandler(mediaRepo, photoStorage)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, profileHandler, estimateHandler, reservationHandler, reviewHandler, notificationHandler, mediaHandler, wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Периодически чистим протухшие сессии.
	go cleanupSessions(ctx, accountRepo)

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// cleanupSessions раз в час удаляет истёкшие refresh-сессии.
func cleanupSessions(ctx context.Context, accounts *repository.AccountRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := accounts.DeleteExpiredSessions(ctx)
			if err != nil {
				log.Printf("main: ошибка очистки сессий: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("main: удалено %d истёкших сессий", removed)
			}
		}
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
