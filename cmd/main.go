package main

import (
	"log/slog"
	"os"
	"time"

	httpapi "github.com/immxrtalbeast/lingualink/internal/api/http"
	"github.com/immxrtalbeast/lingualink/internal/config"
	"github.com/immxrtalbeast/lingualink/internal/repository"
	"github.com/immxrtalbeast/lingualink/internal/repository/model"
	"github.com/immxrtalbeast/lingualink/internal/service"
	"github.com/immxrtalbeast/lingualink/internal/store"
	"github.com/immxrtalbeast/lingualink/lib/logger/sl"
	"github.com/immxrtalbeast/lingualink/lib/logger/slogpretty"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	var (
		roomRepo  repository.RoomRepository
		userRepo  repository.UserRepository
		directory = "fallback"
	)

	if cfg.Database.DSN != "" {
		db, err := connectDatabase(cfg.Database)
		if err != nil {
			log.Error("failed to connect database", sl.Err(err))
			os.Exit(1)
		}
		roomRepo = repository.NewPostgresRoomRepository(db)
		userRepo = repository.NewPostgresUserRepository(db)
		directory = "connected"
	} else {
		// The signaling core works without the directory; only
		// persistence across restarts is lost.
		log.Warn("no database configured, directory runs in memory")
		roomRepo = repository.NewInMemoryRoomRepository()
		userRepo = repository.NewInMemoryUserRepository()
	}

	registry := store.NewRegistry()
	roomTable := store.NewRoomTable()

	signalingService := service.NewSignalingService(registry, roomTable, log)
	pipelineService := service.NewPipelineService(
		signalingService,
		service.DisabledTranscriber{},
		service.EchoTranslator{},
		cfg.Signaling.TargetLanguage,
		log,
	)
	catalogService := service.NewRoomCatalogService(roomRepo, log)
	userService := service.NewUserService(userRepo, log)

	signalController := httpapi.NewSignalController(signalingService, pipelineService, roomRepo, log)
	roomController := httpapi.NewRoomController(catalogService, signalingService)
	userController := httpapi.NewUserController(userService)

	router := httpapi.SetupRouter(signalController, roomController, userController, httpapi.HealthInfo{
		Directory:              directory,
		TranscriptionProviders: pipelineService.TranscriptionProviders(),
		TranslationProviders:   pipelineService.TranslationProviders(),
	})

	log.Info("starting application", slog.String("addr", cfg.HTTP.Address))
	if err := router.Run(cfg.HTTP.Address); err != nil {
		log.Error("http server stopped", sl.Err(err))
		os.Exit(1)
	}
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func connectDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	db.AutoMigrate(&model.Room{}, &model.User{}, &model.ChatMessage{})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
