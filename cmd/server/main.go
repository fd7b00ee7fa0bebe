package main

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/RigelNana/studygen/config"
	"github.com/RigelNana/studygen/database"
	"github.com/RigelNana/studygen/handler"
	"github.com/RigelNana/studygen/repository"
	"github.com/RigelNana/studygen/router"
	"github.com/RigelNana/studygen/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	// 存储实现启动时二选一：postgres 或内存
	var store repository.Storage
	switch cfg.Storage.Driver {
	case "memory":
		logger.Warn("using in-memory storage, data will not survive restarts")
		store = repository.NewMemoryStorage()
	case "postgres":
		db, err := database.InitDB(&cfg.Database)
		if err != nil {
			logger.Fatalf("failed to init database: %v", err)
		}
		store = repository.NewPostgresStorage(db)
	default:
		logger.Fatalf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	authService := service.NewAuthService(store, cfg.JWT)
	fileService, err := service.NewFileService(
		store,
		cfg.Upload.Dir,
		cfg.Upload.MaxSizeBytes,
		time.Duration(cfg.Upload.ExtractTimeoutSec)*time.Second,
		logger,
	)
	if err != nil {
		logger.Fatalf("failed to init file service: %v", err)
	}
	generator := service.NewOpenAIGenerator(cfg.OpenAI, logger)
	studyService := service.NewStudyService(store, generator, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	fileHandler := handler.NewFileHandler(fileService, studyService, logger)
	studySetHandler := handler.NewStudySetHandler(studyService, logger)

	r := router.Setup(authService, authHandler, fileHandler, studySetHandler)

	logger.Infof("studygen listening on %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
