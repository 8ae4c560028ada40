package main

import (
	api "jobify-backend/cmd/api"
	trackerdomain "jobify-backend/internal/tracker/domain"
	trackerRepo "jobify-backend/internal/tracker/repository"
	"jobify-backend/internal/tracker/scheduler"
	trackerUsecase "jobify-backend/internal/tracker/usecase"
	"jobify-backend/pkg/chroma"
	"jobify-backend/pkg/config"
	"jobify-backend/pkg/database"
	"jobify-backend/pkg/gmail"
	"jobify-backend/pkg/imap"
	"jobify-backend/pkg/logger"
	"jobify-backend/pkg/openai"

	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Setup(cfg.LogLevel)

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&trackerdomain.User{},
		&trackerdomain.Application{},
		&trackerdomain.InterviewRound{},
		&trackerdomain.Rejection{},
		&trackerdomain.Offer{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Initialize repositories (dependency injection)
	userRepo := trackerRepo.NewUserRepository(db)
	appRepo := trackerRepo.NewApplicationRepository(db)

	// Classifier and embedder share one OpenAI client
	openaiService := openai.NewService(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.EmbeddingModel)

	// Vector index
	chromaClient, err := chroma.NewClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize vector index")
	}

	// Email sources per provider
	sources := map[string]trackerUsecase.EmailSource{
		trackerdomain.ProviderGmail: gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.FetchMaxResults),
		trackerdomain.ProviderIMAP:  imap.NewService(cfg.EncryptionKey),
	}

	// Initialize use case (dependency injection)
	trackerUc := trackerUsecase.NewTrackerUsecase(userRepo, appRepo, openaiService, openaiService, chromaClient, sources)

	// Background sync scheduler
	syncScheduler := scheduler.NewSyncScheduler(userRepo, trackerUc, cfg.SyncInterval)
	syncScheduler.Start()
	defer syncScheduler.Stop()

	// Start server
	handler := api.NewHandler(trackerUc, cfg)
	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
