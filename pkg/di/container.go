package di

import (
	"empathy-engine/backend/ai"
	"empathy-engine/backend/internal/repository"
	"empathy-engine/backend/internal/service"
	"empathy-engine/backend/pkg/config"
	"empathy-engine/backend/pkg/health"
	"empathy-engine/backend/pkg/logger"
	"empathy-engine/backend/shared/redis"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	DB                *gorm.DB
	Logger            *logger.Logger
	Redis             *redis.Client
	ChatRepository    repository.ChatRepository
	Classifier        *ai.Classifier
	ClassifierService *service.ClassifierService
	AnalysisService   *service.AnalysisService
	ChatService       *service.ChatService
	ReplyService      *service.ReplyService
	Health            *health.Checker
}

// Config holds the configuration for the container
type Config struct {
	LoggerConfig logger.Config
	// RedisEnabled turns the summary cache off entirely when false
	RedisEnabled bool
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		LoggerConfig: logger.DefaultConfig(),
		RedisEnabled: true,
	}
}

// New creates a new dependency injection container
func New(db *gorm.DB, cfg *Config) (*Container, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	log := logger.New(cfg.LoggerConfig)

	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient = redis.NewClient()
	}

	chatRepo := repository.NewGormChatRepository(db)
	classifier := ai.NewClassifier(log)
	classifierService := service.NewClassifierService(classifier, log)
	analysisService := service.NewAnalysisService(classifierService, log)
	chatService := service.NewChatService(chatRepo, classifierService, redisClient, log)
	replyService := service.NewReplyService(classifier, classifierService, log)

	checker := health.NewChecker(log, config.Get().Database.Timeout*6)
	checker.RegisterDatabaseCheck(func() error {
		return config.TestConnection(db)
	})
	if redisClient != nil {
		checker.RegisterRedisCheck(redisClient.Ping)
	}
	if classifier.Enabled() {
		checker.RegisterModelCheck(classifier.Ping)
	}

	return &Container{
		DB:                db,
		Logger:            log,
		Redis:             redisClient,
		ChatRepository:    chatRepo,
		Classifier:        classifier,
		ClassifierService: classifierService,
		AnalysisService:   analysisService,
		ChatService:       chatService,
		ReplyService:      replyService,
		Health:            checker,
	}, nil
}
