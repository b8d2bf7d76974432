package router

import (
	"time"

	"empathy-engine/backend/internal/api"
	"empathy-engine/backend/internal/ws"
	"empathy-engine/backend/pkg/config"
	"empathy-engine/backend/pkg/di"
	"empathy-engine/backend/pkg/errors"
	"empathy-engine/backend/pkg/logger"
	"empathy-engine/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Config    *config.Config
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)

	cfg := config.Get()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Logger middleware first so every request is captured
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	rateLimiter := middleware.NewRateLimiter(container.Logger)
	engine.Use(rateLimiter.Middleware())

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Config:    cfg,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware())

	analyzeHandler := api.NewAnalyzeHandler(r.Container.AnalysisService)
	chatHandler := api.NewChatHandler(r.Container.ChatService)
	replyHandler := api.NewReplyHandler(r.Container.ReplyService)
	wsHandler := ws.NewHandler(r.Container.ClassifierService, r.Logger)

	r.setupHealthRoutes()

	// Stateless analysis and generation
	r.Engine.POST("/analyze", analyzeHandler.Analyze)
	r.Engine.POST("/chat", replyHandler.Reply)
	r.Engine.POST("/summary", replyHandler.Summarize)

	// Chat session routes
	apiRoutes := r.Engine.Group("/api")
	{
		apiRoutes.POST("/chat", chatHandler.CreateChat)
		apiRoutes.GET("/user/:userId/chats", chatHandler.ListChats)

		chatRoutes := apiRoutes.Group("/chat/:chatId")
		{
			chatRoutes.GET("", chatHandler.GetChat)
			chatRoutes.DELETE("", chatHandler.DeleteChat)
			chatRoutes.POST("/message", chatHandler.AddMessage)
			chatRoutes.POST("/summarize-emotion", chatHandler.SummarizeEmotion)
			chatRoutes.PATCH("/title", chatHandler.UpdateTitle)
		}
	}

	// Live analysis over WebSocket
	r.Engine.GET("/ws/analyze", wsHandler.Serve)
}

// corsMiddleware allows browser clients to reach the API, including the
// WebSocket upgrade headers
func corsMiddleware() gin.HandlerFunc {
	allowed := config.Get().Security.AllowedOrigins

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowOrigin := "*"
		if len(allowed) > 0 && allowed[0] != "*" {
			allowOrigin = ""
			for _, candidate := range allowed {
				if candidate == origin {
					allowOrigin = origin
					break
				}
			}
		}
		if allowOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, Origin, Upgrade, Connection, Cache-Control")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Upgrade, Connection, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// uptime helper used by the health payload
var startTime = time.Now()
