package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"docuchat/internal/ai"
	appsvc "docuchat/internal/app"
	"docuchat/internal/auth"
	"docuchat/internal/bootstrap"
	"docuchat/internal/cache"
	"docuchat/internal/platform/rabbitmq"
	"docuchat/internal/prompt"
	"docuchat/internal/repository"
	"docuchat/internal/retrieval"
	"docuchat/internal/transport/http/handler"
	"docuchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	docRepo := repository.NewDocumentRepository(app.MySQL)
	chunkRepo := repository.NewChunkRepository(app.MySQL)
	turnRepo := repository.NewTurnRepository(app.MySQL)
	profileRepo := repository.NewProfileRepository(app.MySQL)

	sessionStore := auth.NewSessionStore(app.Redis, time.Duration(cfg.Auth.SessionTTLMinute)*time.Minute)
	authService := auth.NewService(sessionStore, cfg.Auth.IdentityJWTSecret, cfg.Auth.IdentityIssuer)

	completion := ai.NewCompletionService(app.AI, ai.ChatConfig{
		BaseURL:      cfg.LLM.BaseURL,
		APIKey:       cfg.LLM.APIKey,
		Model:        cfg.LLM.Model,
		MaxRetries:   cfg.LLM.MaxRetries,
		RetryBackoff: time.Duration(cfg.LLM.RetryBackoffMS) * time.Millisecond,
	})
	embedder := ai.NewEmbeddingService(app.AI, ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
	})

	retriever := retrieval.NewRetriever(chunkRepo, embedder)
	assembler := prompt.NewAssembler(cfg.LLM.ContextCharBudget, cfg.LLM.MaxHistoryTurns)
	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)

	chatService := appsvc.NewChatService(
		turnRepo,
		retriever,
		assembler,
		completion,
		historyCache,
		app.Files,
		cfg.LLM.TopK,
		app.Logger,
	)
	publisher := rabbitmq.NewIndexJobPublisher(app.MQConn, cfg.RabbitMQ.IndexQueue)
	ingestService := appsvc.NewIngestService(
		docRepo,
		chunkRepo,
		app.Files,
		publisher,
		retriever,
		cfg.LLM.TopK,
		app.Logger,
	)
	profileService := appsvc.NewProfileService(profileRepo)

	sessionHandler := handler.NewSessionHandler(
		authService,
		cfg.Auth.SessionCookieName,
		cfg.Auth.CookieDomain,
		cfg.Auth.CookieSecure,
		cfg.Auth.SessionTTLMinute*60,
	)
	chatHandler := handler.NewChatHandler(chatService, cfg.Storage.MaxImageMB<<20)
	fileHandler := handler.NewFileHandler(ingestService, int64(cfg.Storage.MaxUploadMB)<<20)
	profileHandler := handler.NewProfileHandler(profileService)

	api := router.Group("/api")
	api.POST("/sessionLogin", sessionHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.RequireSession(authService, cfg.Auth.SessionCookieName))
	protected.POST("/sessionLogout", sessionHandler.Logout)
	protected.GET("/me", sessionHandler.Me)
	protected.GET("/history", chatHandler.History)
	protected.POST("/chat", chatHandler.Chat)
	protected.DELETE("/clear-chat", chatHandler.ClearChat)
	protected.POST("/upload-pdf", fileHandler.UploadPDF)
	protected.GET("/files", fileHandler.ListFiles)
	protected.DELETE("/files/:id", fileHandler.DeleteFile)
	protected.POST("/search-files", fileHandler.SearchFiles)
	protected.PUT("/profile", profileHandler.Update)

	return router
}
