package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AasheeshLikePanner/spur/spur/config"
	"github.com/AasheeshLikePanner/spur/spur/controllers"
	"github.com/AasheeshLikePanner/spur/spur/middlewares"
	"github.com/AasheeshLikePanner/spur/spur/routes"
	"github.com/AasheeshLikePanner/spur/spur/services/llm"
	"github.com/AasheeshLikePanner/spur/spur/services/support"
	"github.com/AasheeshLikePanner/spur/spur/sources/psql"
	"github.com/AasheeshLikePanner/spur/spur/sources/psql/dao"
	"github.com/AasheeshLikePanner/spur/spur/sources/storage"
	"github.com/AasheeshLikePanner/spur/spur/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	conversationDAO := dao.NewConversationDAO(db.DB)
	messageDAO := dao.NewMessageDAO(db.DB)
	memoryDAO := dao.NewMemoryDAO(db.DB)

	llmClient := llm.NewClient(cfg)

	var extraKnowledge []support.KnowledgeEntry
	if cfg.KnowledgeFile != "" {
		extraKnowledge, err = support.LoadKnowledgeFile(cfg.KnowledgeFile)
		if err != nil {
			logging.AppLogger.Warn("knowledge file skipped", zap.String("path", cfg.KnowledgeFile), zap.Error(err))
		}
	}
	responder := support.NewResponder(llmClient, extraKnowledge)
	extractor := support.NewExtractor(llmClient, memoryDAO)

	// The archive is optional: without MinIO the server runs and the
	// export endpoint answers 503.
	var archive controllers.TranscriptArchive
	if cfg.MinIOEndpoint != "" {
		store, err := storage.NewArchiveStore(cfg)
		if err != nil {
			logging.ErrorLogger.Error("archive store unavailable", zap.Error(err))
		} else {
			archive = store
		}
	}

	chatCtrl := controllers.NewChatController(conversationDAO, messageDAO, memoryDAO, responder, extractor, archive)
	healthCtrl := controllers.NewHealthController()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middlewares.CORS())

	r.Mount("/api/chat", routes.ChatRoutes(chatCtrl))
	r.Mount("/api/health", routes.HealthRoutes(healthCtrl))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
