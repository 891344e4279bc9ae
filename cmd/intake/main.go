package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xiaot623/gogo/intake/internal/adapter/retrieval"
	"github.com/xiaot623/gogo/intake/internal/agent"
	"github.com/xiaot623/gogo/intake/internal/config"
	"github.com/xiaot623/gogo/intake/internal/logger"
	"github.com/xiaot623/gogo/intake/internal/metrics"
	"github.com/xiaot623/gogo/intake/internal/policy"
	"github.com/xiaot623/gogo/intake/internal/repository"
	"github.com/xiaot623/gogo/intake/internal/service"
	"github.com/xiaot623/gogo/intake/internal/session"
	server "github.com/xiaot623/gogo/intake/internal/transport/http"
	"github.com/xiaot623/gogo/intake/internal/transport/ws"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	log.WithFields(logrus.Fields{
		"http_port":          cfg.HTTPPort,
		"database":           cfg.DatabaseURL,
		"transcript_backend": cfg.TranscriptBackend,
		"vector_db_url":      cfg.VectorDBURL,
	}).Info("starting intake service")

	// Initialize store
	db, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize store")
	}
	defer db.Close()

	transcripts, err := newTranscriptStore(cfg, db)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize transcript store")
	}

	m := metrics.New()

	// Initialize policy engine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize policy engine")
	}

	// Session event feed
	hub := ws.NewHub(log)
	go hub.Run(ctx)
	feed := ws.NewServer(hub, cfg.WSPingInterval, cfg.WSWriteTimeout, log)

	// Agents and session store
	retriever := retrieval.NewRetriever(cfg, log, m)
	advisor := agent.NewAdvisorAgent(retriever)
	sessions := session.NewStore(agent.NewQuestionAgent(), transcripts, log, m, session.WithNotifier(hub))

	// Initialize service
	files := repository.NewFileRepository(cfg.OneDriveBasePath, cfg.StorageBasePath)
	svc := service.New(sessions, advisor, transcripts, db, files, policyEngine, log, m)

	e := server.NewServer(svc, feed, m, log, cfg.CORSAllowOrigins)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	log.Infof("HTTP API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down intake service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("failed to shutdown server gracefully")
	}
	if n := sessions.Len(); n > 0 {
		log.WithField("sessions", n).Warn("discarding in-memory sessions that were never ended")
	}

	log.Info("intake service stopped")
}

func newTranscriptStore(cfg *config.Config, db *repository.SQLiteStore) (repository.TranscriptStore, error) {
	switch cfg.TranscriptBackend {
	case config.TranscriptBackendFile:
		return repository.NewFileTranscriptStore(cfg.OneDriveBasePath), nil
	case config.TranscriptBackendSQLite:
		return db, nil
	default:
		return nil, fmt.Errorf("unknown TRANSCRIPT_BACKEND %q", cfg.TranscriptBackend)
	}
}
