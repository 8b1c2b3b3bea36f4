package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/rpattn/grosscalc/internal/api"
	"github.com/rpattn/grosscalc/internal/ask"
	"github.com/rpattn/grosscalc/internal/config"
	"github.com/rpattn/grosscalc/internal/db"
	"github.com/rpattn/grosscalc/internal/ingestion"
	"github.com/rpattn/grosscalc/internal/margin"
	"github.com/rpattn/grosscalc/internal/middleware"
	"github.com/rpattn/grosscalc/internal/repository"
	"github.com/rpattn/grosscalc/internal/secure"
)

const (
	serviceName    = "grosscalc"
	serviceVersion = "1.0.0"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := db.RunMigrations(cfg.Database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	cipher, err := secure.NewCipherFromHex(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize cipher: %v", err)
	}
	rates := secure.NewRateResolver(cipher)

	// Storage wiring
	batchStore := repository.NewBatchStore(conn, rates)
	issueRepo := repository.NewIssueRepository(conn.Pool)
	projectRepo := repository.NewProjectRepository(conn.Pool)
	snapshots := repository.NewSnapshotSource(conn)

	// Services
	ingestSvc := ingestion.NewService(batchStore, issueRepo, log.Default())
	marginSvc := margin.NewService(snapshots, rates, log.Default())
	askClient := ask.NewClient(cfg.AskURL, cfg.AskTimeout)

	// Handlers
	ingestHandler := ingestion.NewHandler(ingestSvc, issueRepo)
	marginHandler := margin.NewHandler(marginSvc, projectRepo)
	askHandler := ask.NewHandler(askClient)

	mux := http.NewServeMux()
	mux.HandleFunc("/upload", ingestHandler.Upload)
	mux.HandleFunc("/ingest", ingestHandler.Ingest)
	mux.HandleFunc("/abandon", ingestHandler.Abandon)
	mux.HandleFunc("/issues", ingestHandler.Issues)
	mux.HandleFunc("/margins", marginHandler.Margins)
	mux.HandleFunc("/margins/summary", marginHandler.Summary)
	mux.HandleFunc("/projects", marginHandler.Projects)
	mux.HandleFunc("/ask", askHandler.Ask)
	mux.HandleFunc("/health", api.HealthHandler(serviceName, serviceVersion, conn.Pool))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      corsHandler.Handler(middleware.LoggingMiddleware(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s", cfg.ServerAddr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
