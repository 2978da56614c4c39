package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/snm.report/internal/api"
	"github.com/banshee-data/snm.report/internal/db"
	"github.com/banshee-data/snm.report/internal/version"
)

func serveMain(args []string) {
	fs := flag.NewFlagSet("snm-report serve", flag.ExitOnError)
	fs.Usage = usage(fs)
	sf := addSettingsFlags(fs)
	dbPath := fs.String("db", defaultDBPath, "SQLite database path")
	listen := fs.String("listen", ":8090", "Listen address")
	fs.Parse(args)

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	settings, err := sf.load()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := api.NewServer(db.NewRunStore(database), settings).ServeMux()
	database.AttachAdminRoutes(mux)

	server := &http.Server{
		Addr:              *listen,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("snm-report %s listening on %s", version.String(), *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	log.Printf("Graceful shutdown complete")
}
