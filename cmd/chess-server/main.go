// FILE: cmd/chess-server/main.go
// Package main implements the chess server application with a RESTful API
// and optional move persistence.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chesscore/cmd/chess-server/cli"
	"chesscore/internal/engine"
	"chesscore/internal/http"
	"chesscore/internal/processor"
	"chesscore/internal/service"
	"chesscore/internal/storage"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:], os.Stdout); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	// Command-line flags
	var (
		apiHost       = flag.String("api-host", "localhost", "API server host")
		apiPort       = flag.Int("api-port", 8080, "API server port")
		dev           = flag.Bool("dev", false, "Development mode (relaxed rate limits, WAL journal)")
		storagePath   = flag.String("storage-path", "", "Path to SQLite database file (disables persistence if empty)")
		engineWorkers = flag.Int("engine-workers", 2, "Number of concurrent computer move searches")
		enginePath    = flag.String("engine", engine.DefaultPath, "UCI engine binary, 'random' for random moves")
		pidPath       = flag.String("pid", "", "Optional path to write PID file")
		pidLock       = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	// Validate PID flags
	if *pidLock && *pidPath == "" {
		log.Fatal("Error: -pid-lock flag requires the -pid flag to be set")
	}
	if *engineWorkers < 1 {
		log.Fatal("Error: -engine-workers must be at least 1")
	}

	// PID file first, so a second locked server exits before touching storage
	var pid *pidFile
	if *pidPath != "" {
		var err error
		pid, err = acquirePID(*pidPath, *pidLock)
		if err != nil {
			log.Fatalf("Failed to manage PID file: %v", err)
		}
		defer pid.Release()
		log.Printf("PID file created at: %s (lock: %v)", *pidPath, *pidLock)
	}

	// 1. Initialize Storage (optional)
	var store *storage.Store
	if *storagePath != "" {
		log.Printf("Initializing persistent storage at: %s", *storagePath)
		var err error
		store, err = storage.NewStore(*storagePath, *dev)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		if err := store.InitDB(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("Warning: failed to close storage cleanly: %v", err)
			}
		}()
	} else {
		log.Printf("Persistent storage disabled (use -storage-path to enable)")
	}

	// 2. Initialize the Service with optional storage
	svc, err := service.New(store)
	if err != nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}

	// 3. Initialize the Processor, injecting the service
	cfg := processor.DefaultConfig()
	cfg.Workers = *engineWorkers
	if *enginePath == "random" {
		cfg.NewSearcher = nil
	} else {
		path := *enginePath
		cfg.NewSearcher = func() (engine.Searcher, error) {
			return engine.NewUCI(path)
		}
	}
	proc := processor.New(svc, cfg)

	// 4. Initialize the Fiber App/HTTP Handler, injecting processor and service
	app := http.NewFiberApp(proc, svc, *dev)

	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	go func() {
		log.Printf("Chess API Server starting...")
		log.Printf("API Listening on: http://%s", apiAddr)
		log.Printf("API Version: v1")
		if *dev {
			log.Printf("Rate Limit: 20 requests/second per IP (DEV MODE)")
		} else {
			log.Printf("Rate Limit: 10 requests/second per IP")
		}
		if *storagePath != "" {
			log.Printf("Storage: Enabled (%s)", *storagePath)
		} else {
			log.Printf("Storage: Disabled")
		}
		log.Printf("Engine: %s (%d workers)", *enginePath, *engineWorkers)
		log.Printf("API Endpoints: http://%s/api/v1/games", apiAddr)
		log.Printf("Health: http://%s/health", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	// Wait for an interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	// Stop accepting requests first
	if err = app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Engine workers next so no result lands after the service is gone
	if err = proc.Close(); err != nil {
		log.Printf("Processor close error: %v", err)
	}

	// Service last (wait registry, pending storage writes)
	if err = svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Printf("Service shutdown error: %v", err)
	}

	// PID file last, once storage is closed
	if pid != nil {
		pid.Release()
	}

	log.Println("Server exited")
}
