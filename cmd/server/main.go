package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/server"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/server/monitor"
)

const (
	serverReadTimeout  = 60 * time.Second // uploads of large CSV files need headroom
	serverWriteTimeout = 90 * time.Second // report rendering can take a while
	shutdownTimeout    = 30 * time.Second
)

func main() {
	log.Println("🚀 Starting Metrics Hub server...")

	cfg := server.LoadConfig()
	maxStorageBytes := cfg.MaxStorageGB * 1024 * 1024 * 1024
	log.Printf("⚙️  Configuration: Storage limit = %.2f GB, Memory limit = %d MB, Batch size = %d",
		float64(maxStorageBytes)/(1024*1024*1024), cfg.MaxMemoryMB, cfg.BatchSize)
	log.Printf("📁 Data directory: %s", cfg.DataDir)

	store, err := server.InitializeStorage(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}
	defer store.Close()

	storageMonitor := monitor.NewStorageMonitor(cfg.DataDir, maxStorageBytes)
	log.Printf("💾 Storage usage monitoring enabled: %.2f GB max", float64(maxStorageBytes)/(1024*1024*1024))

	ingestHandler, aggregateHandler, reportHandler, hub := server.InitializeHandlers(store, cfg.BatchSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	log.Println("📡 WebSocket hub started for import notifications")

	// Start BadgerDB garbage collection (reclaims disk space)
	stopGC := make(chan bool)
	wg.Add(1)
	go server.RunBadgerGC(store, stopGC, &wg)

	router := mux.NewRouter()
	server.SetupRoutes(router, ingestHandler, aggregateHandler, reportHandler, store, storageMonitor, hub, cfg.Port)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
	}

	go func() {
		log.Printf("🌐 Server starting on http://localhost:%s", cfg.Port)
		log.Println("📡 API endpoints:")
		log.Println("   POST /v1/import     - Import CSV metric records")
		log.Println("   GET  /v1/aggregate  - Aggregate a metric over a date range")
		log.Println("   GET  /v1/report     - Download xlsx report")
		log.Println("   GET  /v1/stats      - Store statistics")
		log.Println("   GET  /v1/storage    - Disk usage")
		log.Println("   GET  /v1/health     - Health check")
		log.Println("✅ Server ready to accept requests")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutdown signal received...")

	// Cancel context before wg.Wait() so the hub goroutine can exit
	log.Println("⏸️  Stopping background tasks...")
	cancel()
	close(stopGC)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	log.Println("🔄 Gracefully shutting down server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Server shutdown warning: %v", err)
	}

	log.Println("⏳ Waiting for background tasks to complete...")
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("✅ All background tasks stopped cleanly")
	case <-time.After(5 * time.Second):
		log.Println("⚠️  Some background tasks did not stop in time (forcing exit)")
	}

	log.Println("👋 Metrics Hub server exited cleanly")
}
