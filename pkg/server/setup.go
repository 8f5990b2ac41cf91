package server

import (
	"log"
	"os"
	"strconv"

	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/aggregate"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/config"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/ingest"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/report"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/storage"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/storage/badger"
)

// Config holds server configuration.
type Config struct {
	MaxStorageGB int64
	MaxMemoryMB  int64
	BatchSize    int
	DataDir      string
	Port         string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() Config {
	maxStorageGB := getEnvInt64("METRICSHUB_MAX_STORAGE_GB", config.DefaultMaxStorageGB)
	maxMemoryMB := getEnvInt64("METRICSHUB_MAX_MEMORY_MB", config.DefaultMaxMemoryMB)
	batchSize := int(getEnvInt64("METRICSHUB_BATCH_SIZE", config.DefaultBatchSize))
	port := getPort()

	// Ensure data directory exists
	dataDir := os.Getenv("METRICSHUB_DATA_DIR")
	if dataDir == "" {
		dataDir = "./data/metrics-hub"
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	return Config{
		MaxStorageGB: maxStorageGB,
		MaxMemoryMB:  maxMemoryMB,
		BatchSize:    batchSize,
		DataDir:      dataDir,
		Port:         port,
	}
}

// InitializeStorage initializes BadgerDB storage with the given configuration.
func InitializeStorage(cfg Config) (storage.Store, error) {
	log.Println("Initializing BadgerDB storage with Snappy compression...")
	store, err := badger.New(badger.Config{
		Path:        cfg.DataDir,
		MaxMemoryMB: cfg.MaxMemoryMB,
	})
	if err != nil {
		return nil, err
	}
	log.Println("BadgerDB storage initialized successfully")
	return store, nil
}

// InitializeHandlers creates and configures all request handlers.
func InitializeHandlers(store storage.Store, batchSize int) (
	*ingest.Handler,
	*aggregate.Handler,
	*report.Handler,
	*ingest.Hub,
) {
	// WebSocket hub announces completed imports to connected clients
	hub := ingest.NewHub()
	log.Println("WebSocket hub created for import notifications")

	ingestHandler := ingest.NewHandler(store, batchSize, hub)
	log.Printf("Import handler created (batch size %d)", batchSize)

	aggregateHandler := aggregate.NewHandler(store)
	log.Println("Aggregation handler created")

	reportHandler := report.NewHandler(store)
	log.Println("Report handler created (xlsx export)")

	return ingestHandler, aggregateHandler, reportHandler, hub
}

// getEnvInt64 gets an int64 from environment variable or returns default.
func getEnvInt64(key string, defaultValue int64) int64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
		log.Printf("Invalid value for %s: %q, using default %d", key, val, defaultValue)
	}
	return defaultValue
}

// getPort gets the server port from PORT environment variable or returns default.
func getPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return config.DefaultPort
}
