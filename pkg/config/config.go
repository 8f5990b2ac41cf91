package config

import "time"

// Server defaults
const (
	DefaultPort         = "8080"
	DefaultMaxStorageGB = 1
	DefaultMaxMemoryMB  = 48
)

// Import pipeline defaults
const (
	// DefaultBatchSize is how many normalized records accumulate before
	// a batch is flushed to the store.
	DefaultBatchSize = 1000

	// MaxUploadBytes caps the size of an uploaded CSV file.
	MaxUploadBytes = 256 << 20 // 256 MB
)

// Query timeouts
const (
	AggregateTimeout = 30 * time.Second
	ReportTimeout    = 60 * time.Second
	StatsTimeout     = 5 * time.Second
)

// Maintenance intervals
const (
	BadgerGCInterval = 10 * time.Minute
)

// WebSocket configuration
const (
	WSReadBufferSize  = 1024
	WSWriteBufferSize = 1024
	WSBroadcastBuffer = 256
	WSChannelBuffer   = 10
	WSWriteDeadline   = 10 * time.Second
	WSReadDeadline    = 60 * time.Second
	WSPingInterval    = 30 * time.Second
)
