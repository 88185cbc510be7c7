// Package models defines the data structures shared by the readtime packages.
package models

// Store backends accepted by StoreConfig.Backend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// StoreConfig holds runtime configuration for the progress store.
// All values come from CLI flags.
type StoreConfig struct {
	Backend   string
	DBPath    string
	RedisAddr string
	Namespace string
	Capacity  int
}
