package config

import (
	"fmt"
	"strings"
	"time"
)

// Conversation store backends
const (
	StoreFirebase = "firebase"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreFile     = "file"
	StoreMemory   = "memory"
)

// StoreConfig selects and configures the conversation history store.
type StoreConfig struct {
	Backend                 string        `env:"CONVERSATION_STORE" yaml:"conversation_store" default:"firebase"`
	Timeout                 time.Duration `env:"STORE_TIMEOUT" yaml:"store_timeout" default:"5s"`
	FirebaseURL             string        `env:"FIREBASE_URL" yaml:"firebase_url"`
	FirebaseCredentialsFile string        `env:"FIREBASE_CREDENTIALS_FILE" yaml:"firebase_credentials_file"` // Optional: unauthenticated when empty
	RedisURL                string        `env:"REDIS_URL" yaml:"-"`
	DatabaseURL             string        `env:"DATABASE_URL" yaml:"-"`
	SQLitePath              string        `env:"SQLITE_PATH" yaml:"sqlite_path" default:"conversations.db"`
}

func (s StoreConfig) validate() error {
	switch strings.ToLower(s.Backend) {
	case StoreFirebase:
		if s.FirebaseURL == "" {
			return fmt.Errorf("firebase store requires FIREBASE_URL")
		}
	case StoreRedis:
		if s.RedisURL == "" {
			return fmt.Errorf("redis store requires REDIS_URL")
		}
	case StorePostgres:
		if s.DatabaseURL == "" {
			return fmt.Errorf("postgres store requires DATABASE_URL")
		}
	case StoreSQLite:
		if s.SQLitePath == "" {
			return fmt.Errorf("sqlite store requires SQLITE_PATH")
		}
	case StoreFile, StoreMemory:
	default:
		return fmt.Errorf("CONVERSATION_STORE must be one of [firebase, redis, postgres, sqlite, file, memory], got %q", s.Backend)
	}
	return nil
}

// StorageConfig holds blob storage configuration for the mood record and the
// file-backed store.
type StorageConfig struct {
	Backend   string `env:"STORAGE_BACKEND" yaml:"backend" default:"local"` // "local" or "s3"
	LocalDir  string `env:"STORAGE_LOCAL_DIR" yaml:"local_dir" default:"."` // Base directory for local storage
	S3Bucket  string `env:"STORAGE_S3_BUCKET" yaml:"s3_bucket"`             // S3 bucket name
	S3Prefix  string `env:"STORAGE_S3_PREFIX" yaml:"s3_prefix"`             // S3 object key prefix (optional)
	S3Region  string `env:"STORAGE_S3_REGION" yaml:"s3_region"`             // AWS region
	S3Profile string `env:"STORAGE_S3_PROFILE" yaml:"s3_profile"`           // AWS profile name (optional)
	MoodFile  string `env:"MOOD_FILE" yaml:"mood_file" default:"mood.txt"`
}

func (s StorageConfig) validate() error {
	switch s.Backend {
	case "local":
	case "s3":
		if s.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required when using S3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %s (must be 'local' or 's3')", s.Backend)
	}
	return nil
}
