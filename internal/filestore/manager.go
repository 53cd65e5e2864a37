package filestore

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// BackendType represents the type of storage backend.
type BackendType string

const (
	BackendLocal BackendType = "local"
	BackendS3    BackendType = "s3"
)

// Config selects and configures the backend.
type Config struct {
	Backend BackendType

	LocalDir string

	S3Bucket  string
	S3Prefix  string
	S3Region  string
	S3Profile string
	// S3Client overrides the client built from region/profile, mainly for tests.
	S3Client S3Client
}

// Manager owns the root provider and hands out namespaced views of it.
type Manager struct {
	backend  BackendType
	provider FileProvider
}

// New builds the configured backend. For S3 without an explicit client the
// default AWS credential chain is used.
func New(ctx context.Context, cfg Config) (*Manager, error) {
	var provider FileProvider

	switch cfg.Backend {
	case BackendLocal, "":
		dir := cfg.LocalDir
		if dir == "" {
			dir = "."
		}
		cfg.Backend = BackendLocal
		provider = NewLocalFileProvider(dir)

	case BackendS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("bucket is required for s3 backend")
		}
		client := cfg.S3Client
		if client == nil {
			var opts []func(*awsconfig.LoadOptions) error
			if cfg.S3Region != "" {
				opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
			}
			if cfg.S3Profile != "" {
				opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.S3Profile))
			}
			awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
			if err != nil {
				return nil, fmt.Errorf("failed to load AWS config: %w", err)
			}
			client = NewAWSS3Client(s3.NewFromConfig(awsCfg))
		}
		provider = NewS3FileProvider(cfg.S3Bucket, cfg.S3Prefix, client)

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Backend)
	}

	return &Manager{backend: cfg.Backend, provider: provider}, nil
}

// NewWithProvider wraps an existing provider.
func NewWithProvider(provider FileProvider) *Manager {
	return &Manager{provider: provider}
}

// Provider returns a view scoped to namespace, or the root provider when
// namespace is empty.
func (m *Manager) Provider(namespace string) FileProvider {
	if namespace == "" {
		return m.provider
	}
	return NewPrefixedFileProvider(m.provider, namespace)
}

// Backend returns the configured backend type.
func (m *Manager) Backend() BackendType {
	return m.backend
}
