// Package filestore is the blob layer behind the mood record and the
// file-backed conversation store. It supports a local directory or an S3
// bucket, and hands out prefix-scoped providers so callers stay isolated.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Read when the object does not exist.
var ErrNotFound = errors.New("object not found")

// FileProvider defines the file operations the bot needs.
type FileProvider interface {
	// Read returns the whole object, or ErrNotFound.
	Read(ctx context.Context, path string) ([]byte, error)
	// Write creates or replaces the object.
	Write(ctx context.Context, path string, data []byte) error
	Exists(ctx context.Context, path string) (bool, error)
}

// LocalFileProvider implements FileProvider for a local directory.
type LocalFileProvider struct {
	baseDir string
}

// NewLocalFileProvider creates a new local file provider rooted at baseDir.
func NewLocalFileProvider(baseDir string) *LocalFileProvider {
	return &LocalFileProvider{baseDir: baseDir}
}

// resolve joins path onto baseDir and refuses anything that escapes it.
func (p *LocalFileProvider) resolve(path string) (string, error) {
	full := filepath.Join(p.baseDir, filepath.FromSlash(path))
	rel, err := filepath.Rel(p.baseDir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes base directory", path)
	}
	return full, nil
}

// Read reads a file from the local filesystem.
func (p *LocalFileProvider) Read(_ context.Context, path string) ([]byte, error) {
	full, err := p.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full) //nolint:gosec // G304: path is confined to baseDir by resolve
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Write writes data to a local file, creating parent directories.
func (p *LocalFileProvider) Write(_ context.Context, path string, data []byte) error {
	full, err := p.resolve(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Write to a sibling temp file and rename so readers never see a torn document.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Exists checks if a file exists on the local filesystem.
func (p *LocalFileProvider) Exists(_ context.Context, path string) (bool, error) {
	full, err := p.resolve(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// S3FileProvider implements FileProvider for AWS S3.
type S3FileProvider struct {
	bucket   string
	prefix   string
	s3Client S3Client
}

// NewS3FileProvider creates a new S3 file provider.
func NewS3FileProvider(bucket, prefix string, s3Client S3Client) *S3FileProvider {
	return &S3FileProvider{bucket: bucket, prefix: strings.Trim(prefix, "/"), s3Client: s3Client}
}

// Read reads an object from S3.
func (p *S3FileProvider) Read(ctx context.Context, path string) ([]byte, error) {
	return p.s3Client.GetObject(ctx, p.bucket, p.getKey(path))
}

// Write writes an object to S3.
func (p *S3FileProvider) Write(ctx context.Context, path string, data []byte) error {
	return p.s3Client.PutObject(ctx, p.bucket, p.getKey(path), data)
}

// Exists returns (false, nil) only for not-found; other failures are propagated.
func (p *S3FileProvider) Exists(ctx context.Context, path string) (bool, error) {
	err := p.s3Client.HeadObject(ctx, p.bucket, p.getKey(path))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (p *S3FileProvider) getKey(path string) string {
	if p.prefix == "" {
		return path
	}
	return p.prefix + "/" + path
}

// PrefixedFileProvider scopes every path under a fixed prefix.
type PrefixedFileProvider struct {
	provider FileProvider
	prefix   string
}

// NewPrefixedFileProvider creates a new prefixed file provider.
func NewPrefixedFileProvider(provider FileProvider, prefix string) *PrefixedFileProvider {
	return &PrefixedFileProvider{provider: provider, prefix: strings.Trim(prefix, "/")}
}

func (p *PrefixedFileProvider) Read(ctx context.Context, path string) ([]byte, error) {
	return p.provider.Read(ctx, p.prefixPath(path))
}

func (p *PrefixedFileProvider) Write(ctx context.Context, path string, data []byte) error {
	return p.provider.Write(ctx, p.prefixPath(path), data)
}

func (p *PrefixedFileProvider) Exists(ctx context.Context, path string) (bool, error) {
	return p.provider.Exists(ctx, p.prefixPath(path))
}

func (p *PrefixedFileProvider) prefixPath(path string) string {
	if p.prefix == "" {
		return path
	}
	return p.prefix + "/" + path
}
