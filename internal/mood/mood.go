// Package mood reads the user's mood record for book recommendations.
package mood

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lewisedginton/line_companion_bot/internal/filestore"
)

// DefaultPath is where the mood record lives unless configured otherwise.
const DefaultPath = "mood.txt"

// Source yields the current mood text.
type Source interface {
	Current(ctx context.Context) (string, error)
}

// FileSource reads the mood record from a filestore provider. The record is
// maintained elsewhere and may change between requests, so it is read each
// time and never cached.
type FileSource struct {
	provider filestore.FileProvider
	path     string
}

// NewFileSource creates a source reading path from provider.
func NewFileSource(provider filestore.FileProvider, path string) *FileSource {
	if path == "" {
		path = DefaultPath
	}
	return &FileSource{provider: provider, path: path}
}

// Current returns the trimmed record, or "" if it does not exist.
func (s *FileSource) Current(ctx context.Context) (string, error) {
	data, err := s.provider.Read(ctx, s.path)
	if errors.Is(err, filestore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read mood %s: %w", s.path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Path is the record location within the provider.
func (s *FileSource) Path() string { return s.path }

// Static is a fixed mood, used in tests and local runs.
type Static string

func (s Static) Current(context.Context) (string, error) { return string(s), nil }
