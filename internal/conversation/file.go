package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/lewisedginton/line_companion_bot/internal/filestore"
)

// FileStore persists each history as chat/{id}.json on a filestore provider,
// which may be a local directory or an S3 bucket.
type FileStore struct {
	provider filestore.FileProvider
}

// NewFileStore creates a store over the given provider.
func NewFileStore(provider filestore.FileProvider) *FileStore {
	return &FileStore{provider: provider}
}

func historyPath(id string) string {
	return "chat/" + id + ".json"
}

func (s *FileStore) Get(ctx context.Context, id string) (History, error) {
	data, err := s.provider.Read(ctx, historyPath(id))
	if errors.Is(err, filestore.ErrNotFound) {
		return History{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", id, err)
	}
	return UnmarshalHistory(data)
}

func (s *FileStore) Put(ctx context.Context, id string, history History) error {
	data, err := MarshalHistory(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.provider.Write(ctx, historyPath(id), data); err != nil {
		return fmt.Errorf("write history %s: %w", id, err)
	}
	return nil
}
