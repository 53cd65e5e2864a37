package conversation

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// dbRef is the subset of *db.Ref the store uses.
type dbRef interface {
	Get(ctx context.Context, v interface{}) error
	Set(ctx context.Context, v interface{}) error
}

// FirebaseStore keeps histories in a Firebase Realtime Database under chat/{id}.
type FirebaseStore struct {
	ref func(path string) dbRef
}

// FirebaseConfig configures the Realtime Database connection.
type FirebaseConfig struct {
	DatabaseURL string
	// CredentialsFile is a service-account JSON. Empty means unauthenticated
	// access, which works for databases whose rules allow it.
	CredentialsFile string
}

// NewFirebaseStore connects to the Realtime Database at cfg.DatabaseURL.
func NewFirebaseStore(ctx context.Context, cfg FirebaseConfig) (*FirebaseStore, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("firebase database URL is required")
	}

	opt := option.WithoutAuthentication()
	if cfg.CredentialsFile != "" {
		opt = option.WithCredentialsFile(cfg.CredentialsFile)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: cfg.DatabaseURL}, opt)
	if err != nil {
		return nil, fmt.Errorf("initialise firebase app: %w", err)
	}
	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialise firebase database: %w", err)
	}

	return &FirebaseStore{ref: func(path string) dbRef { return client.NewRef(path) }}, nil
}

func (s *FirebaseStore) Get(ctx context.Context, id string) (History, error) {
	var turns []wireTurn
	if err := s.ref("chat/"+id).Get(ctx, &turns); err != nil {
		return nil, fmt.Errorf("firebase get chat/%s: %w", id, err)
	}
	return fromWire(turns), nil
}

func (s *FirebaseStore) Put(ctx context.Context, id string, history History) error {
	if err := s.ref("chat/"+id).Set(ctx, toWire(history)); err != nil {
		return fmt.Errorf("firebase set chat/%s: %w", id, err)
	}
	return nil
}
