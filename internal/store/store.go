// Package store defines the storage interface and implementations.
package store

import (
	"context"
	"fmt"

	"github.com/xiaot623/chatbot/internal/domain"
)

// Store defines the interface for data persistence.
//
// Create methods assign ID and CreatedAt when they are empty. Get methods
// return (nil, nil) when nothing matches. A limit <= 0 means no limit.
type Store interface {
	// Session operations
	CreateSession(ctx context.Context, session *domain.ChatSession) error
	GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error)
	ListSessions(ctx context.Context, limit int) ([]domain.ChatSession, error)

	// Message operations
	CreateMessage(ctx context.Context, message *domain.Message) error
	// ListMessages returns the oldest messages of a session, oldest first.
	ListMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)
	// RecentMessages returns the newest messages of a session, oldest first.
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)

	// Diagnostics
	Name() string
	Ping(ctx context.Context) error
	Collections(ctx context.Context) ([]string, error)

	// Lifecycle
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend      string
	DatabaseURL  string
	DatabaseName string
}

// Open connects to the configured backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendSQLite:
		return NewSQLiteStore(opts.DatabaseURL)
	case BackendPostgres:
		return NewPostgresStore(ctx, opts.DatabaseURL)
	case BackendMongo:
		return NewMongoStore(ctx, opts.DatabaseURL, opts.DatabaseName)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

func prepareSession(session *domain.ChatSession) {
	if session.ID == "" {
		session.ID = domain.NewID()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now()
	}
	session.CreatedAt = session.CreatedAt.UTC()
}

func prepareMessage(message *domain.Message) {
	if message.ID == "" {
		message.ID = domain.NewID()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = now()
	}
	message.CreatedAt = message.CreatedAt.UTC()
}

func reverseMessages(messages []domain.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
