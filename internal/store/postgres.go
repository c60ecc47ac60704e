package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xiaot623/chatbot/internal/domain"
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and runs migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS chatsession (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			user_id TEXT,
			system_prompt TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			seq BIGSERIAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chatsession_created ON chatsession(created_at, seq)`,
		`CREATE TABLE IF NOT EXISTS message (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('system', 'user', 'assistant')),
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			seq BIGSERIAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_message_session ON message(session_id, created_at, seq)`,
	}

	for _, m := range migrations {
		if _, err := s.pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Name returns the backend name.
func (s *PostgresStore) Name() string { return BackendPostgres }

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return domain.ReadError("ping", "", err)
	}
	return nil
}

// Collections lists the tables of the current schema.
func (s *PostgresStore) Collections(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() ORDER BY table_name`)
	if err != nil {
		return nil, domain.ReadError("list_collections", "", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, domain.ReadError("list_collections", "", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ReadError("list_collections", "", err)
	}
	return names, nil
}

// CreateSession creates a new session.
func (s *PostgresStore) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	prepareSession(session)
	session.CreatedAt = session.CreatedAt.Truncate(time.Microsecond)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chatsession (id, title, user_id, system_prompt, created_at) VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.Title, nullable(session.UserID), nullable(session.SystemPrompt), session.CreatedAt)
	if err != nil {
		return domain.WriteError("insert", domain.CollectionSessions, err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *PostgresStore) GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	var session domain.ChatSession
	var userID, systemPrompt *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, user_id, system_prompt, created_at FROM chatsession WHERE id = $1`,
		sessionID).Scan(&session.ID, &session.Title, &userID, &systemPrompt, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.ReadError("find", domain.CollectionSessions, err)
	}
	session.UserID = deref(userID)
	session.SystemPrompt = deref(systemPrompt)
	session.CreatedAt = session.CreatedAt.UTC()
	return &session, nil
}

// ListSessions retrieves sessions, newest first.
func (s *PostgresStore) ListSessions(ctx context.Context, limit int) ([]domain.ChatSession, error) {
	query := `SELECT id, title, user_id, system_prompt, created_at FROM chatsession ORDER BY created_at DESC, seq DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, domain.ReadError("find", domain.CollectionSessions, err)
	}
	defer rows.Close()

	sessions := []domain.ChatSession{}
	for rows.Next() {
		var session domain.ChatSession
		var userID, systemPrompt *string
		if err := rows.Scan(&session.ID, &session.Title, &userID, &systemPrompt, &session.CreatedAt); err != nil {
			return nil, domain.ReadError("find", domain.CollectionSessions, err)
		}
		session.UserID = deref(userID)
		session.SystemPrompt = deref(systemPrompt)
		session.CreatedAt = session.CreatedAt.UTC()
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ReadError("find", domain.CollectionSessions, err)
	}
	return sessions, nil
}

// CreateMessage creates a new message.
func (s *PostgresStore) CreateMessage(ctx context.Context, message *domain.Message) error {
	prepareMessage(message)
	message.CreatedAt = message.CreatedAt.Truncate(time.Microsecond)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO message (id, session_id, role, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		message.ID, message.SessionID, string(message.Role), message.Content, message.CreatedAt)
	if err != nil {
		return domain.WriteError("insert", domain.CollectionMessages, err)
	}
	return nil
}

// ListMessages retrieves messages for a session, oldest first.
func (s *PostgresStore) ListMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	query := `SELECT id, session_id, role, content, created_at FROM message WHERE session_id = $1 ORDER BY created_at ASC, seq ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return s.queryMessages(ctx, query, sessionID)
}

// RecentMessages retrieves the newest messages for a session, oldest first.
func (s *PostgresStore) RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	query := `SELECT id, session_id, role, content, created_at FROM message WHERE session_id = $1 ORDER BY created_at DESC, seq DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	messages, err := s.queryMessages(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	reverseMessages(messages)
	return messages, nil
}

func (s *PostgresStore) queryMessages(ctx context.Context, query string, args ...any) ([]domain.Message, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.ReadError("find", domain.CollectionMessages, err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		var role string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, domain.ReadError("find", domain.CollectionMessages, err)
		}
		msg.Role = domain.Role(role)
		msg.CreatedAt = msg.CreatedAt.UTC()
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ReadError("find", domain.CollectionMessages, err)
	}
	return messages, nil
}
