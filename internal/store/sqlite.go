package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/chatbot/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS chatsession (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			user_id TEXT,
			system_prompt TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chatsession_created ON chatsession(created_at)`,
		`CREATE TABLE IF NOT EXISTS message (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('system', 'user', 'assistant')),
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_message_session ON message(session_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Name returns the backend name.
func (s *SQLiteStore) Name() string { return BackendSQLite }

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return domain.ReadError("ping", "", err)
	}
	return nil
}

// Collections lists the tables in the database.
func (s *SQLiteStore) Collections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
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
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	prepareSession(session)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chatsession (id, title, user_id, system_prompt, created_at) VALUES (?, ?, ?, ?, ?)`,
		session.ID, session.Title, nullable(session.UserID), nullable(session.SystemPrompt), session.CreatedAt)
	if err != nil {
		return domain.WriteError("insert", domain.CollectionSessions, err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	var session domain.ChatSession
	var userID, systemPrompt sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, user_id, system_prompt, created_at FROM chatsession WHERE id = ?`,
		sessionID).Scan(&session.ID, &session.Title, &userID, &systemPrompt, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, domain.ReadError("find", domain.CollectionSessions, err)
	}
	session.UserID = userID.String
	session.SystemPrompt = systemPrompt.String
	return &session, nil
}

// ListSessions retrieves sessions, newest first.
func (s *SQLiteStore) ListSessions(ctx context.Context, limit int) ([]domain.ChatSession, error) {
	query := `SELECT id, title, user_id, system_prompt, created_at FROM chatsession ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.ReadError("find", domain.CollectionSessions, err)
	}
	defer rows.Close()

	sessions := []domain.ChatSession{}
	for rows.Next() {
		var session domain.ChatSession
		var userID, systemPrompt sql.NullString
		if err := rows.Scan(&session.ID, &session.Title, &userID, &systemPrompt, &session.CreatedAt); err != nil {
			return nil, domain.ReadError("find", domain.CollectionSessions, err)
		}
		session.UserID = userID.String
		session.SystemPrompt = systemPrompt.String
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ReadError("find", domain.CollectionSessions, err)
	}
	return sessions, nil
}

// CreateMessage creates a new message.
func (s *SQLiteStore) CreateMessage(ctx context.Context, message *domain.Message) error {
	prepareMessage(message)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO message (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		message.ID, message.SessionID, string(message.Role), message.Content, message.CreatedAt)
	if err != nil {
		return domain.WriteError("insert", domain.CollectionMessages, err)
	}
	return nil
}

// ListMessages retrieves messages for a session, oldest first.
func (s *SQLiteStore) ListMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	query := `SELECT id, session_id, role, content, created_at FROM message WHERE session_id = ? ORDER BY created_at ASC, rowid ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return s.queryMessages(ctx, query, sessionID)
}

// RecentMessages retrieves the newest messages for a session, oldest first.
func (s *SQLiteStore) RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	query := `SELECT id, session_id, role, content, created_at FROM message WHERE session_id = ? ORDER BY created_at DESC, rowid DESC`
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

func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...interface{}) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
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
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ReadError("find", domain.CollectionMessages, err)
	}
	return messages, nil
}
