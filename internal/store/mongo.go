package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xiaot623/chatbot/internal/domain"
)

// MongoStore implements Store using MongoDB collections.
type MongoStore struct {
	client   *mongo.Client
	db       *mongo.Database
	sessions *mongo.Collection
	messages *mongo.Collection
}

type sessionDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	Title        string             `bson:"title"`
	UserID       *string            `bson:"user_id"`
	SystemPrompt *string            `bson:"system_prompt"`
	CreatedAt    time.Time          `bson:"created_at"`
}

type messageDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	SessionID string             `bson:"session_id"`
	Role      string             `bson:"role"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"created_at"`
}

// NewMongoStore connects to uri and uses the database dbName.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(dbName)
	store := &MongoStore{
		client:   client,
		db:       db,
		sessions: db.Collection(domain.CollectionSessions),
		messages: db.Collection(domain.CollectionMessages),
	}
	if err := store.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return store, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	if _, err := s.sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	}); err != nil {
		return err
	}
	_, err := s.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return err
}

// Name returns the backend name.
func (s *MongoStore) Name() string { return BackendMongo }

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

// Ping checks the connection.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return domain.ReadError("ping", "", err)
	}
	return nil
}

// Collections lists the collections of the database.
func (s *MongoStore) Collections(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, domain.ReadError("list_collections", "", err)
	}
	return names, nil
}

// CreateSession creates a new session.
func (s *MongoStore) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	prepareSession(session)
	session.CreatedAt = session.CreatedAt.Truncate(time.Millisecond)
	oid, err := primitive.ObjectIDFromHex(session.ID)
	if err != nil {
		return domain.WriteError("insert", domain.CollectionSessions, err)
	}
	doc := sessionDoc{
		ID:           oid,
		Title:        session.Title,
		UserID:       nullable(session.UserID),
		SystemPrompt: nullable(session.SystemPrompt),
		CreatedAt:    session.CreatedAt,
	}
	if _, err := s.sessions.InsertOne(ctx, doc); err != nil {
		return domain.WriteError("insert", domain.CollectionSessions, err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *MongoStore) GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	oid, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return nil, nil
	}

	var doc sessionDoc
	err = s.sessions.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.ReadError("find", domain.CollectionSessions, err)
	}
	session := doc.toDomain()
	return &session, nil
}

// ListSessions retrieves sessions, newest first.
func (s *MongoStore) ListSessions(ctx context.Context, limit int) ([]domain.ChatSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.sessions.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, domain.ReadError("find", domain.CollectionSessions, err)
	}
	var docs []sessionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.ReadError("find", domain.CollectionSessions, err)
	}

	sessions := make([]domain.ChatSession, 0, len(docs))
	for _, doc := range docs {
		sessions = append(sessions, doc.toDomain())
	}
	return sessions, nil
}

// CreateMessage creates a new message.
func (s *MongoStore) CreateMessage(ctx context.Context, message *domain.Message) error {
	prepareMessage(message)
	message.CreatedAt = message.CreatedAt.Truncate(time.Millisecond)
	oid, err := primitive.ObjectIDFromHex(message.ID)
	if err != nil {
		return domain.WriteError("insert", domain.CollectionMessages, err)
	}
	doc := messageDoc{
		ID:        oid,
		SessionID: message.SessionID,
		Role:      string(message.Role),
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}
	if _, err := s.messages.InsertOne(ctx, doc); err != nil {
		return domain.WriteError("insert", domain.CollectionMessages, err)
	}
	return nil
}

// ListMessages retrieves messages for a session, oldest first.
func (s *MongoStore) ListMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.findMessages(ctx, sessionID, opts)
}

// RecentMessages retrieves the newest messages for a session, oldest first.
func (s *MongoStore) RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	messages, err := s.findMessages(ctx, sessionID, opts)
	if err != nil {
		return nil, err
	}
	reverseMessages(messages)
	return messages, nil
}

func (s *MongoStore) findMessages(ctx context.Context, sessionID string, opts *options.FindOptions) ([]domain.Message, error) {
	cursor, err := s.messages.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, domain.ReadError("find", domain.CollectionMessages, err)
	}
	var docs []messageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.ReadError("find", domain.CollectionMessages, err)
	}

	messages := make([]domain.Message, 0, len(docs))
	for _, doc := range docs {
		messages = append(messages, domain.Message{
			ID:        doc.ID.Hex(),
			SessionID: doc.SessionID,
			Role:      domain.Role(doc.Role),
			Content:   doc.Content,
			CreatedAt: doc.CreatedAt.UTC(),
		})
	}
	return messages, nil
}

func (d sessionDoc) toDomain() domain.ChatSession {
	return domain.ChatSession{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		UserID:       deref(d.UserID),
		SystemPrompt: deref(d.SystemPrompt),
		CreatedAt:    d.CreatedAt.UTC(),
	}
}
