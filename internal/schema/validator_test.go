package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/chatbot/internal/domain"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator(context.Background(), DefaultSchema)
	require.NoError(t, err)
	return v
}

func TestValidateSession(t *testing.T) {
	ctx := context.Background()
	v := newTestValidator(t)

	assert.NoError(t, v.ValidateSession(ctx, &domain.ChatSession{Title: "New Chat"}))
	assert.NoError(t, v.ValidateSession(ctx, &domain.ChatSession{Title: "t", UserID: "u1", SystemPrompt: "be brief"}))

	err := v.ValidateSession(ctx, &domain.ChatSession{Title: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, domain.CollectionSessions, verr.Collection)
	assert.Equal(t, []string{"title must be a non-empty string"}, verr.Violations)
}

func TestValidateMessage(t *testing.T) {
	ctx := context.Background()
	v := newTestValidator(t)

	for _, role := range []domain.Role{domain.RoleSystem, domain.RoleUser, domain.RoleAssistant} {
		assert.NoError(t, v.ValidateMessage(ctx, &domain.Message{SessionID: "s1", Role: role, Content: "x"}), role)
	}

	// Empty content is accepted.
	assert.NoError(t, v.ValidateMessage(ctx, &domain.Message{SessionID: "s1", Role: domain.RoleUser}))

	err := v.ValidateMessage(ctx, &domain.Message{SessionID: "s1", Role: "tool", Content: "x"})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"role tool must be one of system, user, assistant"}, verr.Violations)

	err = v.ValidateMessage(ctx, &domain.Message{Role: "bogus"})
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Violations, 2)
}

func TestValidateRawDocuments(t *testing.T) {
	ctx := context.Background()
	v := newTestValidator(t)

	err := v.Validate(ctx, domain.CollectionMessages, map[string]interface{}{
		"session_id": "s1",
		"content":    42,
	})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"content must be a string", "role is required"}, verr.Violations)

	err = v.Validate(ctx, domain.CollectionSessions, map[string]interface{}{
		"title":   "ok",
		"user_id": 7,
	})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"user_id must be a string"}, verr.Violations)

	err = v.Validate(ctx, "users", map[string]interface{}{})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"unknown collection users"}, verr.Violations)
}

func TestValidateMissingFields(t *testing.T) {
	ctx := context.Background()
	v := newTestValidator(t)

	tests := []struct {
		name       string
		collection string
		doc        map[string]interface{}
		want       []string
	}{
		{
			name:       "missing title",
			collection: domain.CollectionSessions,
			doc:        map[string]interface{}{"user_id": "u1"},
			want:       []string{"title must be a non-empty string"},
		},
		{
			name:       "missing session_id",
			collection: domain.CollectionMessages,
			doc:        map[string]interface{}{"role": "user", "content": "x"},
			want:       []string{"session_id must be a non-empty string"},
		},
		{
			name:       "missing role",
			collection: domain.CollectionMessages,
			doc:        map[string]interface{}{"session_id": "s1", "content": "x"},
			want:       []string{"role is required"},
		},
		{
			name:       "missing content",
			collection: domain.CollectionMessages,
			doc:        map[string]interface{}{"session_id": "s1", "role": "user"},
			want:       []string{"content must be a string"},
		},
		{
			name:       "empty message",
			collection: domain.CollectionMessages,
			doc:        map[string]interface{}{},
			want: []string{
				"content must be a string",
				"role is required",
				"session_id must be a non-empty string",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(ctx, tt.collection, tt.doc)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Equal(t, tt.want, verr.Violations)
		})
	}
}

func TestNewValidatorRejectsBadModule(t *testing.T) {
	_, err := NewValidator(context.Background(), "package chat_schema\nviolations[msg] {")
	assert.Error(t, err)
}
