package helpers

import (
	"context"
	"testing"

	"github.com/xiaot623/chatbot/internal/schema"
	"github.com/xiaot623/chatbot/internal/store"
)

func NewTestSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func NewTestValidator(t *testing.T) *schema.Validator {
	t.Helper()

	v, err := schema.NewValidator(context.Background(), schema.DefaultSchema)
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}
	return v
}
