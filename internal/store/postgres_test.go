package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPostgresStoreContract(t *testing.T) {
	dsn := os.Getenv("CHATBOT_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("CHATBOT_TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, `DROP TABLE IF EXISTS message, chatsession`)
		_ = s.Close()
	})

	runStoreContract(t, s)
}
