package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/chatbot/internal/domain"
)

var (
	clockMu    sync.Mutex
	clockTicks int
)

// useStepClock makes every store timestamp one second after the previous
// one handed out by any earlier step clock.
func useStepClock(t *testing.T) {
	t.Helper()
	clockMu.Lock()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	prev := now
	now = func() time.Time {
		clockTicks++
		return base.Add(time.Duration(clockTicks) * time.Second)
	}
	t.Cleanup(func() {
		now = prev
		clockMu.Unlock()
	})
}

// runStoreContract exercises the Store behaviour every backend must share.
func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("session round trip", func(t *testing.T) {
		useStepClock(t)

		session := &domain.ChatSession{Title: "Trip", UserID: "u1", SystemPrompt: "be brief"}
		require.NoError(t, s.CreateSession(ctx, session))
		assert.Len(t, session.ID, 24)
		assert.False(t, session.CreatedAt.IsZero())

		got, err := s.GetSession(ctx, session.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Trip", got.Title)
		assert.Equal(t, "u1", got.UserID)
		assert.Equal(t, "be brief", got.SystemPrompt)
		assert.True(t, session.CreatedAt.Equal(got.CreatedAt))

		bare := &domain.ChatSession{Title: "Bare"}
		require.NoError(t, s.CreateSession(ctx, bare))
		got, err = s.GetSession(ctx, bare.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got.UserID)
		assert.Empty(t, got.SystemPrompt)
	})

	t.Run("missing session", func(t *testing.T) {
		got, err := s.GetSession(ctx, domain.NewID())
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("sessions newest first", func(t *testing.T) {
		useStepClock(t)

		var ids []string
		for _, title := range []string{"a", "b", "c"} {
			session := &domain.ChatSession{Title: title}
			require.NoError(t, s.CreateSession(ctx, session))
			ids = append(ids, session.ID)
		}

		sessions, err := s.ListSessions(ctx, 2)
		require.NoError(t, err)
		require.Len(t, sessions, 2)
		assert.Equal(t, ids[2], sessions[0].ID)
		assert.Equal(t, ids[1], sessions[1].ID)

		all, err := s.ListSessions(ctx, 0)
		require.NoError(t, err)
		for i := 1; i < len(all); i++ {
			assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt))
		}
	})

	t.Run("messages ordering and windows", func(t *testing.T) {
		useStepClock(t)

		session := &domain.ChatSession{Title: "msgs"}
		require.NoError(t, s.CreateSession(ctx, session))

		var ids []string
		for i := 0; i < 5; i++ {
			msg := &domain.Message{SessionID: session.ID, Role: domain.RoleUser, Content: string(rune('a' + i))}
			require.NoError(t, s.CreateMessage(ctx, msg))
			ids = append(ids, msg.ID)
		}
		other := &domain.Message{SessionID: domain.NewID(), Role: domain.RoleUser, Content: "elsewhere"}
		require.NoError(t, s.CreateMessage(ctx, other))

		all, err := s.ListMessages(ctx, session.ID, 0)
		require.NoError(t, err)
		require.Len(t, all, 5)
		for i, msg := range all {
			assert.Equal(t, ids[i], msg.ID)
			assert.Equal(t, session.ID, msg.SessionID)
			assert.Equal(t, domain.RoleUser, msg.Role)
		}

		first, err := s.ListMessages(ctx, session.ID, 2)
		require.NoError(t, err)
		require.Len(t, first, 2)
		assert.Equal(t, "a", first[0].Content)
		assert.Equal(t, "b", first[1].Content)

		recent, err := s.RecentMessages(ctx, session.ID, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "d", recent[0].Content)
		assert.Equal(t, "e", recent[1].Content)

		again, err := s.ListMessages(ctx, session.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, all, again)
	})

	t.Run("empty content allowed", func(t *testing.T) {
		msg := &domain.Message{SessionID: domain.NewID(), Role: domain.RoleUser, Content: ""}
		require.NoError(t, s.CreateMessage(ctx, msg))
		got, err := s.ListMessages(ctx, msg.SessionID, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "", got[0].Content)
	})

	t.Run("no messages", func(t *testing.T) {
		got, err := s.ListMessages(ctx, domain.NewID(), 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
		names, err := s.Collections(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, domain.CollectionSessions)
		assert.Contains(t, names, domain.CollectionMessages)
	})
}
