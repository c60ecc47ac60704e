package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/chatbot/internal/domain"
)

func TestRenderDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	renderDiagnostics(&buf, "sqlite", &domain.Diagnostics{
		Backend:          "✅ Running",
		Database:         "✅ Connected & Working",
		DatabaseURL:      "✅ Set",
		DatabaseName:     "❌ Not Set",
		ConnectionStatus: "Connected",
		Collections:      []string{"chatsession", "message"},
	})

	out := buf.String()
	assert.Contains(t, out, "Store backend: sqlite")
	assert.Contains(t, out, "✅ Connected & Working")
	assert.Contains(t, out, "❌ Not Set")
	assert.Contains(t, out, "• chatsession")
	assert.Contains(t, out, "• message")
}

func TestRenderDiagnosticsNoCollections(t *testing.T) {
	var buf bytes.Buffer
	renderDiagnostics(&buf, "mongo", &domain.Diagnostics{
		Backend:          "✅ Running",
		Database:         "❌ Error: connection refused",
		ConnectionStatus: "Not Connected",
	})
	assert.Contains(t, buf.String(), "No collections found")
}

func TestDiagnosticsCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("DATABASE_URL", ":memory:")

	var stdout bytes.Buffer
	rootCmd.SetArgs([]string{"diagnostics"})
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, stdout.String(), "Connected & Working")
	assert.Contains(t, stdout.String(), "DATABASE_URL:  ✅ Set")
}

func TestStatusStyle(t *testing.T) {
	assert.Equal(t, successStyle.Render("x"), statusStyle("✅ Set").Render("x"))
	assert.Equal(t, warningStyle.Render("x"), statusStyle("⚠️  Connected but Error").Render("x"))
	assert.Equal(t, errorStyle.Render("x"), statusStyle("❌ Not Set").Render("x"))
}
