package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/xiaot623/chatbot/internal/domain"
)

// errStoreNotConnected makes the command exit non-zero when the store is down.
var errStoreNotConnected = errors.New("store is not connected")

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

var diagnosticsCmd = &cobra.Command{
	Use:     "diagnostics",
	Aliases: []string{"test"},
	Short:   "Check that the configured store is reachable",
	Long: `Open the configured store and report:
  • Backend status
  • Store connectivity
  • Whether DATABASE_URL and DATABASE_NAME are set
  • The first collections found in the store`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		svc, db, err := newService(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		d := svc.Diagnostics(cmd.Context())
		renderDiagnostics(cmd.OutOrStdout(), cfg.StoreBackend, d)

		if d.ConnectionStatus != "Connected" {
			return errStoreNotConnected
		}
		return nil
	},
}

func renderDiagnostics(w io.Writer, backend string, d *domain.Diagnostics) {
	fmt.Fprintln(w, sectionStyle.Render("🔍 Chatbot Diagnostics"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, infoStyle.Render("Store backend: "+backend))
	fmt.Fprintln(w, "Backend:       "+statusStyle(d.Backend).Render(d.Backend))
	fmt.Fprintln(w, "Database:      "+statusStyle(d.Database).Render(d.Database))
	fmt.Fprintln(w, "DATABASE_URL:  "+statusStyle(d.DatabaseURL).Render(d.DatabaseURL))
	fmt.Fprintln(w, "DATABASE_NAME: "+statusStyle(d.DatabaseName).Render(d.DatabaseName))
	fmt.Fprintln(w, "Connection:    "+d.ConnectionStatus)
	fmt.Fprintln(w)

	if len(d.Collections) == 0 {
		fmt.Fprintln(w, warningStyle.Render("⚠️  No collections found"))
		return
	}
	fmt.Fprintln(w, infoStyle.Render("Collections:"))
	for _, name := range d.Collections {
		fmt.Fprintf(w, "   • %s\n", name)
	}
}

func statusStyle(status string) lipgloss.Style {
	switch {
	case strings.HasPrefix(status, "✅"):
		return successStyle
	case strings.HasPrefix(status, "⚠️"):
		return warningStyle
	default:
		return errorStyle
	}
}

func init() {
	rootCmd.AddCommand(diagnosticsCmd)
}
