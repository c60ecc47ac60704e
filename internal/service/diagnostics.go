package service

import (
	"context"

	"github.com/xiaot623/chatbot/internal/domain"
)

const maxDiagnosticCollections = 10

// Diagnostics reports whether the store is reachable and which of the
// database settings were supplied through the environment.
func (s *Service) Diagnostics(ctx context.Context) *domain.Diagnostics {
	d := &domain.Diagnostics{
		Backend:          "✅ Running",
		Database:         "❌ Not Available",
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			d.Database = "❌ Error: " + truncate(err.Error(), 50)
		} else {
			d.Database = "✅ Available"
			d.ConnectionStatus = "Connected"
			names, err := s.store.Collections(ctx)
			if err != nil {
				d.Database = "⚠️  Connected but Error: " + truncate(err.Error(), 50)
			} else {
				if len(names) > maxDiagnosticCollections {
					names = names[:maxDiagnosticCollections]
				}
				if names != nil {
					d.Collections = names
				}
				d.Database = "✅ Connected & Working"
			}
		}
	}

	d.DatabaseURL = setFlag(s.config != nil && s.config.DatabaseURLSet)
	d.DatabaseName = setFlag(s.config != nil && s.config.DatabaseNameSet)
	return d
}

func setFlag(set bool) string {
	if set {
		return "✅ Set"
	}
	return "❌ Not Set"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
