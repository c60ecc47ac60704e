package cmd

import (
	"context"
	"fmt"

	"github.com/xiaot623/chatbot/internal/config"
	"github.com/xiaot623/chatbot/internal/schema"
	"github.com/xiaot623/chatbot/internal/service"
	"github.com/xiaot623/chatbot/internal/store"
)

// newService opens the configured store and builds the service on it.
// The caller closes the returned store.
func newService(ctx context.Context, cfg *config.Config) (*service.Service, store.Store, error) {
	db, err := store.Open(ctx, store.Options{
		Backend:      cfg.StoreBackend,
		DatabaseURL:  cfg.DatabaseURL,
		DatabaseName: cfg.DatabaseName,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	validator, err := schema.NewValidator(ctx, schema.DefaultSchema)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize schema validator: %w", err)
	}

	return service.New(db, validator, cfg), db, nil
}
