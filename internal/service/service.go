// Package service implements the chat session and message flows.
package service

import (
	"github.com/xiaot623/chatbot/internal/config"
	"github.com/xiaot623/chatbot/internal/reply"
	"github.com/xiaot623/chatbot/internal/schema"
	"github.com/xiaot623/chatbot/internal/store"
)

type Service struct {
	store     store.Store
	validator *schema.Validator
	config    *config.Config
	reply     reply.Func
}

func New(store store.Store, validator *schema.Validator, cfg *config.Config) *Service {
	return &Service{
		store:     store,
		validator: validator,
		config:    cfg,
		reply:     reply.Reply,
	}
}
