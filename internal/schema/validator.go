// Package schema validates chat documents before they are persisted.
package schema

import (
	"context"
	"fmt"
	"sort"

	"github.com/open-policy-agent/opa/rego"

	"github.com/xiaot623/chatbot/internal/domain"
)

// Validator evaluates the document rules with OPA.
type Validator struct {
	query rego.PreparedEvalQuery
}

// NewValidator prepares a validator from the given Rego module.
func NewValidator(ctx context.Context, module string) (*Validator, error) {
	r := rego.New(
		rego.Query("data.chat_schema.violations"),
		rego.Module("chat_schema.rego", module),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Validator{query: query}, nil
}

// ValidateSession checks a session document.
func (v *Validator) ValidateSession(ctx context.Context, session *domain.ChatSession) error {
	doc := map[string]interface{}{
		"title": session.Title,
	}
	if session.UserID != "" {
		doc["user_id"] = session.UserID
	}
	if session.SystemPrompt != "" {
		doc["system_prompt"] = session.SystemPrompt
	}
	return v.Validate(ctx, domain.CollectionSessions, doc)
}

// ValidateMessage checks a message document.
func (v *Validator) ValidateMessage(ctx context.Context, msg *domain.Message) error {
	doc := map[string]interface{}{
		"session_id": msg.SessionID,
		"role":       string(msg.Role),
		"content":    msg.Content,
	}
	return v.Validate(ctx, domain.CollectionMessages, doc)
}

// Validate evaluates doc as a member of collection. It returns a
// *domain.ValidationError listing every violation, or nil.
func (v *Validator) Validate(ctx context.Context, collection string, doc map[string]interface{}) error {
	input := map[string]interface{}{
		"collection": collection,
		"document":   doc,
	}

	results, err := v.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return fmt.Errorf("failed to evaluate schema: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return nil
	}

	values, ok := results[0].Expressions[0].Value.([]interface{})
	if !ok {
		return fmt.Errorf("unexpected schema result type %T", results[0].Expressions[0].Value)
	}
	if len(values) == 0 {
		return nil
	}

	violations := make([]string, 0, len(values))
	for _, val := range values {
		violations = append(violations, fmt.Sprint(val))
	}
	sort.Strings(violations)

	return &domain.ValidationError{Collection: collection, Violations: violations}
}

// DefaultSchema describes the chatsession and message documents.
const DefaultSchema = `
package chat_schema

collections := {"chatsession", "message"}

roles := {"system", "user", "assistant"}

violations[msg] {
	not collections[input.collection]
	msg := sprintf("unknown collection %v", [input.collection])
}

# chatsession

violations[msg] {
	input.collection == "chatsession"
	not non_empty_string(field_value("title"))
	msg := "title must be a non-empty string"
}

violations[msg] {
	input.collection == "chatsession"
	field := ["user_id", "system_prompt"][_]
	value := input.document[field]
	value != null
	not is_string(value)
	msg := sprintf("%v must be a string", [field])
}

# message

violations[msg] {
	input.collection == "message"
	not non_empty_string(field_value("session_id"))
	msg := "session_id must be a non-empty string"
}

violations[msg] {
	input.collection == "message"
	not is_string(field_value("role"))
	msg := "role is required"
}

violations[msg] {
	input.collection == "message"
	role := field_value("role")
	is_string(role)
	not roles[role]
	msg := sprintf("role %v must be one of system, user, assistant", [role])
}

violations[msg] {
	input.collection == "message"
	not is_string(field_value("content"))
	msg := "content must be a string"
}

# Absent fields read as null so the checks above fire on them.
field_value(name) = object.get(input.document, name, null)

non_empty_string(x) {
	is_string(x)
	x != ""
}
`
