// Package validation normalizes and checks user-supplied ticket and account fields.
package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/ticketdesk/internal/domain"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util/errorutil"
)

// MaxTitleLength bounds ticket titles in characters.
const MaxTitleLength = 100

// CleanText trims surrounding whitespace. Text is otherwise stored verbatim;
// anything that renders it as HTML escapes it at that point.
func CleanText(s string) string {
	return strings.TrimSpace(s)
}

// CleanOptional applies CleanText to a nullable field.
func CleanOptional(s *string) *string {
	if s == nil {
		return nil
	}
	cleaned := CleanText(*s)
	return &cleaned
}

// TicketFields is the editable content of a new ticket.
type TicketFields struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    domain.TicketCategory
}

// NormalizeTicket cleans the text fields and validates every field, returning
// the cleaned copy.
func NormalizeTicket(in TicketFields) (TicketFields, error) {
	out := TicketFields{
		Title:       CleanText(in.Title),
		Description: CleanText(in.Description),
		Priority:    in.Priority,
		Category:    in.Category,
	}
	if out.Title == "" {
		return TicketFields{}, apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}
	if utf8.RuneCountInString(out.Title) > MaxTitleLength {
		return TicketFields{}, apperrors.NewValidationError("title is too long", map[string]any{
			"field": "title",
			"max":   MaxTitleLength,
		})
	}
	if !out.Priority.IsValid() {
		return TicketFields{}, apperrors.NewValidationError("invalid priority", map[string]any{
			"field": "priority",
			"value": string(in.Priority),
		})
	}
	if !out.Category.IsValid() {
		return TicketFields{}, apperrors.NewValidationError("invalid category", map[string]any{
			"field": "category",
			"value": string(in.Category),
		})
	}
	return out, nil
}

// ValidateStatus checks a requested target status.
func ValidateStatus(status domain.TicketStatus) error {
	if !status.IsValid() {
		return apperrors.NewValidationError("invalid status", map[string]any{
			"field": "status",
			"value": string(status),
		})
	}
	return nil
}

// ValidateCredentials checks the fields of a new account.
func ValidateCredentials(username, password string, role domain.Role) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return apperrors.NewValidationError("username and password must not be empty", nil)
	}
	if strings.TrimSpace(username) != username {
		return apperrors.NewValidationError("username must not start or end with whitespace", map[string]any{"field": "username"})
	}
	if !role.IsValid() {
		return apperrors.NewValidationError("invalid role", map[string]any{
			"field": "role",
			"value": string(role),
		})
	}
	return nil
}
