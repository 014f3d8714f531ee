package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticketdesk/internal/domain"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util/errorutil"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Printer broken", CleanText("  Printer broken \n"))
	assert.Equal(t, "plain", CleanText("plain"))

	verbatim := []string{
		"x<y and y>z",
		"Use <stdin> for input",
		`C:\temp\<name>.log`,
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"<b>bold</b> & more",
	}
	for _, in := range verbatim {
		assert.Equal(t, in, CleanText(in))
	}

	assert.Nil(t, CleanOptional(nil))
	s := " <i>note</i> "
	assert.Equal(t, "<i>note</i>", *CleanOptional(&s))
}

func TestNormalizeTicket(t *testing.T) {
	valid := TicketFields{
		Title:       " Printer broken ",
		Description: "paper jam",
		Priority:    domain.TicketPriorityMedium,
		Category:    domain.TicketCategoryBug,
	}

	tests := []struct {
		name   string
		mutate func(*TicketFields)
		field  string
	}{
		{"empty title", func(f *TicketFields) { f.Title = "" }, "title"},
		{"blank title", func(f *TicketFields) { f.Title = "   " }, "title"},
		{"long title", func(f *TicketFields) { f.Title = strings.Repeat("x", MaxTitleLength+1) }, "title"},
		{"bad priority", func(f *TicketFields) { f.Priority = "Urgent" }, "priority"},
		{"bad category", func(f *TicketFields) { f.Category = "Question" }, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := NormalizeTicket(in)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.field, apperrors.ToDomainError(err).Details["field"])
		})
	}

	out, err := NormalizeTicket(valid)
	require.NoError(t, err)
	assert.Equal(t, "Printer broken", out.Title)
	assert.Equal(t, "paper jam", out.Description)
}

func TestValidateCredentials(t *testing.T) {
	assert.NoError(t, ValidateCredentials("carol", "secret", domain.RoleSupport))
	assert.True(t, apperrors.IsValidation(ValidateCredentials("", "secret", domain.RoleSupport)))
	assert.True(t, apperrors.IsValidation(ValidateCredentials("carol", " ", domain.RoleSupport)))
	assert.True(t, apperrors.IsValidation(ValidateCredentials(" carol", "secret", domain.RoleSupport)))
	assert.True(t, apperrors.IsValidation(ValidateCredentials("carol", "secret", domain.Role("Guest"))))
	assert.True(t, apperrors.IsValidation(ValidateStatus("Closed")))
	assert.NoError(t, ValidateStatus(domain.TicketStatusResolved))
}
