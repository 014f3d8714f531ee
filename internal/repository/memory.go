package repository

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticketdesk/internal/domain"
)

// MemoryStore keeps users and tickets in process memory. It backs tests and
// development runs without POSTGRES_DSN, and mirrors the Postgres semantics:
// pgx.ErrNoRows for missing rows, version-guarded updates, restricted user deletes.
type MemoryStore struct {
	mu            sync.Mutex
	users         map[string]domain.User
	tickets       map[int64]domain.Ticket
	history       []domain.TicketHistory
	nextID        int64
	nextHistoryID int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]domain.User),
		tickets: make(map[int64]domain.Ticket),
	}
}

// Tickets returns a TicketRepository view of the store.
func (s *MemoryStore) Tickets() TicketRepository { return memoryTickets{s} }

// Users returns a UserRepository view of the store.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// History returns a TicketHistoryRepository view of the store.
func (s *MemoryStore) History() TicketHistoryRepository { return memoryHistory{s} }

type memoryTickets struct{ s *MemoryStore }

func (m memoryTickets) Create(_ context.Context, ticket *domain.Ticket) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.nextID++
	ticket.ID = m.s.nextID
	m.s.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (m memoryTickets) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	ticket, ok := m.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneTicket(ticket)
	return &out, nil
}

func (m memoryTickets) List(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	term := filter.search()
	matched := []domain.Ticket{}
	for _, t := range m.s.tickets {
		if filter.CreatedBy != nil && t.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.Assignee != nil && (t.Assignee == nil || *t.Assignee != *filter.Assignee) {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, t.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !slices.Contains(filter.Priorities, t.Priority) {
			continue
		}
		if len(filter.Categories) > 0 && !slices.Contains(filter.Categories, t.Category) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			continue
		}
		matched = append(matched, cloneTicket(t))
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	limit, offset := filter.page()
	if offset >= len(matched) {
		return []domain.Ticket{}, nil
	}
	end := min(offset+limit, len(matched))
	return matched[offset:end], nil
}

func (m memoryTickets) UpdateStatus(_ context.Context, update StatusUpdate) error {
	return m.conditional(update.TicketID, update.Version, func(t *domain.Ticket) {
		t.Status = update.Status
		stamp(t, update.UpdatedAt, update.UpdatedBy)
		if update.SupportFeedback != nil {
			t.SupportFeedback = ptr(*update.SupportFeedback)
		}
		if update.InternalNotes != nil {
			t.InternalNotes = ptr(*update.InternalNotes)
		}
	})
}

func (m memoryTickets) UpdateFeedback(_ context.Context, update FeedbackUpdate) error {
	return m.conditional(update.TicketID, update.Version, func(t *domain.Ticket) {
		t.Feedback = ptr(update.Feedback)
		stamp(t, update.UpdatedAt, update.UpdatedBy)
	})
}

func (m memoryTickets) UpdateAssignee(_ context.Context, update AssigneeUpdate) error {
	return m.conditional(update.TicketID, update.Version, func(t *domain.Ticket) {
		t.Assignee = nil
		if update.Assignee != nil {
			t.Assignee = ptr(*update.Assignee)
		}
		stamp(t, update.UpdatedAt, update.UpdatedBy)
	})
}

func (m memoryTickets) Delete(_ context.Context, id int64, version int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	ticket, ok := m.s.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if ticket.Version != version {
		return ErrStaleTicket
	}
	delete(m.s.tickets, id)
	kept := m.s.history[:0]
	for _, h := range m.s.history {
		if h.TicketID != id {
			kept = append(kept, h)
		}
	}
	m.s.history = kept
	return nil
}

func (m memoryTickets) Stats(_ context.Context) (TicketStats, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var (
		stats TicketStats
		total time.Duration
	)
	for _, t := range m.s.tickets {
		switch {
		case t.Status.IsOpen():
			stats.Open++
		case t.Status == domain.TicketStatusResolved:
			stats.Resolved++
			total += t.UpdatedAt.Sub(t.CreatedAt)
		}
	}
	if stats.Resolved > 0 {
		stats.AverageResolution = total / time.Duration(stats.Resolved)
	}
	return stats, nil
}

func (m memoryTickets) conditional(id int64, version int, apply func(*domain.Ticket)) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	ticket, ok := m.s.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if ticket.Version != version {
		return ErrStaleTicket
	}
	apply(&ticket)
	ticket.Version++
	m.s.tickets[id] = ticket
	return nil
}

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) Create(_ context.Context, user *domain.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, exists := m.s.users[user.Username]; exists {
		return ErrUserExists
	}
	m.s.users[user.Username] = *user
	return nil
}

func (m memoryUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	user, ok := m.s.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (m memoryUsers) List(_ context.Context) ([]domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	result := make([]domain.User, 0, len(m.s.users))
	for _, u := range m.s.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

func (m memoryUsers) UpdatePassword(_ context.Context, username, passwordHash string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	user, ok := m.s.users[username]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	m.s.users[username] = user
	return nil
}

func (m memoryUsers) Delete(_ context.Context, username string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[username]; !ok {
		return pgx.ErrNoRows
	}
	for _, t := range m.s.tickets {
		if t.CreatedBy == username || eq(t.LastUpdatedBy, username) || eq(t.Assignee, username) {
			return ErrUserReferenced
		}
	}
	delete(m.s.users, username)
	return nil
}

type memoryHistory struct{ s *MemoryStore }

func (m memoryHistory) Create(_ context.Context, entry *domain.TicketHistory) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.tickets[entry.TicketID]; !ok {
		return pgx.ErrNoRows
	}
	m.s.nextHistoryID++
	entry.ID = m.s.nextHistoryID
	m.s.history = append(m.s.history, *entry)
	return nil
}

func (m memoryHistory) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketHistory, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	result := []domain.TicketHistory{}
	for _, h := range m.s.history {
		if h.TicketID == ticketID {
			result = append(result, h)
		}
	}
	return result, nil
}

func stamp(t *domain.Ticket, at time.Time, by string) {
	t.UpdatedAt = at
	t.LastUpdatedBy = ptr(by)
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.LastUpdatedBy = clonePtr(t.LastUpdatedBy)
	t.Assignee = clonePtr(t.Assignee)
	t.Feedback = clonePtr(t.Feedback)
	t.SupportFeedback = clonePtr(t.SupportFeedback)
	t.InternalNotes = clonePtr(t.InternalNotes)
	return t
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	return ptr(*p)
}

func ptr(s string) *string { return &s }

func eq(p *string, s string) bool { return p != nil && *p == s }
