package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticketdesk/internal/auth"
	"github.com/spec-kit/ticketdesk/internal/clock"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/events"
	"github.com/spec-kit/ticketdesk/internal/repository"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

var (
	alice = domain.Actor{Username: "alice", Role: domain.RoleRequester}
	dave  = domain.Actor{Username: "dave", Role: domain.RoleRequester}
	bob   = domain.Actor{Username: "bob", Role: domain.RoleSupport}
	admin = domain.Actor{Username: "admin", Role: domain.RoleAdministrator}
)

type testEnv struct {
	store   *repository.MemoryStore
	clock   *clock.Fake
	events  []events.Event
	tickets *TicketService
	users   *UserService
	auth    *AuthService
	reports *ReportService
	history *HistoryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store: repository.NewMemoryStore(),
		clock: clock.NewFake(epoch),
	}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	record := func(_ context.Context, e events.Event) error {
		env.events = append(env.events, e)
		return nil
	}
	for _, et := range append(append([]events.EventType{}, events.AllTicketEvents...), events.EventUserCreated, events.EventUserDeleted) {
		dispatcher.Subscribe(et, record)
	}

	env.tickets = NewTicketService(TicketDependencies{
		TicketRepo: env.store.Tickets(),
		UserRepo:   env.store.Users(),
		Dispatcher: dispatcher,
		Clock:      env.clock,
		Logger:     zap.NewNop(),
	})
	env.users = NewUserService(UserDependencies{
		UserRepo:   env.store.Users(),
		Dispatcher: dispatcher,
		Clock:      env.clock,
		BcryptCost: bcrypt.MinCost,
		Logger:     zap.NewNop(),
	})
	env.auth = NewAuthService(AuthDependencies{
		UserRepo:     env.store.Users(),
		TokenManager: auth.NewTokenManager("test-secret", time.Hour, env.clock),
		Revocations:  auth.NewMemoryRevocations(env.clock),
		Clock:        env.clock,
		BcryptCost:   bcrypt.MinCost,
	})
	env.reports = NewReportService(env.store.Tickets())
	env.history = NewHistoryService(HistoryDependencies{
		HistoryRepo: env.store.History(),
		TicketRepo:  env.store.Tickets(),
		Dispatcher:  dispatcher,
	})
	env.history.RegisterHandlers()

	for _, a := range []domain.Actor{alice, dave, bob, admin} {
		_, err := env.users.RegisterUser(context.Background(), "test", CreateUserInput{
			Username: a.Username,
			Password: a.Username + "-pw",
			Role:     a.Role,
		})
		require.NoError(t, err)
	}
	env.events = nil
	return env
}

func (env *testEnv) createTicket(t *testing.T, actor domain.Actor, title string) *domain.Ticket {
	t.Helper()
	ticket, err := env.tickets.CreateTicket(context.Background(), actor, TicketCreateInput{
		Title:    title,
		Priority: domain.TicketPriorityMedium,
		Category: domain.TicketCategoryBug,
	})
	require.NoError(t, err)
	return ticket
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
