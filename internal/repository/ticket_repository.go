package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticketdesk/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Every write is a single
// statement; updates are conditional on the ticket version.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, update StatusUpdate) error
	UpdateFeedback(ctx context.Context, update FeedbackUpdate) error
	UpdateAssignee(ctx context.Context, update AssigneeUpdate) error
	Delete(ctx context.Context, id int64, version int) error
	Stats(ctx context.Context) (TicketStats, error)
}

const ticketColumns = `id, title, description, priority, category, status, created_at, updated_at,
               created_by, last_updated_by, assignee, feedback, support_feedback, internal_notes,
               sentiment, version`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, priority, category, status, created_at, updated_at,
                             created_by, sentiment, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.Category,
		ticket.Status,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.CreatedBy,
		ticket.Sentiment,
		ticket.Version,
	).Scan(&ticket.ID)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.Assignee != nil {
		args = append(args, *filter.Assignee)
		clauses = append(clauses, fmt.Sprintf("assignee=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		clauses = append(clauses, inClause("status", filter.Statuses, &args))
	}
	if len(filter.Priorities) > 0 {
		clauses = append(clauses, inClause("priority", filter.Priorities, &args))
	}
	if len(filter.Categories) > 0 {
		clauses = append(clauses, inClause("category", filter.Categories, &args))
	}
	if term := filter.search(); term != "" {
		args = append(args, "%"+escapeLike(term)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(`(LOWER(title) LIKE %s ESCAPE '\' OR LOWER(COALESCE(description,'')) LIKE %s ESCAPE '\')`, placeholder, placeholder))
	}

	limit, offset := filter.page()
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC, id DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, update StatusUpdate) error {
	const query = `
        UPDATE tickets SET status=$1, updated_at=$2, last_updated_by=$3,
            support_feedback=COALESCE($4, support_feedback),
            internal_notes=COALESCE($5, internal_notes),
            version=version+1
        WHERE id=$6 AND version=$7`
	return r.conditionalExec(ctx, update.TicketID, query,
		update.Status,
		update.UpdatedAt,
		update.UpdatedBy,
		update.SupportFeedback,
		update.InternalNotes,
		update.TicketID,
		update.Version,
	)
}

func (r *ticketRepository) UpdateFeedback(ctx context.Context, update FeedbackUpdate) error {
	const query = `
        UPDATE tickets SET feedback=$1, updated_at=$2, last_updated_by=$3, version=version+1
        WHERE id=$4 AND version=$5`
	return r.conditionalExec(ctx, update.TicketID, query,
		update.Feedback,
		update.UpdatedAt,
		update.UpdatedBy,
		update.TicketID,
		update.Version,
	)
}

func (r *ticketRepository) UpdateAssignee(ctx context.Context, update AssigneeUpdate) error {
	const query = `
        UPDATE tickets SET assignee=$1, updated_at=$2, last_updated_by=$3, version=version+1
        WHERE id=$4 AND version=$5`
	return r.conditionalExec(ctx, update.TicketID, query,
		update.Assignee,
		update.UpdatedAt,
		update.UpdatedBy,
		update.TicketID,
		update.Version,
	)
}

func (r *ticketRepository) Delete(ctx context.Context, id int64, version int) error {
	return r.conditionalExec(ctx, id, `DELETE FROM tickets WHERE id=$1 AND version=$2`, id, version)
}

func (r *ticketRepository) Stats(ctx context.Context) (TicketStats, error) {
	const query = `
        SELECT COUNT(*) FILTER (WHERE status IN ('New','InProgress')),
               COUNT(*) FILTER (WHERE status = 'Resolved'),
               COALESCE(AVG(EXTRACT(EPOCH FROM (updated_at - created_at))) FILTER (WHERE status = 'Resolved'), 0)
        FROM tickets`
	var (
		stats      TicketStats
		avgSeconds float64
	)
	if err := r.pool.QueryRow(ctx, query).Scan(&stats.Open, &stats.Resolved, &avgSeconds); err != nil {
		return TicketStats{}, err
	}
	stats.AverageResolution = time.Duration(avgSeconds * float64(time.Second))
	return stats, nil
}

// conditionalExec runs a version-guarded update and tells a missing ticket
// apart from a stale version.
func (r *ticketRepository) conditionalExec(ctx context.Context, id int64, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrStaleTicket
	}
	return pgx.ErrNoRows
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket      domain.Ticket
		description *string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&description,
		&ticket.Priority,
		&ticket.Category,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.CreatedBy,
		&ticket.LastUpdatedBy,
		&ticket.Assignee,
		&ticket.Feedback,
		&ticket.SupportFeedback,
		&ticket.InternalNotes,
		&ticket.Sentiment,
		&ticket.Version,
	); err != nil {
		return nil, err
	}
	if description != nil {
		ticket.Description = *description
	}
	return &ticket, nil
}

func inClause[T ~string](column string, values []T, args *[]any) string {
	placeholders := make([]string, len(values))
	for i, v := range values {
		*args = append(*args, string(v))
		placeholders[i] = fmt.Sprintf("$%d", len(*args))
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ","))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
