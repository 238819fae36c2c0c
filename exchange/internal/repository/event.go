package repository

import (
	"context"
	"fmt"

	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// PgxQuerier is the subset of *pgxpool.Pool the event store needs.
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type eventRepository struct {
	db  PgxQuerier
	log *zap.Logger
}

func NewEventRepository(db PgxQuerier, log *zap.Logger) *eventRepository {
	return &eventRepository{
		db:  db,
		log: log.Named("events"),
	}
}

func (r *eventRepository) SaveEvent(ctx context.Context, event model.RequestEvent) error {
	const q = `insert into request_events (request_id, book_id, actor_id, event_type, "timestamp")
	values (@request_id, @book_id, @actor_id, @event_type, @timestamp)`
	args := pgx.NamedArgs{
		"request_id": event.RequestID,
		"book_id":    event.BookID,
		"actor_id":   event.ActorID,
		"event_type": string(event.EventType),
		"timestamp":  event.Timestamp,
	}
	_, err := r.db.Exec(ctx, q, args)
	return err
}

func (r *eventRepository) ListEvents(ctx context.Context, requestID uuid.UUID) ([]model.RequestEvent, error) {
	const q = `
	select request_id, book_id, actor_id, event_type, "timestamp"
	from request_events
	where request_id = @request_id
	order by "timestamp", id`
	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"request_id": requestID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.RequestEvent])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return events, nil
}
