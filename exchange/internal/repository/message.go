package repository

import (
	"context"
	"strings"

	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var messageColumns = []string{"id", "request_id", "sender_id", "body", "created_at"}

func (r *repository) CreateMessage(ctx context.Context, msg model.Message) (model.Message, error) {
	query, args, err := qb.Insert(messagesTableName).
		Columns("request_id", "sender_id", "body").
		Values(msg.RequestID, msg.SenderID, msg.Body).
		Suffix("returning " + strings.Join(messageColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Message{}, err
	}

	var created model.Message
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		return model.Message{}, err
	}
	return created, nil
}

func (r *repository) ListMessages(ctx context.Context, requestID uuid.UUID) ([]model.Message, error) {
	query, args, err := qb.Select(messageColumns...).
		From(messagesTableName).
		Where(sq.Eq{"request_id": requestID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	msgs := make([]model.Message, 0)
	if err := r.db.SelectContext(ctx, &msgs, query, args...); err != nil {
		return nil, err
	}
	return msgs, nil
}
