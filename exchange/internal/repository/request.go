package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Astemirdum/book-exchange/exchange/internal/errs"
	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var requestColumns = []string{"id", "book_id", "requester_id", "owner_id", "status", "is_delivered", "created_at"}

func (r *repository) CreateRequest(ctx context.Context, req model.Request) (model.Request, error) {
	query, args, err := qb.Insert(requestsTableName).
		Columns("book_id", "requester_id", "owner_id", "status").
		Values(req.BookID, req.RequesterID, req.OwnerID, model.StatusPending).
		Suffix("returning " + strings.Join(requestColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Request{}, err
	}

	var created model.Request
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		if isUniqueViolation(err) {
			return model.Request{}, errs.ErrDuplicateRequest
		}
		r.log.Error("CreateRequest", zap.String("q", query), zap.Any("args", args))
		return model.Request{}, err
	}
	return created, nil
}

func (r *repository) GetRequest(ctx context.Context, id uuid.UUID) (model.Request, error) {
	return r.getRequest(ctx, sq.Eq{"id": id})
}

func (r *repository) FindRequest(ctx context.Context, bookID, requesterID uuid.UUID) (model.Request, error) {
	return r.getRequest(ctx, sq.Eq{"book_id": bookID, "requester_id": requesterID})
}

func (r *repository) getRequest(ctx context.Context, where sq.Eq) (model.Request, error) {
	query, args, err := qb.Select(requestColumns...).
		From(requestsTableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Request{}, err
	}

	var req model.Request
	if err := r.db.GetContext(ctx, &req, query, args...); err != nil {
		return model.Request{}, notFound(err, errs.ErrRequestNotFound)
	}
	return req, nil
}

// ListRequests returns requests where userID is either party, newest first.
func (r *repository) ListRequests(ctx context.Context, userID uuid.UUID) ([]model.RequestView, error) {
	query, args, err := qb.Select(
		"r.id", "r.status", "r.is_delivered", "r.created_at",
		`b.id as "book.id"`, `b.title as "book.title"`,
		`rq.id as "requester.id"`, `rq.username as "requester.username"`,
		`o.id as "owner.id"`, `o.username as "owner.username"`,
	).
		From(requestsTableName + " r").
		Join(fmt.Sprintf("%s b on b.id = r.book_id", booksTableName)).
		Join(fmt.Sprintf("%s rq on rq.id = r.requester_id", usersTableName)).
		Join(fmt.Sprintf("%s o on o.id = r.owner_id", usersTableName)).
		Where(sq.Or{sq.Eq{"r.requester_id": userID}, sq.Eq{"r.owner_id": userID}}).
		OrderBy("r.created_at desc").
		ToSql()
	if err != nil {
		return nil, err
	}

	views := make([]model.RequestView, 0)
	if err := r.db.SelectContext(ctx, &views, query, args...); err != nil {
		r.log.Error("ListRequests", zap.String("q", query), zap.Error(err))
		return nil, err
	}
	return views, nil
}

// UpdateStatus only touches a pending request. A request that exists but was
// already decided yields errs.ErrAlreadyDecided.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.RequestStatus) (model.Request, error) {
	query, args, err := qb.Update(requestsTableName).
		Set("status", status).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"status": model.StatusPending}).
		Suffix("returning " + strings.Join(requestColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Request{}, err
	}

	var req model.Request
	if err := r.db.GetContext(ctx, &req, query, args...); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return model.Request{}, err
		}
		if _, err := lookupRequest(ctx, r.db, id); err != nil {
			return model.Request{}, err
		}
		return model.Request{}, errs.ErrAlreadyDecided
	}
	return req, nil
}

// MarkDelivered flags the request delivered and takes its book out of circulation in one transaction.
func (r *repository) MarkDelivered(ctx context.Context, id uuid.UUID) (_ model.Request, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Request{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args, err := qb.Update(requestsTableName).
		Set("is_delivered", true).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"status": model.StatusAccepted, "is_delivered": false}).
		Suffix("returning " + strings.Join(requestColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Request{}, err
	}
	var req model.Request
	if err = tx.GetContext(ctx, &req, query, args...); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return model.Request{}, err
		}
		var current model.Request
		if current, err = lookupRequest(ctx, tx, id); err != nil {
			return model.Request{}, err
		}
		if current.Status != model.StatusAccepted {
			err = errs.ErrNotAccepted
		} else {
			err = errs.ErrAlreadyDelivered
		}
		return model.Request{}, err
	}

	query, args, err = qb.Update(booksTableName).
		Set("status", model.BookStatusExchanged).
		Where(sq.Eq{"id": req.BookID}).
		ToSql()
	if err != nil {
		return model.Request{}, err
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return model.Request{}, err
	}

	if err = tx.Commit(); err != nil {
		return model.Request{}, err
	}
	return req, nil
}

func lookupRequest(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (model.Request, error) {
	query, args, err := qb.Select(requestColumns...).
		From(requestsTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Request{}, err
	}

	var req model.Request
	if err := sqlx.GetContext(ctx, q, &req, query, args...); err != nil {
		return model.Request{}, notFound(err, errs.ErrRequestNotFound)
	}
	return req, nil
}
