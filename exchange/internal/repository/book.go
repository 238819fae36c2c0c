package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Astemirdum/book-exchange/exchange/internal/errs"
	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var bookColumns = []string{
	"id", "user_id", "title", "author", "condition", "type",
	"price", "city", "state", "image_url", "status", "created_at",
}

func prefixed(prefix string, cols []string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, prefix+"."+c)
	}
	return out
}

func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("user_id", "title", "author", "condition", "type", "price", "city", "state", "image_url").
		Values(book.UserID, book.Title, book.Author, book.Condition, book.Type, book.Price, book.City, book.State, book.ImageURL).
		Suffix("returning " + strings.Join(bookColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var created model.Book
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		r.log.Error("CreateBook", zap.String("q", query), zap.Any("args", args))
		return model.Book{}, err
	}
	return created, nil
}

func (r *repository) GetBook(ctx context.Context, id uuid.UUID) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		return model.Book{}, notFound(err, errs.ErrBookNotFound)
	}
	return book, nil
}

// ListBooks returns available books only; city and state match as case-insensitive substrings.
func (r *repository) ListBooks(ctx context.Context, filter model.BookFilter) (model.ListBooks, error) {
	where := sq.And{sq.Eq{"b.status": model.BookStatusAvailable}}
	if filter.City != "" {
		where = append(where, sq.ILike{"b.city": "%" + filter.City + "%"})
	}
	if filter.State != "" {
		where = append(where, sq.ILike{"b.state": "%" + filter.State + "%"})
	}

	countQuery, countArgs, err := qb.Select("count(*)").
		From(booksTableName + " b").
		Where(where).
		ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return model.ListBooks{}, err
	}

	q := qb.Select(append(prefixed("b", bookColumns), "u.username as owner_username")...).
		From(booksTableName + " b").
		Join(fmt.Sprintf("%s u on u.id = b.user_id", usersTableName)).
		Where(where).
		OrderBy("b.created_at desc")
	if filter.Page != 0 && filter.Size != 0 {
		q = q.Limit(uint64(filter.Size)).Offset(uint64((filter.Page - 1) * filter.Size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	books := make([]model.BookListing, 0)
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return model.ListBooks{}, err
	}

	return model.ListBooks{
		Paging: model.Paging{
			Page:          filter.Page,
			PageSize:      filter.Size,
			TotalElements: total,
		},
		Items: books,
	}, nil
}

func (r *repository) ListUserBooks(ctx context.Context, userID uuid.UUID) ([]model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, err
	}

	books := make([]model.Book, 0)
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *repository) DeleteBook(ctx context.Context, id uuid.UUID) error {
	query, args, err := qb.Delete(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.ErrBookNotFound
	}
	return nil
}
