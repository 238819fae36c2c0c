package repository

import (
	"context"
	"database/sql"

	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type Repository interface {
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (model.Book, error)
	ListBooks(ctx context.Context, filter model.BookFilter) (model.ListBooks, error)
	ListUserBooks(ctx context.Context, userID uuid.UUID) ([]model.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error

	CreateRequest(ctx context.Context, req model.Request) (model.Request, error)
	GetRequest(ctx context.Context, id uuid.UUID) (model.Request, error)
	FindRequest(ctx context.Context, bookID, requesterID uuid.UUID) (model.Request, error)
	ListRequests(ctx context.Context, userID uuid.UUID) ([]model.RequestView, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.RequestStatus) (model.Request, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) (model.Request, error)

	CreateMessage(ctx context.Context, msg model.Message) (model.Message, error)
	ListMessages(ctx context.Context, requestID uuid.UUID) ([]model.Message, error)
}

// EventRepository stores the request lifecycle audit trail.
type EventRepository interface {
	SaveEvent(ctx context.Context, event model.RequestEvent) error
	ListEvents(ctx context.Context, requestID uuid.UUID) ([]model.RequestEvent, error)
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	usersTableName    = `users`
	booksTableName    = `books`
	requestsTableName = `requests`
	messagesTableName = `messages`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func notFound(err, target error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return target
	}
	return err
}
