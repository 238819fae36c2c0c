package handler

import (
	"context"

	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	"github.com/Astemirdum/book-exchange/exchange/internal/service"
	"github.com/google/uuid"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type UserService interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
}

type BookService interface {
	CreateBook(ctx context.Context, userID uuid.UUID, req model.CreateBookRequest) (model.Book, error)
	ListBooks(ctx context.Context, filter model.BookFilter) (model.ListBooks, error)
	MyBooks(ctx context.Context, userID uuid.UUID) ([]model.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (model.Book, error)
	DeleteBook(ctx context.Context, userID, id uuid.UUID) error
}

type RequestService interface {
	CreateRequest(ctx context.Context, userID, bookID uuid.UUID) (model.Request, error)
	ListRequests(ctx context.Context, userID uuid.UUID) ([]model.RequestView, error)
	Dashboard(ctx context.Context, userID uuid.UUID) (model.Dashboard, error)
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.RequestStatus) (model.Request, error)
	Deliver(ctx context.Context, userID, id uuid.UUID) (model.Request, error)
	Contact(ctx context.Context, userID, id uuid.UUID) (model.ContactInfo, error)
	SendMessage(ctx context.Context, userID, id uuid.UUID, body string) (model.Message, error)
	ListMessages(ctx context.Context, userID, id uuid.UUID) ([]model.Message, error)
	ListEvents(ctx context.Context, userID, id uuid.UUID) ([]model.RequestEvent, error)
}

type EventSink interface {
	SaveEvent(ctx context.Context, event model.RequestEvent) error
}

var (
	_ UserService    = (*service.Service)(nil)
	_ BookService    = (*service.Service)(nil)
	_ RequestService = (*service.Service)(nil)
	_ EventSink      = (*service.Service)(nil)
)
