package service

import (
	"context"

	"github.com/Astemirdum/book-exchange/exchange/internal/errs"
	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	"github.com/google/uuid"
)

func (s *Service) CreateBook(ctx context.Context, userID uuid.UUID, req model.CreateBookRequest) (model.Book, error) {
	price := req.Price
	switch req.Type {
	case model.BookTypeSell:
		if price <= 0 {
			return model.Book{}, errs.ErrPriceRequired
		}
	case model.BookTypeLend:
		price = 0
	}
	return s.repo.CreateBook(ctx, model.Book{
		UserID:    userID,
		Title:     req.Title,
		Author:    req.Author,
		Condition: req.Condition,
		Type:      req.Type,
		Price:     price,
		City:      req.City,
		State:     req.State,
		ImageURL:  req.ImageURL,
	})
}

func (s *Service) ListBooks(ctx context.Context, filter model.BookFilter) (model.ListBooks, error) {
	return s.repo.ListBooks(ctx, filter)
}

func (s *Service) MyBooks(ctx context.Context, userID uuid.UUID) ([]model.Book, error) {
	return s.repo.ListUserBooks(ctx, userID)
}

func (s *Service) GetBook(ctx context.Context, id uuid.UUID) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) DeleteBook(ctx context.Context, userID, id uuid.UUID) error {
	book, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return err
	}
	if book.UserID != userID {
		return errs.ErrForbidden
	}
	return s.repo.DeleteBook(ctx, id)
}
