package service

import (
	"context"

	"github.com/Astemirdum/book-exchange/exchange/internal/errs"
	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func (s *Service) CreateRequest(ctx context.Context, userID, bookID uuid.UUID) (model.Request, error) {
	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return model.Request{}, err
	}
	if book.UserID == userID {
		return model.Request{}, errs.ErrOwnBook
	}
	if book.Status != model.BookStatusAvailable {
		return model.Request{}, errs.ErrBookUnavailable
	}

	_, err = s.repo.FindRequest(ctx, bookID, userID)
	switch {
	case err == nil:
		return model.Request{}, errs.ErrDuplicateRequest
	case !errors.Is(err, errs.ErrRequestNotFound):
		return model.Request{}, err
	}

	// the unique index still rejects a concurrent duplicate
	req, err := s.repo.CreateRequest(ctx, model.Request{
		BookID:      bookID,
		RequesterID: userID,
		OwnerID:     book.UserID,
	})
	if err != nil {
		return model.Request{}, err
	}
	s.emit(ctx, req, userID, model.EventCreated)
	return req, nil
}

func (s *Service) ListRequests(ctx context.Context, userID uuid.UUID) ([]model.RequestView, error) {
	return s.repo.ListRequests(ctx, userID)
}

// UpdateStatus records the owner's decision on a pending request.
func (s *Service) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.RequestStatus) (model.Request, error) {
	var event model.EventType
	switch status {
	case model.StatusAccepted:
		event = model.EventAccepted
	case model.StatusRejected:
		event = model.EventRejected
	default:
		return model.Request{}, errs.ErrInvalidStatus
	}

	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return model.Request{}, err
	}
	if req.OwnerID != userID {
		return model.Request{}, errs.ErrForbidden
	}
	if req.Status != model.StatusPending {
		return model.Request{}, errs.ErrAlreadyDecided
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return model.Request{}, err
	}
	s.emit(ctx, updated, userID, event)
	return updated, nil
}

// Deliver confirms hand-over of an accepted request. It can happen once and
// takes the book out of the browse listing.
func (s *Service) Deliver(ctx context.Context, userID, id uuid.UUID) (model.Request, error) {
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return model.Request{}, err
	}
	if req.OwnerID != userID {
		return model.Request{}, errs.ErrForbidden
	}
	if req.Status != model.StatusAccepted {
		return model.Request{}, errs.ErrNotAccepted
	}
	if req.IsDelivered {
		return model.Request{}, errs.ErrAlreadyDelivered
	}

	delivered, err := s.repo.MarkDelivered(ctx, id)
	if err != nil {
		return model.Request{}, err
	}
	s.emit(ctx, delivered, userID, model.EventDelivered)
	return delivered, nil
}

// acceptedParty gates contact details and chat.
func (s *Service) acceptedParty(ctx context.Context, userID, id uuid.UUID) (model.Request, error) {
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return model.Request{}, err
	}
	if req.Status != model.StatusAccepted || !req.IsParty(userID) {
		return model.Request{}, errs.ErrContactDenied
	}
	return req, nil
}

func (s *Service) Contact(ctx context.Context, userID, id uuid.UUID) (model.ContactInfo, error) {
	req, err := s.acceptedParty(ctx, userID, id)
	if err != nil {
		return model.ContactInfo{}, err
	}

	var owner, requester model.User
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		owner, err = s.repo.GetUser(gCtx, req.OwnerID)
		return err
	})
	g.Go(func() (err error) {
		requester, err = s.repo.GetUser(gCtx, req.RequesterID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("Contact", zap.Stringer("requestID", id), zap.Error(err))
		return model.ContactInfo{}, err
	}

	return model.ContactInfo{
		Owner:     contactOf(owner),
		Requester: contactOf(requester),
	}, nil
}

func contactOf(u model.User) model.Contact {
	return model.Contact{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
	}
}

func (s *Service) SendMessage(ctx context.Context, userID, id uuid.UUID, body string) (model.Message, error) {
	if _, err := s.acceptedParty(ctx, userID, id); err != nil {
		return model.Message{}, err
	}
	return s.repo.CreateMessage(ctx, model.Message{
		RequestID: id,
		SenderID:  userID,
		Body:      body,
	})
}

func (s *Service) ListMessages(ctx context.Context, userID, id uuid.UUID) ([]model.Message, error) {
	if _, err := s.acceptedParty(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, id)
}

func (s *Service) ListEvents(ctx context.Context, userID, id uuid.UUID) ([]model.RequestEvent, error) {
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsParty(userID) {
		return nil, errs.ErrForbidden
	}
	return s.events.ListEvents(ctx, id)
}

// SaveEvent persists an event delivered by the queue consumer.
func (s *Service) SaveEvent(ctx context.Context, event model.RequestEvent) error {
	return s.events.SaveEvent(ctx, event)
}
