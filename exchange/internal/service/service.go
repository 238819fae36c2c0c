package service

import (
	"context"
	"time"

	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	"github.com/Astemirdum/book-exchange/exchange/internal/repository"
	"github.com/Astemirdum/book-exchange/pkg/auth"
	"github.com/Astemirdum/book-exchange/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

// Publisher ships request lifecycle events to the audit trail.
type Publisher interface {
	Publish(ctx context.Context, event model.RequestEvent) error
}

type Service struct {
	log    *zap.Logger
	repo   repository.Repository
	events repository.EventRepository
	pub    Publisher
	issuer *auth.Issuer
	now    func() time.Time
}

func NewService(
	repo repository.Repository,
	events repository.EventRepository,
	pub Publisher,
	issuer *auth.Issuer,
	log *zap.Logger,
) *Service {
	return &Service{
		log:    log.Named("service"),
		repo:   repo,
		events: events,
		pub:    pub,
		issuer: issuer,
		now:    time.Now,
	}
}

// emit never fails the caller: the lifecycle change is already committed.
func (s *Service) emit(ctx context.Context, req model.Request, actorID uuid.UUID, typ model.EventType) {
	event := model.RequestEvent{
		RequestID: req.ID,
		BookID:    req.BookID,
		ActorID:   actorID,
		EventType: typ,
		Timestamp: s.now().UTC(),
	}
	if err := s.pub.Publish(ctx, event); err != nil {
		s.log.Warn("publish request event",
			zap.String("event", string(typ)),
			zap.Stringer("requestID", req.ID),
			zap.Error(err))
		return
	}
	metrics.RecordRequestEvent(string(typ))
}
