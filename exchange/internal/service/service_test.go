package service

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/book-exchange/exchange/internal/errs"
	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	repo_mocks "github.com/Astemirdum/book-exchange/exchange/internal/repository/mocks"
	svc_mocks "github.com/Astemirdum/book-exchange/exchange/internal/service/mocks"
	"github.com/Astemirdum/book-exchange/pkg/auth"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type deps struct {
	repo   *repo_mocks.MockRepository
	events *repo_mocks.MockEventRepository
	pub    *svc_mocks.MockPublisher
}

func newTestService(t *testing.T) (*Service, deps) {
	t.Helper()
	c := gomock.NewController(t)
	d := deps{
		repo:   repo_mocks.NewMockRepository(c),
		events: repo_mocks.NewMockEventRepository(c),
		pub:    svc_mocks.NewMockPublisher(c),
	}
	issuer := auth.NewIssuer(auth.Config{Secret: "test", TTL: time.Hour})
	s := NewService(d.repo, d.events, d.pub, issuer, zap.NewNop())
	s.now = func() time.Time { return fixedNow }
	return s, d
}

func TestService_CreateRequest(t *testing.T) {
	t.Parallel()
	var (
		requester, owner = uuid.New(), uuid.New()
		bookID, reqID    = uuid.New(), uuid.New()
		available        = model.Book{ID: bookID, UserID: owner, Status: model.BookStatusAvailable}
		created          = model.Request{ID: reqID, BookID: bookID, RequesterID: requester, OwnerID: owner, Status: model.StatusPending}
	)
	type mockBehavior func(d deps)

	tests := []struct {
		name         string
		userID       uuid.UUID
		mockBehavior mockBehavior
		want         model.Request
		wantErr      error
	}{
		{
			name:   "ok",
			userID: requester,
			mockBehavior: func(d deps) {
				d.repo.EXPECT().GetBook(gomock.Any(), bookID).Return(available, nil)
				d.repo.EXPECT().FindRequest(gomock.Any(), bookID, requester).Return(model.Request{}, errs.ErrRequestNotFound)
				d.repo.EXPECT().CreateRequest(gomock.Any(), model.Request{BookID: bookID, RequesterID: requester, OwnerID: owner}).
					Return(created, nil)
				d.pub.EXPECT().Publish(gomock.Any(), model.RequestEvent{
					RequestID: reqID,
					BookID:    bookID,
					ActorID:   requester,
					EventType: model.EventCreated,
					Timestamp: fixedNow,
				}).Return(nil)
			},
			want: created,
		},
		{
			name:   "ok. publish failure is swallowed",
			userID: requester,
			mockBehavior: func(d deps) {
				d.repo.EXPECT().GetBook(gomock.Any(), bookID).Return(available, nil)
				d.repo.EXPECT().FindRequest(gomock.Any(), bookID, requester).Return(model.Request{}, errs.ErrRequestNotFound)
				d.repo.EXPECT().CreateRequest(gomock.Any(), gomock.Any()).Return(created, nil)
				d.pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
			},
			want: created,
		},
		{
			name:   "err. book missing",
			userID: requester,
			mockBehavior: func(d deps) {
				d.repo.EXPECT().GetBook(gomock.Any(), bookID).Return(model.Book{}, errs.ErrBookNotFound)
			},
			wantErr: errs.ErrBookNotFound,
		},
		{
			name:   "err. own book",
			userID: owner,
			mockBehavior: func(d deps) {
				d.repo.EXPECT().GetBook(gomock.Any(), bookID).Return(available, nil)
			},
			wantErr: errs.ErrOwnBook,
		},
		{
			name:   "err. exchanged book",
			userID: requester,
			mockBehavior: func(d deps) {
				book := available
				book.Status = model.BookStatusExchanged
				d.repo.EXPECT().GetBook(gomock.Any(), bookID).Return(book, nil)
			},
			wantErr: errs.ErrBookUnavailable,
		},
		{
			name:   "err. duplicate",
			userID: requester,
			mockBehavior: func(d deps) {
				d.repo.EXPECT().GetBook(gomock.Any(), bookID).Return(available, nil)
				d.repo.EXPECT().FindRequest(gomock.Any(), bookID, requester).
					Return(model.Request{ID: uuid.New(), Status: model.StatusRejected}, nil)
			},
			wantErr: errs.ErrDuplicateRequest,
		},
		{
			name:   "err. duplicate caught by index",
			userID: requester,
			mockBehavior: func(d deps) {
				d.repo.EXPECT().GetBook(gomock.Any(), bookID).Return(available, nil)
				d.repo.EXPECT().FindRequest(gomock.Any(), bookID, requester).Return(model.Request{}, errs.ErrRequestNotFound)
				d.repo.EXPECT().CreateRequest(gomock.Any(), gomock.Any()).Return(model.Request{}, errs.ErrDuplicateRequest)
			},
			wantErr: errs.ErrDuplicateRequest,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, d := newTestService(t)
			tt.mockBehavior(d)

			got, err := s.CreateRequest(context.Background(), tt.userID, bookID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestService_UpdateStatus(t *testing.T) {
	t.Parallel()
	var (
		owner, requester = uuid.New(), uuid.New()
		reqID, bookID    = uuid.New(), uuid.New()
		pending          = model.Request{ID: reqID, BookID: bookID, OwnerID: owner, RequesterID: requester, Status: model.StatusPending}
	)

	tests := []struct {
		name         string
		userID       uuid.UUID
		status       model.RequestStatus
		mockBehavior func(d deps)
		wantErr      error
	}{
		{
			name:   "ok. accepted",
			userID: owner,
			status: model.StatusAccepted,
			mockBehavior: func(d deps) {
				d.repo.EXPECT().GetRequest(gomock.Any(), reqID).Return(pending, nil)
				accepted := pending
				accepted.Status = model.StatusAccepted
				d.repo.EXPECT().UpdateStatus(gomock.Any(), reqID, model.StatusAccepted).Return(accepted, nil)
				d.pub.EXPECT().Publish(gomock.Any(), model.RequestEvent{
					RequestID: reqID, BookID: bookID, ActorID: owner, EventType: model.EventAccepted, Timestamp: fixedNow,
				}).Return(nil)
			},
		},
		{
			name:   "ok. rejected",
			userID: owner,
			status: model.StatusRejected,
			mockBehavior: func(d deps) {
				d.repo.EXPECT().GetRequest(gomock.Any(), reqID).Return(pending, nil)
				d.repo.EXPECT().UpdateStatus(gomock.Any(), reqID, model.StatusRejected).Return(pending, nil)
				d.pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:         "err. pending is not a decision",
			userID:       owner,
			status:       model.StatusPending,
			mockBehavior: func(d deps) {},
			wantErr:      errs.ErrInvalidStatus,
		},
		{
			name:   "err. requester cannot decide",
			userID: requester,
			status: model.StatusAccepted,
			mockBehavior: func(d deps) {
				d.repo.EXPECT().GetRequest(gomock.Any(), reqID).Return(pending, nil)
			},
			wantErr: errs.ErrForbidden,
		},
		{
			name:   "err. already decided",
			userID: owner,
			status: model.StatusAccepted,
			mockBehavior: func(d deps) {
				rejected := pending
				rejected.Status = model.StatusRejected
				d.repo.EXPECT().GetRequest(gomock.Any(), reqID).Return(rejected, nil)
			},
			wantErr: errs.ErrAlreadyDecided,
		},
		{
			name:   "err. not found",
			userID: owner,
			status: model.StatusAccepted,
			mockBehavior: func(d deps) {
				d.repo.EXPECT().GetRequest(gomock.Any(), reqID).Return(model.Request{}, errs.ErrRequestNotFound)
			},
			wantErr: errs.ErrRequestNotFound,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, d := newTestService(t)
			tt.mockBehavior(d)

			_, err := s.UpdateStatus(context.Background(), tt.userID, reqID, tt.status)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestService_Deliver(t *testing.T) {
	t.Parallel()
	var (
		owner, requester = uuid.New(), uuid.New()
		reqID, bookID    = uuid.New(), uuid.New()
		accepted         = model.Request{ID: reqID, BookID: bookID, OwnerID: owner, RequesterID: requester, Status: model.StatusAccepted}
	)
	with := func(status model.RequestStatus, delivered bool) model.Request {
		r := accepted
		r.Status = status
		r.IsDelivered = delivered
		return r
	}

	tests := []struct {
		name    string
		userID  uuid.UUID
		current model.Request
		wantErr error
	}{
		{name: "ok", userID: owner, current: accepted},
		{name: "err. requester", userID: requester, current: accepted, wantErr: errs.ErrForbidden},
		{name: "err. stranger", userID: uuid.New(), current: accepted, wantErr: errs.ErrForbidden},
		{name: "err. pending", userID: owner, current: with(model.StatusPending, false), wantErr: errs.ErrNotAccepted},
		{name: "err. rejected", userID: owner, current: with(model.StatusRejected, false), wantErr: errs.ErrNotAccepted},
		{name: "err. twice", userID: owner, current: with(model.StatusAccepted, true), wantErr: errs.ErrAlreadyDelivered},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, d := newTestService(t)
			d.repo.EXPECT().GetRequest(gomock.Any(), reqID).Return(tt.current, nil)
			if tt.wantErr == nil {
				d.repo.EXPECT().MarkDelivered(gomock.Any(), reqID).Return(with(model.StatusAccepted, true), nil)
				d.pub.EXPECT().Publish(gomock.Any(), model.RequestEvent{
					RequestID: reqID, BookID: bookID, ActorID: owner, EventType: model.EventDelivered, Timestamp: fixedNow,
				}).Return(nil)
			}

			got, err := s.Deliver(context.Background(), tt.userID, reqID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.True(t, got.IsDelivered)
			require.Equal(t, model.StatusAccepted, got.Status)
		})
	}
}

func TestService_Contact(t *testing.T) {
	t.Parallel()
	var (
		ownerUser     = model.User{ID: uuid.New(), Username: "owner", Email: "owner@example.com", Phone: "111"}
		requesterUser = model.User{ID: uuid.New(), Username: "reader", Email: "reader@example.com", Phone: "222"}
		reqID         = uuid.New()
		accepted      = model.Request{ID: reqID, OwnerID: ownerUser.ID, RequesterID: requesterUser.ID, Status: model.StatusAccepted}
		want          = model.ContactInfo{
			Owner:     model.Contact{ID: ownerUser.ID, Username: "owner", Email: "owner@example.com", Phone: "111"},
			Requester: model.Contact{ID: requesterUser.ID, Username: "reader", Email: "reader@example.com", Phone: "222"},
		}
	)

	tests := []struct {
		name    string
		userID  uuid.UUID
		current model.Request
		wantErr error
	}{
		{name: "ok. owner", userID: ownerUser.ID, current: accepted},
		{name: "ok. requester", userID: requesterUser.ID, current: accepted},
		{name: "err. stranger", userID: uuid.New(), current: accepted, wantErr: errs.ErrContactDenied},
		{
			name:    "err. pending",
			userID:  requesterUser.ID,
			current: model.Request{ID: reqID, OwnerID: ownerUser.ID, RequesterID: requesterUser.ID, Status: model.StatusPending},
			wantErr: errs.ErrContactDenied,
		},
		{
			name:    "err. rejected",
			userID:  ownerUser.ID,
			current: model.Request{ID: reqID, OwnerID: ownerUser.ID, RequesterID: requesterUser.ID, Status: model.StatusRejected},
			wantErr: errs.ErrContactDenied,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, d := newTestService(t)
			d.repo.EXPECT().GetRequest(gomock.Any(), reqID).Return(tt.current, nil)
			if tt.wantErr == nil {
				d.repo.EXPECT().GetUser(gomock.Any(), ownerUser.ID).Return(ownerUser, nil)
				d.repo.EXPECT().GetUser(gomock.Any(), requesterUser.ID).Return(requesterUser, nil)
			}

			got, err := s.Contact(context.Background(), tt.userID, reqID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestService_Messages(t *testing.T) {
	t.Parallel()
	var (
		owner, requester = uuid.New(), uuid.New()
		reqID            = uuid.New()
		accepted         = model.Request{ID: reqID, OwnerID: owner, RequesterID: requester, Status: model.StatusAccepted}
	)

	t.Run("send", func(t *testing.T) {
		t.Parallel()
		s, d := newTestService(t)
		msg := model.Message{RequestID: reqID, SenderID: requester, Body: "when can we meet?"}
		d.repo.EXPECT().GetRequest(gomock.Any(), reqID).Return(accepted, nil)
		d.repo.EXPECT().CreateMessage(gomock.Any(), msg).Return(msg, nil)

		got, err := s.SendMessage(context.Background(), requester, reqID, msg.Body)
		require.NoError(t, err)
		require.Equal(t, msg, got)
	})

	t.Run("stranger cannot read", func(t *testing.T) {
		t.Parallel()
		s, d := newTestService(t)
		d.repo.EXPECT().GetRequest(gomock.Any(), reqID).Return(accepted, nil)

		_, err := s.ListMessages(context.Background(), uuid.New(), reqID)
		require.ErrorIs(t, err, errs.ErrContactDenied)
	})
}

func TestService_ListEvents(t *testing.T) {
	t.Parallel()
	var (
		owner, requester = uuid.New(), uuid.New()
		reqID            = uuid.New()
		req              = model.Request{ID: reqID, OwnerID: owner, RequesterID: requester, Status: model.StatusPending}
		history          = []model.RequestEvent{{RequestID: reqID, ActorID: requester, EventType: model.EventCreated}}
	)

	s, d := newTestService(t)
	d.repo.EXPECT().GetRequest(gomock.Any(), reqID).Return(req, nil).Times(2)
	d.events.EXPECT().ListEvents(gomock.Any(), reqID).Return(history, nil)

	got, err := s.ListEvents(context.Background(), owner, reqID)
	require.NoError(t, err)
	require.Equal(t, history, got)

	_, err = s.ListEvents(context.Background(), uuid.New(), reqID)
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestService_CreateBook(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	t.Run("sell needs a price", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestService(t)
		_, err := s.CreateBook(context.Background(), userID, model.CreateBookRequest{Title: "Dune", Type: model.BookTypeSell})
		require.ErrorIs(t, err, errs.ErrPriceRequired)
	})

	t.Run("sell keeps a positive price", func(t *testing.T) {
		t.Parallel()
		s, d := newTestService(t)
		d.repo.EXPECT().CreateBook(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, b model.Book) (model.Book, error) {
				require.Equal(t, model.BookTypeSell, b.Type)
				require.Equal(t, 0.01, b.Price)
				b.ID = uuid.New()
				return b, nil
			})

		book, err := s.CreateBook(context.Background(), userID, model.CreateBookRequest{
			Title: "Dune", Author: "Frank Herbert", Type: model.BookTypeSell, Price: 0.01, City: "Pune", State: "MH",
		})
		require.NoError(t, err)
		require.Equal(t, 0.01, book.Price)
	})

	t.Run("lend drops the price", func(t *testing.T) {
		t.Parallel()
		s, d := newTestService(t)
		d.repo.EXPECT().CreateBook(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, b model.Book) (model.Book, error) {
				require.Equal(t, userID, b.UserID)
				require.Zero(t, b.Price)
				b.ID = uuid.New()
				b.Status = model.BookStatusAvailable
				return b, nil
			})

		book, err := s.CreateBook(context.Background(), userID, model.CreateBookRequest{
			Title: "Dune", Author: "Frank Herbert", Type: model.BookTypeLend, Price: 10, City: "Pune", State: "MH",
		})
		require.NoError(t, err)
		require.Equal(t, model.BookStatusAvailable, book.Status)
	})
}

func TestService_DeleteBook(t *testing.T) {
	t.Parallel()
	var (
		owner  = uuid.New()
		bookID = uuid.New()
	)

	s, d := newTestService(t)
	d.repo.EXPECT().GetBook(gomock.Any(), bookID).Return(model.Book{ID: bookID, UserID: owner}, nil).Times(2)
	d.repo.EXPECT().DeleteBook(gomock.Any(), bookID).Return(nil)

	require.ErrorIs(t, s.DeleteBook(context.Background(), uuid.New(), bookID), errs.ErrForbidden)
	require.NoError(t, s.DeleteBook(context.Background(), owner, bookID))
}

func TestService_Login(t *testing.T) {
	t.Parallel()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := model.User{ID: uuid.New(), Username: "reader", Email: "reader@example.com", PasswordHash: string(hash)}

	tests := []struct {
		name     string
		password string
		found    error
		wantErr  error
	}{
		{name: "ok", password: "secret1"},
		{name: "err. wrong password", password: "secret2", wantErr: errs.ErrInvalidCredential},
		{name: "err. unknown email", password: "secret1", found: errs.ErrNotFound, wantErr: errs.ErrInvalidCredential},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, d := newTestService(t)
			if tt.found != nil {
				d.repo.EXPECT().GetUserByEmail(gomock.Any(), user.Email).Return(model.User{}, tt.found)
			} else {
				d.repo.EXPECT().GetUserByEmail(gomock.Any(), user.Email).Return(user, nil)
			}

			resp, err := s.Login(context.Background(), model.LoginRequest{Email: user.Email, Password: tt.password})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, resp.AccessToken)
			require.Greater(t, resp.ExpiresIn, int64(0))

			parsed, err := s.issuer.Parse(resp.AccessToken)
			require.NoError(t, err)
			require.Equal(t, auth.User{ID: user.ID, Username: user.Username}, parsed)
		})
	}
}

func TestService_Register(t *testing.T) {
	t.Parallel()
	s, d := newTestService(t)
	d.repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u model.User) (model.User, error) {
			require.Equal(t, "reader", u.Username)
			require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
			u.ID = uuid.New()
			return u, nil
		})

	u, err := s.Register(context.Background(), model.RegisterRequest{
		Username: "reader", Email: "reader@example.com", Phone: "5550100", Password: "secret1",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, u.ID)
}
