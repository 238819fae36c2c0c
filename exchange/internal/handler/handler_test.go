package handler_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Astemirdum/book-exchange/exchange/internal/errs"
	"github.com/Astemirdum/book-exchange/exchange/internal/handler"
	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	"github.com/Astemirdum/book-exchange/pkg/auth"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	service_mocks "github.com/Astemirdum/book-exchange/exchange/internal/handler/mocks"
)

type services struct {
	users    *service_mocks.MockUserService
	books    *service_mocks.MockBookService
	requests *service_mocks.MockRequestService
}

type response struct {
	expectedCode int
	expectedBody string
}

var (
	issuer    = auth.NewIssuer(auth.Config{Secret: "test", TTL: time.Hour})
	caller    = auth.User{ID: uuid.MustParse("6b1e6a4a-4e7b-4f61-9a3c-3c2f7c1a0a01"), Username: "reader"}
	otherUser = uuid.MustParse("0f4c7d2e-98b1-4d0c-8a53-7c3c2f1e9b02")
	bookID    = uuid.MustParse("2a9d1c36-5b7e-4f0a-b8c4-1e6f3d2a7c03")
	reqID     = uuid.MustParse("9c8b7a65-4d3e-4f21-a0b9-8c7d6e5f4a04")
	createdAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
)

func newRouter(t *testing.T) (*echo.Echo, services) {
	t.Helper()
	c := gomock.NewController(t)
	s := services{
		users:    service_mocks.NewMockUserService(c),
		books:    service_mocks.NewMockBookService(c),
		requests: service_mocks.NewMockRequestService(c),
	}
	h := handler.New(s.users, s.books, s.requests, issuer, zap.NewExample().Named("test"))
	return h.NewRouter(), s
}

func bearer(t *testing.T) string {
	t.Helper()
	token, _, err := issuer.Issue(caller)
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(t *testing.T, e *echo.Echo, method, target, body string, authorized bool) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody io.Reader = http.NoBody
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, reqBody)
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if authorized {
		r.Header.Set("Authorization", bearer(t))
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)
	return w
}

func requestJSON(status model.RequestStatus, delivered bool) string {
	return fmt.Sprintf(`{"id":"%s","bookId":"%s","requesterId":"%s","ownerId":"%s","status":"%s","isDelivered":%v,"createdAt":"2024-05-01T10:00:00Z"}`,
		reqID, bookID, caller.ID, otherUser, status, delivered)
}

func request(status model.RequestStatus, delivered bool) model.Request {
	return model.Request{
		ID:          reqID,
		BookID:      bookID,
		RequesterID: caller.ID,
		OwnerID:     otherUser,
		Status:      status,
		IsDelivered: delivered,
		CreatedAt:   createdAt,
	}
}

func TestHandler_CreateRequest(t *testing.T) {
	t.Parallel()
	type mockBehavior func(s services)

	var tests = []struct {
		name         string
		body         string
		authorized   bool
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:       "ok",
			body:       fmt.Sprintf(`{"bookId":"%s"}`, bookID),
			authorized: true,
			mockBehavior: func(s services) {
				s.requests.EXPECT().CreateRequest(gomock.Any(), caller.ID, bookID).
					Return(request(model.StatusPending, false), nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: requestJSON(model.StatusPending, false),
			},
		},
		{
			name:         "err. no token",
			body:         fmt.Sprintf(`{"bookId":"%s"}`, bookID),
			mockBehavior: func(s services) {},
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"No Authorization Header"}`,
			},
		},
		{
			name:         "err. book id required",
			body:         `{}`,
			authorized:   true,
			mockBehavior: func(s services) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Key: 'CreateRequest.BookID' Error:Field validation for 'BookID' failed on the 'required' tag"}`,
			},
		},
		{
			name:       "err. own book",
			body:       fmt.Sprintf(`{"bookId":"%s"}`, bookID),
			authorized: true,
			mockBehavior: func(s services) {
				s.requests.EXPECT().CreateRequest(gomock.Any(), caller.ID, bookID).Return(model.Request{}, errs.ErrOwnBook)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"you cannot request your own book"}`,
			},
		},
		{
			name:       "err. duplicate",
			body:       fmt.Sprintf(`{"bookId":"%s"}`, bookID),
			authorized: true,
			mockBehavior: func(s services) {
				s.requests.EXPECT().CreateRequest(gomock.Any(), caller.ID, bookID).Return(model.Request{}, errs.ErrDuplicateRequest)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"you have already requested this book"}`,
			},
		},
		{
			name:       "err. book missing",
			body:       fmt.Sprintf(`{"bookId":"%s"}`, bookID),
			authorized: true,
			mockBehavior: func(s services) {
				s.requests.EXPECT().CreateRequest(gomock.Any(), caller.ID, bookID).Return(model.Request{}, errs.ErrBookNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"book not found"}`,
			},
		},
		{
			name:       "err. internal",
			body:       fmt.Sprintf(`{"bookId":"%s"}`, bookID),
			authorized: true,
			mockBehavior: func(s services) {
				s.requests.EXPECT().CreateRequest(gomock.Any(), caller.ID, bookID).Return(model.Request{}, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"internal server error"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, s := newRouter(t)
			tt.mockBehavior(s)

			w := serve(t, e, http.MethodPost, "/api/requests", tt.body, tt.authorized)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_UpdateStatus(t *testing.T) {
	t.Parallel()
	type mockBehavior func(s services)

	var tests = []struct {
		name         string
		id           string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			id:   reqID.String(),
			body: `{"status":"accepted"}`,
			mockBehavior: func(s services) {
				s.requests.EXPECT().UpdateStatus(gomock.Any(), caller.ID, reqID, model.StatusAccepted).
					Return(request(model.StatusAccepted, false), nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: requestJSON(model.StatusAccepted, false),
			},
		},
		{
			name:         "err. pending is not a decision",
			id:           reqID.String(),
			body:         `{"status":"pending"}`,
			mockBehavior: func(s services) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Key: 'UpdateStatusRequest.Status' Error:Field validation for 'Status' failed on the 'oneof' tag"}`,
			},
		},
		{
			name:         "err. bad id",
			id:           "42",
			body:         `{"status":"accepted"}`,
			mockBehavior: func(s services) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"id is invalid"}`,
			},
		},
		{
			name: "err. not owner",
			id:   reqID.String(),
			body: `{"status":"rejected"}`,
			mockBehavior: func(s services) {
				s.requests.EXPECT().UpdateStatus(gomock.Any(), caller.ID, reqID, model.StatusRejected).
					Return(model.Request{}, errs.ErrForbidden)
			},
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"message":"user not authorized"}`,
			},
		},
		{
			name: "err. already decided",
			id:   reqID.String(),
			body: `{"status":"accepted"}`,
			mockBehavior: func(s services) {
				s.requests.EXPECT().UpdateStatus(gomock.Any(), caller.ID, reqID, model.StatusAccepted).
					Return(model.Request{}, errs.ErrAlreadyDecided)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"request status can no longer be changed"}`,
			},
		},
		{
			name: "err. not found",
			id:   reqID.String(),
			body: `{"status":"accepted"}`,
			mockBehavior: func(s services) {
				s.requests.EXPECT().UpdateStatus(gomock.Any(), caller.ID, reqID, model.StatusAccepted).
					Return(model.Request{}, errs.ErrRequestNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"request not found"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, s := newRouter(t)
			tt.mockBehavior(s)

			w := serve(t, e, http.MethodPut, "/api/requests/"+tt.id, tt.body, true)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Deliver(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name     string
		ret      model.Request
		err      error
		response response
	}{
		{
			name:     "ok",
			ret:      request(model.StatusAccepted, true),
			response: response{http.StatusOK, requestJSON(model.StatusAccepted, true)},
		},
		{
			name:     "err. not owner",
			err:      errs.ErrForbidden,
			response: response{http.StatusForbidden, `{"message":"user not authorized"}`},
		},
		{
			name:     "err. not accepted",
			err:      errs.ErrNotAccepted,
			response: response{http.StatusBadRequest, `{"message":"cannot deliver a request that is not accepted"}`},
		},
		{
			name:     "err. twice",
			err:      errs.ErrAlreadyDelivered,
			response: response{http.StatusBadRequest, `{"message":"this request has already been marked as delivered"}`},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, s := newRouter(t)
			s.requests.EXPECT().Deliver(gomock.Any(), caller.ID, reqID).Return(tt.ret, tt.err)

			w := serve(t, e, http.MethodPost, "/api/requests/"+reqID.String()+"/deliver", "", true)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Contact(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		e, s := newRouter(t)
		s.requests.EXPECT().Contact(gomock.Any(), caller.ID, reqID).Return(model.ContactInfo{
			Owner:     model.Contact{ID: otherUser, Username: "owner", Email: "owner@example.com", Phone: "111"},
			Requester: model.Contact{ID: caller.ID, Username: "reader", Email: "reader@example.com", Phone: "222"},
		}, nil)

		w := serve(t, e, http.MethodGet, "/api/requests/"+reqID.String()+"/contact", "", true)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, fmt.Sprintf(
			`{"owner":{"id":"%s","username":"owner","email":"owner@example.com","phone":"111"},"requester":{"id":"%s","username":"reader","email":"reader@example.com","phone":"222"}}`,
			otherUser, caller.ID), strings.Trim(w.Body.String(), "\n"))
	})

	t.Run("err. denied", func(t *testing.T) {
		t.Parallel()
		e, s := newRouter(t)
		s.requests.EXPECT().Contact(gomock.Any(), caller.ID, reqID).Return(model.ContactInfo{}, errs.ErrContactDenied)

		w := serve(t, e, http.MethodGet, "/api/requests/"+reqID.String()+"/contact", "", true)

		require.Equal(t, http.StatusForbidden, w.Code)
		require.Equal(t, `{"message":"access denied or request not accepted"}`, strings.Trim(w.Body.String(), "\n"))
	})
}

func TestHandler_Dashboard(t *testing.T) {
	t.Parallel()
	e, s := newRouter(t)
	view := model.RequestView{
		ID:        reqID,
		Book:      model.BookRef{ID: bookID, Title: "Dune"},
		Requester: model.UserRef{ID: otherUser, Username: "owner"},
		Owner:     model.UserRef{ID: caller.ID, Username: "reader"},
		Status:    model.StatusAccepted,
		CreatedAt: createdAt,
	}
	s.requests.EXPECT().Dashboard(gomock.Any(), caller.ID).Return(model.Dashboard{
		Incoming: []model.RequestCard{{
			RequestView: view,
			Role:        model.RoleOwner,
			Actions: []model.Action{
				{Name: model.ActionDeliver, Confirm: true},
				{Name: model.ActionContact},
				{Name: model.ActionChat},
			},
		}},
		Outgoing: []model.RequestCard{},
	}, nil)

	w := serve(t, e, http.MethodGet, "/api/requests/dashboard", "", true)

	require.Equal(t, http.StatusOK, w.Code)
	body := strings.Trim(w.Body.String(), "\n")
	require.Contains(t, body, `"role":"owner","actions":[{"name":"deliver","confirm":true},{"name":"contact"},{"name":"chat"}]`)
	require.Contains(t, body, `"book":{"id":"`+bookID.String()+`","title":"Dune"}`)
	require.True(t, strings.HasSuffix(body, `"outgoing":[]}`))
}

func TestHandler_ListBooks(t *testing.T) {
	t.Parallel()

	t.Run("ok. public", func(t *testing.T) {
		t.Parallel()
		e, s := newRouter(t)
		s.books.EXPECT().ListBooks(gomock.Any(), model.BookFilter{City: "pune", Page: 1, Size: 10}).
			Return(model.ListBooks{Paging: model.Paging{Page: 1, PageSize: 10}, Items: []model.BookListing{}}, nil)

		w := serve(t, e, http.MethodGet, "/api/books?city=pune&page=1&size=10", "", false)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, `{"page":1,"pageSize":10,"totalElements":0,"items":[]}`, strings.Trim(w.Body.String(), "\n"))
	})

	t.Run("err. page", func(t *testing.T) {
		t.Parallel()
		e, _ := newRouter(t)

		w := serve(t, e, http.MethodGet, "/api/books?page=first", "", false)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, `{"message":"page is invalid"}`, strings.Trim(w.Body.String(), "\n"))
	})
}

func TestHandler_DeleteBook(t *testing.T) {
	t.Parallel()
	e, s := newRouter(t)
	gomock.InOrder(
		s.books.EXPECT().DeleteBook(gomock.Any(), caller.ID, bookID).Return(nil),
		s.books.EXPECT().DeleteBook(gomock.Any(), caller.ID, bookID).Return(errs.ErrForbidden),
	)

	w := serve(t, e, http.MethodDelete, "/api/books/"+bookID.String(), "", true)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = serve(t, e, http.MethodDelete, "/api/books/"+bookID.String(), "", true)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_Login(t *testing.T) {
	t.Parallel()
	e, s := newRouter(t)
	s.users.EXPECT().Login(gomock.Any(), model.LoginRequest{Email: "reader@example.com", Password: "nope"}).
		Return(model.AuthResponse{}, errs.ErrInvalidCredential)

	w := serve(t, e, http.MethodPost, "/api/auth/login", `{"email":"reader@example.com","password":"nope"}`, false)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, `{"message":"invalid credentials"}`, strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()
	e, _ := newRouter(t)

	w := serve(t, e, http.MethodGet, "/manage/health", "", false)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
}

func TestHandler_Routing(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name     string
		method   string
		target   string
		response response
	}{
		{
			name:     "unknown api path",
			method:   http.MethodGet,
			target:   "/api/nope",
			response: response{http.StatusNotFound, `{"message":"Not Found"}`},
		},
		{
			name:     "unknown nested api path",
			method:   http.MethodPost,
			target:   "/api/requests/" + reqID.String() + "/nope",
			response: response{http.StatusNotFound, `{"message":"Not Found"}`},
		},
		{
			name:     "known path still needs token",
			method:   http.MethodGet,
			target:   "/api/requests/dashboard",
			response: response{http.StatusUnauthorized, `{"message":"No Authorization Header"}`},
		},
		{
			name:     "delete book needs token",
			method:   http.MethodDelete,
			target:   "/api/books/" + reqID.String(),
			response: response{http.StatusUnauthorized, `{"message":"No Authorization Header"}`},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			e, _ := newRouter(t)

			w := serve(t, e, test.method, test.target, "", false)

			require.Equal(t, test.response.expectedCode, w.Code)
			require.Equal(t, test.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
