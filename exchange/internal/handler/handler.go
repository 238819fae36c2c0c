package handler

import (
	"net/http"
	"strconv"

	"github.com/Astemirdum/book-exchange/exchange/internal/errs"
	"github.com/Astemirdum/book-exchange/pkg/auth"
	"github.com/Astemirdum/book-exchange/pkg/metrics"
	md "github.com/Astemirdum/book-exchange/pkg/middleware"
	"github.com/Astemirdum/book-exchange/pkg/validate"
	_ "github.com/Astemirdum/book-exchange/swagger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	userSvc    UserService
	bookSvc    BookService
	requestSvc RequestService
	tokens     md.TokenParser
	log        *zap.Logger
}

func New(userSvc UserService, bookSvc BookService, requestSvc RequestService, tokens md.TokenParser, log *zap.Logger) *Handler {
	return &Handler{
		userSvc:    userSvc,
		bookSvc:    bookSvc,
		requestSvc: requestSvc,
		tokens:     tokens,
		log:        log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, md.AuthorizationHeader},
		AllowCredentials: true,
	}))
	e.Use(metrics.Middleware())

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		md.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	api.GET("/books", h.ListBooks)
	api.GET("/books/:id", h.GetBook)

	// per-route so unknown /api paths still 404 instead of 401
	jwt := md.JwtAuthentication(h.tokens)

	api.POST("/books", h.CreateBook, jwt)
	api.GET("/books/my", h.MyBooks, jwt)
	api.DELETE("/books/:id", h.DeleteBook, jwt)

	api.POST("/requests", h.CreateRequest, jwt)
	api.GET("/requests", h.ListRequests, jwt)
	api.GET("/requests/dashboard", h.Dashboard, jwt)
	api.PUT("/requests/:id", h.UpdateStatus, jwt)
	api.POST("/requests/:id/deliver", h.Deliver, jwt)
	api.GET("/requests/:id/contact", h.Contact, jwt)
	api.GET("/requests/:id/messages", h.ListMessages, jwt)
	api.POST("/requests/:id/messages", h.SendMessage, jwt)
	api.GET("/requests/:id/events", h.ListEvents, jwt)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// errorResponse maps domain errors to HTTP codes. Anything unknown is logged and hidden.
func (h *Handler) errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound),
		errors.Is(err, errs.ErrBookNotFound),
		errors.Is(err, errs.ErrRequestNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrForbidden),
		errors.Is(err, errs.ErrContactDenied):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrInvalidCredential):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, errs.ErrOwnBook),
		errors.Is(err, errs.ErrBookUnavailable),
		errors.Is(err, errs.ErrDuplicateRequest),
		errors.Is(err, errs.ErrAlreadyDecided),
		errors.Is(err, errs.ErrInvalidStatus),
		errors.Is(err, errs.ErrNotAccepted),
		errors.Is(err, errs.ErrAlreadyDelivered),
		errors.Is(err, errs.ErrUserTaken),
		errors.Is(err, errs.ErrPriceRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.log.Error("internal error",
		zap.String("path", c.Path()),
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

func currentUser(c echo.Context) (uuid.UUID, error) {
	u, err := auth.UserFromContext(c.Request().Context())
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return u.ID, nil
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}
	return id, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	param := c.QueryParam(name)
	if param == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(param)
	if err != nil || v < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" is invalid")
	}
	return v, nil
}
