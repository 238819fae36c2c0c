package handler

import (
	"net/http"

	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// callerAndRequest resolves the authenticated user and the :id path param.
func callerAndRequest(c echo.Context) (userID, id uuid.UUID, err error) {
	if userID, err = currentUser(c); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if id, err = pathID(c); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, id, nil
}

// CreateRequest
// @Summary      Request a book
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      model.CreateRequest  true  "Book to request"
// @Success      201      {object}  model.Request
// @Failure      400      {object}  echo.HTTPError
// @Failure      404      {object}  echo.HTTPError
// @Router       /api/requests [post]
func (h *Handler) CreateRequest(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req model.CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.requestSvc.CreateRequest(c.Request().Context(), userID, req.BookID)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// ListRequests
// @Summary      Requests where the caller is owner or requester
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  model.RequestView
// @Router       /api/requests [get]
func (h *Handler) ListRequests(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	views, err := h.requestSvc.ListRequests(c.Request().Context(), userID)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, views)
}

// Dashboard
// @Summary      Incoming and outgoing requests with allowed actions
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  model.Dashboard
// @Router       /api/requests/dashboard [get]
func (h *Handler) Dashboard(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	d, err := h.requestSvc.Dashboard(c.Request().Context(), userID)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// UpdateStatus
// @Summary      Accept or reject a pending request
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Request id"
// @Param        payload  body      model.UpdateStatusRequest  true  "Decision"
// @Success      200      {object}  model.Request
// @Failure      400      {object}  echo.HTTPError
// @Failure      403      {object}  echo.HTTPError
// @Failure      404      {object}  echo.HTTPError
// @Router       /api/requests/{id} [put]
func (h *Handler) UpdateStatus(c echo.Context) error {
	userID, id, err := callerAndRequest(c)
	if err != nil {
		return err
	}
	var req model.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	updated, err := h.requestSvc.UpdateStatus(c.Request().Context(), userID, id, req.Status)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Deliver
// @Summary      Confirm delivery of an accepted request
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  model.Request
// @Failure      400  {object}  echo.HTTPError
// @Failure      403  {object}  echo.HTTPError
// @Failure      404  {object}  echo.HTTPError
// @Router       /api/requests/{id}/deliver [post]
func (h *Handler) Deliver(c echo.Context) error {
	userID, id, err := callerAndRequest(c)
	if err != nil {
		return err
	}
	delivered, err := h.requestSvc.Deliver(c.Request().Context(), userID, id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, delivered)
}

// Contact
// @Summary      Contact details of both parties
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  model.ContactInfo
// @Failure      403  {object}  echo.HTTPError
// @Failure      404  {object}  echo.HTTPError
// @Router       /api/requests/{id}/contact [get]
func (h *Handler) Contact(c echo.Context) error {
	userID, id, err := callerAndRequest(c)
	if err != nil {
		return err
	}
	info, err := h.requestSvc.Contact(c.Request().Context(), userID, id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

// ListMessages
// @Summary      Chat history
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Param        id   path     string  true  "Request id"
// @Success      200  {array}  model.Message
// @Failure      403  {object}  echo.HTTPError
// @Router       /api/requests/{id}/messages [get]
func (h *Handler) ListMessages(c echo.Context) error {
	userID, id, err := callerAndRequest(c)
	if err != nil {
		return err
	}
	msgs, err := h.requestSvc.ListMessages(c.Request().Context(), userID, id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, msgs)
}

// SendMessage
// @Summary      Post a chat message
// @Tags         chat
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Request id"
// @Param        payload  body      model.SendMessageRequest  true  "Message"
// @Success      201      {object}  model.Message
// @Failure      403      {object}  echo.HTTPError
// @Router       /api/requests/{id}/messages [post]
func (h *Handler) SendMessage(c echo.Context) error {
	userID, id, err := callerAndRequest(c)
	if err != nil {
		return err
	}
	var req model.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	msg, err := h.requestSvc.SendMessage(c.Request().Context(), userID, id, req.Body)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// ListEvents
// @Summary      Lifecycle history of a request
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path     string  true  "Request id"
// @Success      200  {array}  model.RequestEvent
// @Failure      403  {object}  echo.HTTPError
// @Router       /api/requests/{id}/events [get]
func (h *Handler) ListEvents(c echo.Context) error {
	userID, id, err := callerAndRequest(c)
	if err != nil {
		return err
	}
	events, err := h.requestSvc.ListEvents(c.Request().Context(), userID, id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, events)
}
