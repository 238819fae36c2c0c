package handler

import (
	"net/http"

	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	"github.com/labstack/echo/v4"
)

// CreateBook
// @Summary      List a book
// @Tags         books
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      model.CreateBookRequest  true  "Book"
// @Success      201      {object}  model.Book
// @Failure      400      {object}  echo.HTTPError
// @Router       /api/books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	book, err := h.bookSvc.CreateBook(c.Request().Context(), userID, req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, book)
}

// ListBooks
// @Summary      Browse available books
// @Tags         books
// @Produce      json
// @Param        city   query     string  false  "City substring"
// @Param        state  query     string  false  "State substring"
// @Param        page   query     int     false  "Page"
// @Param        size   query     int     false  "Page size"
// @Success      200    {object}  model.ListBooks
// @Router       /api/books [get]
func (h *Handler) ListBooks(c echo.Context) error {
	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	size, err := queryInt(c, "size")
	if err != nil {
		return err
	}
	books, err := h.bookSvc.ListBooks(c.Request().Context(), model.BookFilter{
		City:  c.QueryParam("city"),
		State: c.QueryParam("state"),
		Page:  page,
		Size:  size,
	})
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

// MyBooks
// @Summary      Caller's books
// @Tags         books
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  model.Book
// @Router       /api/books/my [get]
func (h *Handler) MyBooks(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	books, err := h.bookSvc.MyBooks(c.Request().Context(), userID)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

// GetBook
// @Summary      Get book
// @Tags         books
// @Produce      json
// @Param        id   path      string  true  "Book id"
// @Success      200  {object}  model.Book
// @Failure      404  {object}  echo.HTTPError
// @Router       /api/books/{id} [get]
func (h *Handler) GetBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	book, err := h.bookSvc.GetBook(c.Request().Context(), id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, book)
}

// DeleteBook
// @Summary      Remove own book
// @Tags         books
// @Security     BearerAuth
// @Param        id   path  string  true  "Book id"
// @Success      204
// @Failure      403  {object}  echo.HTTPError
// @Failure      404  {object}  echo.HTTPError
// @Router       /api/books/{id} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.bookSvc.DeleteBook(c.Request().Context(), userID, id); err != nil {
		return h.errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
