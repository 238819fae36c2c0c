package handler

import (
	"net/http"

	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	"github.com/labstack/echo/v4"
)

// Register
// @Summary      Register user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      model.RegisterRequest  true  "Register payload"
// @Success      201      {object}  model.User
// @Failure      400      {object}  echo.HTTPError
// @Router       /api/auth/register [post]
func (h *Handler) Register(c echo.Context) error {
	var req model.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	user, err := h.userSvc.Register(c.Request().Context(), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login
// @Summary      Issue bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      model.LoginRequest  true  "Credentials"
// @Success      200      {object}  model.AuthResponse
// @Failure      400      {object}  echo.HTTPError
// @Failure      401      {object}  echo.HTTPError
// @Router       /api/auth/login [post]
func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.userSvc.Login(c.Request().Context(), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}
