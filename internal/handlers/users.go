package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/stratos-aero/stratos/internal/audit"
	"github.com/stratos-aero/stratos/internal/models"
	"github.com/stratos-aero/stratos/internal/service"
)

type UserHandler struct {
	Users    *service.UserService
	Producer *audit.Producer
}

func (h *UserHandler) List(c echo.Context) error {
	f := service.UserFilter{
		Username:  c.QueryParam("username"),
		Role:      models.UserRole(c.QueryParam("role")),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}
	users, err := h.Users.List(c.Request().Context(), f)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	user, err := h.Users.Get(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Create(c echo.Context) error {
	var req service.UserInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	user, err := h.Users.Create(c.Request().Context(), req)
	if err != nil {
		return errorJSON(c, err)
	}

	publish(c, h.Producer, user.ID.String(), map[string]any{
		"type":     "user_created",
		"userID":   user.ID.String(),
		"username": user.Username,
		"role":     user.Role,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	var req service.UserInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	user, err := h.Users.Update(c.Request().Context(), id, req)
	if err != nil {
		return errorJSON(c, err)
	}

	publish(c, h.Producer, user.ID.String(), map[string]any{
		"type":   "user_updated",
		"userID": user.ID.String(),
	})

	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if err := h.Users.Delete(c.Request().Context(), id); err != nil {
		return errorJSON(c, err)
	}

	publish(c, h.Producer, id.String(), map[string]any{
		"type":   "user_deleted",
		"userID": id.String(),
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) Roles(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Users.Roles())
}
