package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/stratos-aero/stratos/internal/audit"
	"github.com/stratos-aero/stratos/internal/service"
)

type AircraftHandler struct {
	Aircraft *service.AircraftService
	Producer *audit.Producer
}

func (h *AircraftHandler) List(c echo.Context) error {
	aircraft, err := h.Aircraft.List(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, aircraft)
}

func (h *AircraftHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid aircraft id")
	}
	a, err := h.Aircraft.Get(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AircraftHandler) Create(c echo.Context) error {
	var req service.AircraftInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.Aircraft.Create(c.Request().Context(), req)
	if err != nil {
		return errorJSON(c, err)
	}

	publish(c, h.Producer, a.ID.String(), map[string]any{
		"type":         "aircraft_created",
		"aircraftID":   a.ID.String(),
		"registration": a.RegistrationNumber,
	})

	return c.JSON(http.StatusCreated, a)
}

func (h *AircraftHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid aircraft id")
	}
	var req service.AircraftInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.Aircraft.Update(c.Request().Context(), id, req)
	if err != nil {
		return errorJSON(c, err)
	}

	publish(c, h.Producer, a.ID.String(), map[string]any{
		"type":       "aircraft_updated",
		"aircraftID": a.ID.String(),
	})

	return c.JSON(http.StatusOK, a)
}

func (h *AircraftHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid aircraft id")
	}
	if err := h.Aircraft.Delete(c.Request().Context(), id); err != nil {
		return errorJSON(c, err)
	}

	publish(c, h.Producer, id.String(), map[string]any{
		"type":       "aircraft_deleted",
		"aircraftID": id.String(),
	})

	return c.NoContent(http.StatusNoContent)
}
