package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/stratos-aero/stratos/internal/audit"
	"github.com/stratos-aero/stratos/internal/service"
)

type FlightHandler struct {
	Flights  *service.FlightService
	Airports *service.AirportService
	Producer *audit.Producer
}

func (h *FlightHandler) List(c echo.Context) error {
	flights, err := h.Flights.List(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid flight id")
	}
	f, err := h.Flights.Get(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FlightHandler) Create(c echo.Context) error {
	var req service.FlightInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	f, err := h.Flights.Create(c.Request().Context(), req)
	if err != nil {
		return errorJSON(c, err)
	}

	publish(c, h.Producer, f.ID.String(), map[string]any{
		"type":         "flight_created",
		"flightID":     f.ID.String(),
		"flightNumber": f.FlightNumber,
	})

	return c.JSON(http.StatusCreated, f)
}

func (h *FlightHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid flight id")
	}
	var req service.FlightInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	f, err := h.Flights.Update(c.Request().Context(), id, req)
	if err != nil {
		return errorJSON(c, err)
	}

	publish(c, h.Producer, f.ID.String(), map[string]any{
		"type":     "flight_updated",
		"flightID": f.ID.String(),
	})

	return c.JSON(http.StatusOK, f)
}

func (h *FlightHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid flight id")
	}
	if err := h.Flights.Delete(c.Request().Context(), id); err != nil {
		return errorJSON(c, err)
	}

	publish(c, h.Producer, id.String(), map[string]any{
		"type":     "flight_deleted",
		"flightID": id.String(),
	})

	return c.NoContent(http.StatusNoContent)
}

// EstimateArrival predicts an arrival time for a prospective flight from
// airport distance and aircraft performance.
func (h *FlightHandler) EstimateArrival(c echo.Context) error {
	var req struct {
		DepartureAirport string    `json:"departureAirport"`
		ArrivalAirport   string    `json:"arrivalAirport"`
		DepartureTime    time.Time `json:"departureTime"`
		Aircraft         string    `json:"aircraft"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	arrival, err := h.Flights.EstimateArrival(c.Request().Context(), req.DepartureAirport, req.ArrivalAirport, req.Aircraft, req.DepartureTime)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"arrivalTime": arrival})
}

func (h *FlightHandler) IATACodes(c echo.Context) error {
	codes, err := h.Airports.IATACodes(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, codes)
}
