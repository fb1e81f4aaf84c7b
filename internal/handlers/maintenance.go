package handlers

import (
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/stratos-aero/stratos/internal/audit"
	"github.com/stratos-aero/stratos/internal/models"
	"github.com/stratos-aero/stratos/internal/search"
	"github.com/stratos-aero/stratos/internal/service"
)

type MaintenanceHandler struct {
	Maintenance *service.MaintenanceService
	ES          *elasticsearch.Client
	Producer    *audit.Producer
}

func (h *MaintenanceHandler) List(c echo.Context) error {
	f := service.MaintenanceFilter{
		Status: models.MaintenanceStatus(c.QueryParam("status")),
		Type:   models.MaintenanceType(c.QueryParam("type")),
		SortBy: c.QueryParam("sortBy"),
		Order:  c.QueryParam("order"),
	}
	if v := c.QueryParam("engineerId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid engineer id")
		}
		f.EngineerID = id
	}
	if v := c.QueryParam("aircraftId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid aircraft id")
		}
		f.AircraftID = id
	}
	records, err := h.Maintenance.List(c.Request().Context(), f)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, records)
}

func (h *MaintenanceHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid maintenance record id")
	}
	r, err := h.Maintenance.Get(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *MaintenanceHandler) Create(c echo.Context) error {
	var req service.MaintenanceInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	r, err := h.Maintenance.Create(c.Request().Context(), req)
	if err != nil {
		return errorJSON(c, err)
	}

	publish(c, h.Producer, r.ID.String(), map[string]any{
		"type":     "maintenance_created",
		"recordID": r.ID.String(),
		"aircraft": r.Aircraft.RegistrationNumber,
	})

	return c.JSON(http.StatusCreated, r)
}

func (h *MaintenanceHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid maintenance record id")
	}
	var req service.MaintenanceInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	r, err := h.Maintenance.Update(c.Request().Context(), id, req)
	if err != nil {
		return errorJSON(c, err)
	}

	publish(c, h.Producer, r.ID.String(), map[string]any{
		"type":     "maintenance_updated",
		"recordID": r.ID.String(),
	})

	return c.JSON(http.StatusOK, r)
}

func (h *MaintenanceHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid maintenance record id")
	}
	if err := h.Maintenance.Delete(c.Request().Context(), id); err != nil {
		return errorJSON(c, err)
	}

	publish(c, h.Producer, id.String(), map[string]any{
		"type":     "maintenance_deleted",
		"recordID": id.String(),
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *MaintenanceHandler) Types(c echo.Context) error {
	return c.JSON(http.StatusOK, models.AllMaintenanceTypes())
}

func (h *MaintenanceHandler) Statuses(c echo.Context) error {
	return c.JSON(http.StatusOK, models.AllMaintenanceStatuses())
}

func (h *MaintenanceHandler) Log(c echo.Context) error {
	entries, err := h.Maintenance.LogEntries(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

// LogSearch runs a full-text query over the audit trail index.
func (h *MaintenanceHandler) LogSearch(c echo.Context) error {
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query")
	}
	from, _ := strconv.Atoi(c.QueryParam("from"))
	size, err := strconv.Atoi(c.QueryParam("size"))
	if err != nil || size <= 0 || size > 100 {
		size = 20
	}
	total, entries, err := search.SearchLogs(c.Request().Context(), h.ES, q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "entries": entries})
}
