// Package handlers implements the JSON API surface consumed by the console
// pages and external tooling.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stratos-aero/stratos/internal/audit"
	"github.com/stratos-aero/stratos/internal/logging"
	"github.com/stratos-aero/stratos/internal/service"
)

// errorJSON maps domain errors onto the {error, message} body that forms
// display verbatim.
func errorJSON(c echo.Context, err error) error {
	var serr *service.Error
	if errors.As(err, &serr) {
		code := http.StatusBadRequest
		if serr.Kind == service.KindNotFound {
			code = http.StatusNotFound
		}
		return c.JSON(code, echo.Map{"error": serr.Kind, "message": serr.Message})
	}
	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		return err
	}
	logging.FromContext(c.Request().Context()).Error("internal error", "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal", "message": "internal server error"})
}

// publish sends an audit event, logging and swallowing failures.
func publish(c echo.Context, producer *audit.Producer, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := producer.PublishEvent(ctx, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("audit publish failed", "error", err)
	}
}
