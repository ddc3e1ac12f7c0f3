package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"vault-data-api/internal/series"
	"vault-data-api/internal/storage"
	"vault-data-api/internal/timebucket"
)

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Code: "ERR_BAD_REQUEST", Message: msg})
}

func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, errorResponse{Code: "ERR_NOT_FOUND", Message: msg})
}

func internalError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, errorResponse{
		Code:    "ERR_INTERNAL",
		Message: http.StatusText(http.StatusInternalServerError),
	})
}

// writeError maps service errors to HTTP responses. Only 5xx are logged.
func (h *Handler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, series.ErrUnknownEntity):
		return notFound(c, err.Error())
	case errors.Is(err, storage.ErrInvalidInput), errors.Is(err, timebucket.ErrUnknownBucket):
		return badRequest(c, err.Error())
	}

	h.logger.Error().
		Err(err).
		Str("route", c.Path()).
		Str("query", c.QueryString()).
		Msg("request failed")
	return internalError(c)
}
