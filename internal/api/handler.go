package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"vault-data-api/internal/domain"
	"vault-data-api/internal/timebucket"
)

// SeriesService is what the handlers need from the series layer.
type SeriesService interface {
	Entries(ctx context.Context, series domain.Series, symbol string, bucket timebucket.TimeBucket) ([]domain.DataPoint, error)
	OracleTokens(ctx context.Context, symbol string) ([]int64, error)
}

// Handler serves the data endpoints.
type Handler struct {
	svc    SeriesService
	logger zerolog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc SeriesService, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the data endpoints on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	v2 := e.Group("/api/v2")

	v2.GET("/prices", h.oracleSeries(domain.SeriesPrices))
	v2.GET("/lps/breakdown", h.oracleSeries(domain.SeriesLPBreakdowns))
	v2.GET("/apys", h.vaultSeries(domain.SeriesAPYs))
	v2.GET("/tvls", h.vaultSeries(domain.SeriesTVLs))
	v2.GET("/oracles/tokens", h.oracleTokens)
}

func (h *Handler) oracleSeries(s domain.Series) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req oracleSeriesRequest
		if err := bindAndValidate(c, &req); err != nil {
			return badRequest(c, validationMessage(err))
		}
		return h.writeSeries(c, s, req.Oracle, timebucket.TimeBucket(req.Bucket))
	}
}

func (h *Handler) vaultSeries(s domain.Series) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req vaultSeriesRequest
		if err := bindAndValidate(c, &req); err != nil {
			return badRequest(c, validationMessage(err))
		}
		return h.writeSeries(c, s, req.Vault, timebucket.TimeBucket(req.Bucket))
	}
}

func (h *Handler) writeSeries(c echo.Context, s domain.Series, symbol string, bucket timebucket.TimeBucket) error {
	points, err := h.svc.Entries(c.Request().Context(), s, symbol, bucket)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, points)
}

func (h *Handler) oracleTokens(c echo.Context) error {
	var req oracleTokensRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, validationMessage(err))
	}

	tokens, err := h.svc.OracleTokens(c.Request().Context(), req.Oracle)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}
