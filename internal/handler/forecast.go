package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jmwangi/casetrack/internal/config"
	"github.com/jmwangi/casetrack/internal/repository"
)

// ForecastHandler serves the calendar items. The /v1/forecasts
// operations are scoped to the caller; the admin variants registered
// under /v1/admin reach any user's calendar.
type ForecastHandler struct {
	Cfg       config.Config
	Forecasts *repository.ForecastRepo
}

func NewForecastHandler(cfg config.Config, f *repository.ForecastRepo) *ForecastHandler {
	return &ForecastHandler{Cfg: cfg, Forecasts: f}
}

const dateLayout = "2006-01-02"

type forecastReq struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ForecastDate string `json:"forecast_date"`
}

func (req *forecastReq) parse() (title, desc string, date time.Time, err error) {
	title = strings.TrimSpace(req.Title)
	date, err = time.Parse(dateLayout, req.ForecastDate)
	return title, req.Description, date, err
}

// dateRange reads the from/to query params, defaulting to the current
// month when either side is omitted.
func dateRange(c echo.Context) (from, to time.Time, err error) {
	now := time.Now().UTC()
	from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, -1)
	if s := c.QueryParam("from"); s != "" {
		if from, err = time.Parse(dateLayout, s); err != nil {
			return from, to, errors.New("from must be YYYY-MM-DD")
		}
	}
	if s := c.QueryParam("to"); s != "" {
		if to, err = time.Parse(dateLayout, s); err != nil {
			return from, to, errors.New("to must be YYYY-MM-DD")
		}
	}
	return from, to, nil
}

// List returns the caller's forecasts inside [from, to]. Defaults cover
// the current month when the range is omitted.
func (h *ForecastHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	from, to, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	items, err := h.Forecasts.ListByOwnerBetween(ctx, uid, from, to)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Create adds a forecast on a given day.
func (h *ForecastHandler) Create(c echo.Context) error {
	var req forecastReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title, desc, date, err := req.parse()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "forecast_date must be YYYY-MM-DD"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	f, err := h.Forecasts.Create(ctx, uid, title, desc, date)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, f)
}

// Update replaces a forecast's title, description and date. The update
// is scoped by owner id; touching someone else's forecast is a 404.
func (h *ForecastHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req forecastReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title, desc, date, err := req.parse()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "forecast_date must be YYYY-MM-DD"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	if err := h.Forecasts.UpdateByIDAndOwner(ctx, id, uid, title, desc, date); err != nil {
		return fail(c, err)
	}
	f, err := h.Forecasts.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// UserForecasts returns another user's forecasts inside [from, to],
// with the same current-month default as List. Admin-only.
func (h *ForecastHandler) UserForecasts(c echo.Context) error {
	uid, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	from, to, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	items, err := h.Forecasts.ListByOwnerBetween(ctx, uid, from, to)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// CreateForUser adds a forecast on another user's calendar. Admin-only.
func (h *ForecastHandler) CreateForUser(c echo.Context) error {
	uid, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req forecastReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title, desc, date, err := req.parse()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "forecast_date must be YYYY-MM-DD"})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	f, err := h.Forecasts.Create(ctx, uid, title, desc, date)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, f)
}

// UpdateAny updates a forecast without the ownership scope. Admin-only.
func (h *ForecastHandler) UpdateAny(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req forecastReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title, desc, date, err := req.parse()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "forecast_date must be YYYY-MM-DD"})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	if err := h.Forecasts.UpdateByID(ctx, id, title, desc, date); err != nil {
		return fail(c, err)
	}
	f, err := h.Forecasts.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// DeleteAny deletes a forecast without the ownership scope. Admin-only.
func (h *ForecastHandler) DeleteAny(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	if err := h.Forecasts.DeleteByID(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes one of the caller's forecasts.
func (h *ForecastHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	if err := h.Forecasts.DeleteByIDAndOwner(ctx, id, uid); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
