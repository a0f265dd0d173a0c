package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmwangi/casetrack/internal/config"
	"github.com/jmwangi/casetrack/internal/model"
	"github.com/jmwangi/casetrack/internal/repository"
)

// AdminHandler serves the admin-only views: the user roster, any user's
// records, the full catalog and the per-user category report.
type AdminHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Records *repository.RecordRepo
}

func NewAdminHandler(cfg config.Config, users *repository.UserRepo, records *repository.RecordRepo) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Users: users, Records: records}
}

// ListUsers returns the active non-admin users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	users, err := h.Users.ListByRole(ctx, model.RoleUser)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateUserRole promotes or demotes a user. The target is fetched
// first so an unknown id is a 404 rather than a silent no-op.
func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	uid, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Role != model.RoleAdmin && req.Role != model.RoleUser {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be ADMIN or USER"})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, uid); err != nil {
		return fail(c, err)
	}
	if err := h.Users.UpdateRole(ctx, uid, req.Role); err != nil {
		return fail(c, err)
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// UserRecords returns one user's records with values, as the user
// themselves would see them.
func (h *AdminHandler) UserRecords(c echo.Context) error {
	uid, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, uid); err != nil {
		return fail(c, err)
	}
	details, err := h.Records.ListDetailsByOwner(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, details)
}

// AllRecords returns every record in the system, without values.
func (h *AdminHandler) AllRecords(c echo.Context) error {
	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	records, err := h.Records.ListAll(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, records)
}

// RecordReport returns record counts grouped by owner and category.
func (h *AdminHandler) RecordReport(c echo.Context) error {
	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	counts, err := h.Records.CountByOwnerAndCategory(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, counts)
}
