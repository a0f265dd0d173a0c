package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/jmwangi/casetrack/internal/config"
	"github.com/jmwangi/casetrack/internal/fieldcache"
	"github.com/jmwangi/casetrack/internal/middleware"
	"github.com/jmwangi/casetrack/internal/model"
	"github.com/jmwangi/casetrack/internal/repository"
)

// FieldHandler manages the custom field registry. All mutations are
// admin-only; the route table enforces that.
type FieldHandler struct {
	Cfg      config.Config
	Fields   *fieldcache.Cache
	Rdb      *redis.Client
	CacheCfg config.CacheConfig
}

func NewFieldHandler(cfg config.Config, fields *fieldcache.Cache, rdb *redis.Client, cacheCfg config.CacheConfig) *FieldHandler {
	return &FieldHandler{Cfg: cfg, Fields: fields, Rdb: rdb, CacheCfg: cacheCfg}
}

// purgeListCache drops the cached GET /v1/fields response so a list
// right after a mutation reflects it instead of a stale TTL-bound copy.
func (h *FieldHandler) purgeListCache(c echo.Context) {
	if h.Rdb == nil || !h.CacheCfg.Enabled {
		return
	}
	key := middleware.CacheKey(h.CacheCfg, http.MethodGet, "/v1/fields", "")
	_ = h.Rdb.Del(c.Request().Context(), key).Err()
}

// List returns all field definitions in display order.
func (h *FieldHandler) List(c echo.Context) error {
	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	fields, err := h.Fields.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, fields)
}

// Create registers a new field. It is appended to the end of the order.
func (h *FieldHandler) Create(c echo.Context) error {
	var req struct {
		Name string `json:"field_name"`
		Type string `json:"field_type"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "field_name required"})
	}
	if !model.ValidFieldType(req.Type) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "field_type must be text, number or date"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	f, err := h.Fields.Create(ctx, req.Name, req.Type, uid)
	if err != nil {
		return fail(c, err)
	}
	h.purgeListCache(c)
	return c.JSON(http.StatusCreated, f)
}

// Move shifts a field one step up or down. Moving past either end of
// the list, or moving an id that no longer exists, is a no-op.
func (h *FieldHandler) Move(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req struct {
		Direction string `json:"direction"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Direction != repository.MoveUp && req.Direction != repository.MoveDown {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "direction must be up or down"})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	if err := h.Fields.Move(ctx, id, req.Direction); err != nil {
		return fail(c, err)
	}
	h.purgeListCache(c)
	return c.NoContent(http.StatusNoContent)
}

// Delete removes a field definition along with every stored value for
// it, across all records.
func (h *FieldHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	if err := h.Fields.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	h.purgeListCache(c)
	return c.NoContent(http.StatusNoContent)
}
