package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmwangi/casetrack/internal/config"
	"github.com/jmwangi/casetrack/internal/database"
	"github.com/jmwangi/casetrack/internal/fieldcache"
	"github.com/jmwangi/casetrack/internal/model"
	"github.com/jmwangi/casetrack/internal/queue"
	"github.com/jmwangi/casetrack/internal/repository"
	queuepub "github.com/jmwangi/casetrack/internal/service"
)

// RecordHandler serves the record catalog. Regular users only ever see
// their own records; admins can read and mutate anyone's through the
// same endpoints.
type RecordHandler struct {
	Cfg     config.Config
	Records *repository.RecordRepo
	Fields  *fieldcache.Cache
}

func NewRecordHandler(cfg config.Config, records *repository.RecordRepo, fields *fieldcache.Cache) *RecordHandler {
	return &RecordHandler{Cfg: cfg, Records: records, Fields: fields}
}

type recordReq struct {
	Category string            `json:"category"`
	Values   map[uint64]string `json:"values"`
}

// checkValues validates submitted attribute values against the current
// field registry. Values for unknown fields are rejected rather than
// silently dropped so a stale client learns its registry is out of date.
func (h *RecordHandler) checkValues(c echo.Context, values map[uint64]string) error {
	if len(values) == 0 {
		return nil
	}
	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	fields, err := h.Fields.List(ctx)
	if err != nil {
		return err
	}
	byID := make(map[uint64]model.FieldDefinition, len(fields))
	for _, f := range fields {
		byID[f.ID] = f
	}
	for id, v := range values {
		f, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown field %d", repository.ErrValidation, id)
		}
		if err := model.ValidateValue(f.Type, v); err != nil {
			return fmt.Errorf("%w: field %q: %v", repository.ErrValidation, f.Name, err)
		}
	}
	return nil
}

// publish fires a record-changed event. Broker failures are already
// logged by the publisher and must not fail the request.
func (h *RecordHandler) publish(c echo.Context, action string, rec *model.Record, actorID uint64) {
	_ = queuepub.PublishRecordChanged(c.Request().Context(), queue.RecordChangedEvent{
		Action:       action,
		RecordID:     rec.ID,
		RecordNumber: rec.RecordNumber,
		OwnerID:      rec.OwnerID,
		Category:     rec.Category,
		ActorID:      actorID,
	})
}

// List returns the caller's records with their attribute values,
// newest numbers first.
func (h *RecordHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	var details []model.RecordDetail
	err = database.Retry(ctx, h.Cfg.StorageRetries, func() error {
		var lerr error
		details, lerr = h.Records.ListDetailsByOwner(ctx, uid)
		return lerr
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, details)
}

// Get returns one record with values. Non-admins may only fetch their own.
func (h *RecordHandler) Get(c echo.Context) error {
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

	det, err := h.Records.GetDetail(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if det.OwnerID != uid && !isAdmin(c) {
		return fail(c, repository.ErrForbidden)
	}
	return c.JSON(http.StatusOK, det)
}

// Create makes a new record owned by the caller. An admin may create a
// record for another user by passing user_id.
func (h *RecordHandler) Create(c echo.Context) error {
	var req struct {
		recordReq
		OwnerID uint64 `json:"user_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	owner := uid
	if req.OwnerID != 0 && req.OwnerID != uid {
		if !isAdmin(c) {
			return fail(c, repository.ErrForbidden)
		}
		owner = req.OwnerID
	}
	if !model.ValidCategory(req.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category must be CASE_OB or PHQ"})
	}
	if err := h.checkValues(c, req.Values); err != nil {
		return fail(c, err)
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	rec, err := h.Records.Create(ctx, owner, req.Category, req.Values)
	if err != nil {
		return fail(c, err)
	}
	h.publish(c, queue.ActionCreated, rec, uid)
	return c.JSON(http.StatusCreated, rec)
}

// Update patches a record: category, attribute values, and (admin only)
// the owner. Reassigning the owner renumbers the record in the new
// owner's sequence.
func (h *RecordHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req struct {
		Category *string           `json:"category"`
		OwnerID  *uint64           `json:"user_id"`
		Values   map[uint64]string `json:"values"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if req.Category != nil && !model.ValidCategory(*req.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category must be CASE_OB or PHQ"})
	}
	if req.OwnerID != nil && !isAdmin(c) {
		return fail(c, repository.ErrForbidden)
	}
	if err := h.checkValues(c, req.Values); err != nil {
		return fail(c, err)
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	cur, err := h.Records.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if cur.OwnerID != uid && !isAdmin(c) {
		return fail(c, repository.ErrForbidden)
	}
	reassigned := req.OwnerID != nil && *req.OwnerID != cur.OwnerID

	rec, err := h.Records.Update(ctx, id, repository.RecordPatch{
		OwnerID:  req.OwnerID,
		Category: req.Category,
	}, req.Values)
	if err != nil {
		return fail(c, err)
	}

	action := queue.ActionUpdated
	if reassigned {
		action = queue.ActionReassigned
	}
	h.publish(c, action, rec, uid)
	return c.JSON(http.StatusOK, rec)
}

// Delete removes a record and its values. The owner's numbering is not
// compacted afterwards; gaps are expected.
func (h *RecordHandler) Delete(c echo.Context) error {
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

	cur, err := h.Records.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if cur.OwnerID != uid && !isAdmin(c) {
		return fail(c, repository.ErrForbidden)
	}
	if err := h.Records.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	h.publish(c, queue.ActionDeleted, cur, uid)
	return c.NoContent(http.StatusNoContent)
}
