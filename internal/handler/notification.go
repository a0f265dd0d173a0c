package handler

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmwangi/casetrack/internal/config"
	"github.com/jmwangi/casetrack/internal/database"
	"github.com/jmwangi/casetrack/internal/model"
	"github.com/jmwangi/casetrack/internal/repository"
)

// NotificationHandler reports record changes since the caller's last check.
type NotificationHandler struct {
	Cfg           config.Config
	Notifications *repository.NotificationRepo
}

func NewNotificationHandler(cfg config.Config, n *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Cfg: cfg, Notifications: n}
}

// Changes computes which of the caller's records are new or updated
// since the last check, then advances the watermark. The watermark is
// moved only after the change set is computed, so a failure mid-request
// re-delivers changes on the next call rather than losing them. A
// failed advance is logged and swallowed for the same reason: the
// client already has its changes.
func (h *NotificationHandler) Changes(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	var changes []model.RecordChange
	// computing the change set is a pure read, safe to retry on a
	// dropped connection or lock timeout
	err = database.Retry(ctx, h.Cfg.StorageRetries, func() error {
		var cerr error
		changes, cerr = h.Notifications.ComputeChanges(ctx, uid)
		return cerr
	})
	if err != nil {
		return fail(c, err)
	}
	if err := h.Notifications.AdvanceWatermark(ctx, uid); err != nil {
		log.Printf("advance watermark for user %d: %v", uid, err)
	}

	if changes == nil {
		changes = []model.RecordChange{}
	}
	return c.JSON(http.StatusOK, echo.Map{"changes": changes, "count": len(changes)})
}
