package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmwangi/casetrack/internal/config"
	"github.com/jmwangi/casetrack/internal/exchange"
	"github.com/jmwangi/casetrack/internal/fieldcache"
	"github.com/jmwangi/casetrack/internal/repository"
)

// ExchangeHandler moves records in and out of .xlsx workbooks. Columns
// are matched by field name against the current registry; columns that
// match nothing are ignored. Import never creates fields.
type ExchangeHandler struct {
	Cfg     config.Config
	Records *repository.RecordRepo
	Fields  *fieldcache.Cache
}

func NewExchangeHandler(cfg config.Config, records *repository.RecordRepo, fields *fieldcache.Cache) *ExchangeHandler {
	return &ExchangeHandler{Cfg: cfg, Records: records, Fields: fields}
}

// Export streams the caller's records as a workbook.
func (h *ExchangeHandler) Export(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	defer cancel()

	fields, err := h.Fields.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	details, err := h.Records.ListDetailsByOwner(ctx, uid)
	if err != nil {
		return fail(c, err)
	}

	wb, err := exchange.BuildWorkbook(details, fields)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "build workbook failed"})
	}
	defer wb.Close()

	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="records.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	return wb.Write(c.Response())
}

type importRowResult struct {
	Row   int    `json:"row"`
	ID    uint64 `json:"record_id,omitempty"`
	Error string `json:"error,omitempty"`
}

// Import reads an uploaded workbook and creates one record per row for
// the caller. Rows are independent: a bad row is reported and skipped,
// the rest still land. Row numbers in the report count data rows from
// 1, header and blank rows excluded.
func (h *ExchangeHandler) Import(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file required"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "open upload failed"})
	}
	defer src.Close()

	rows, err := exchange.ParseWorkbook(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("parse workbook: %v", err)})
	}

	ctx, cancel := storageCtx(c, h.Cfg.StorageTimeout)
	fields, err := h.Fields.List(ctx)
	cancel()
	if err != nil {
		return fail(c, err)
	}

	results := make([]importRowResult, 0, len(rows))
	created := 0
	for i, row := range rows {
		n := i + 1
		category, values, err := exchange.MapRow(row, fields)
		if err != nil {
			results = append(results, importRowResult{Row: n, Error: err.Error()})
			continue
		}
		// each row gets its own deadline: a large upload must not run
		// the whole batch out of one storage-call budget
		rowCtx, rowCancel := storageCtx(c, h.Cfg.StorageTimeout)
		rec, err := h.Records.Create(rowCtx, uid, category, values)
		rowCancel()
		if err != nil {
			results = append(results, importRowResult{Row: n, Error: err.Error()})
			continue
		}
		created++
		results = append(results, importRowResult{Row: n, ID: rec.ID})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"created": created,
		"failed":  len(rows) - created,
		"rows":    results,
	})
}
