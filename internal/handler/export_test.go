package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jmwangi/casetrack/internal/config"
	"github.com/jmwangi/casetrack/internal/fieldcache"
	"github.com/jmwangi/casetrack/internal/repository"
)

// importUpload builds a one-sheet workbook from rows and wraps it in a
// multipart request the way the UI submits it.
func importUpload(t *testing.T, rows [][]interface{}) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "records.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(9))
	return c, rec
}

func TestImportBadRowDoesNotSinkTheRest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	records := repository.NewRecordRepo(db, repository.NewAttributeRepo(db))
	fields := fieldcache.New(repository.NewFieldRepo(db), nil, 0)
	h := NewExchangeHandler(config.Config{StorageTimeout: time.Second}, records, fields)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, field_name, field_type, position, created_by, created_at FROM custom_fields`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "field_name", "field_type", "position", "created_by", "created_at"}).
			AddRow(7, "Severity", "number", 0, nil, now))

	// the MISC row fails in mapping and must not touch storage; the
	// CASE_OB row after it still gets its own transaction
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(record_number\), 0\) FROM records WHERE user_id = \? FOR UPDATE`).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO records`).
		WithArgs(uint64(9), uint32(1), "CASE_OB").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery(`SELECT id, user_id, record_number, category, created_at, updated_at FROM records WHERE id = \?`).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "record_number", "category", "created_at", "updated_at"}).
			AddRow(3, 9, 1, "CASE_OB", now, now))
	mock.ExpectExec(`INSERT INTO custom_field_values`).
		WithArgs(uint64(3), uint64(7), "5").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := importUpload(t, [][]interface{}{
		{"Record No", "Category", "Severity"},
		{"", "MISC", ""},
		{"", "CASE_OB", "5"},
	})
	require.NoError(t, h.Import(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Created int `json:"created"`
		Failed  int `json:"failed"`
		Rows    []struct {
			Row   int    `json:"row"`
			ID    uint64 `json:"record_id"`
			Error string `json:"error"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, 1, resp.Rows[0].Row)
	assert.NotEmpty(t, resp.Rows[0].Error)
	assert.Equal(t, 2, resp.Rows[1].Row)
	assert.Equal(t, uint64(3), resp.Rows[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
