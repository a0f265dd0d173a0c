package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmwangi/casetrack/internal/config"
	"github.com/jmwangi/casetrack/internal/model"
	"github.com/jmwangi/casetrack/internal/repository"
)

func roleUpdateContext(t *testing.T, id, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func userRow(id uint64, role string) *sqlmock.Rows {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{"id", "email", "username", "password_hash", "role", "is_active", "last_checked_at", "created_at", "updated_at"}).
		AddRow(id, "u@example.com", "u", "x", role, true, nil, now, now)
}

func TestUpdateUserRolePromotes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	h := NewAdminHandler(config.Config{StorageTimeout: time.Second}, repository.NewUserRepo(db), nil)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id=\?`).
		WithArgs(uint64(7)).WillReturnRows(userRow(7, model.RoleUser))
	mock.ExpectExec(`UPDATE users SET role=\? WHERE id=\?`).
		WithArgs(model.RoleAdmin, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id=\?`).
		WithArgs(uint64(7)).WillReturnRows(userRow(7, model.RoleAdmin))

	c, rec := roleUpdateContext(t, "7", `{"role":"ADMIN"}`)
	require.NoError(t, h.UpdateUserRole(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"ADMIN"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserRoleRejectsUnknownRole(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	h := NewAdminHandler(config.Config{StorageTimeout: time.Second}, repository.NewUserRepo(db), nil)

	c, rec := roleUpdateContext(t, "7", `{"role":"SUPERUSER"}`)
	require.NoError(t, h.UpdateUserRole(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateUserRoleUnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	h := NewAdminHandler(config.Config{StorageTimeout: time.Second}, repository.NewUserRepo(db), nil)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id=\?`).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, rec := roleUpdateContext(t, "404", `{"role":"USER"}`)
	require.NoError(t, h.UpdateUserRole(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
