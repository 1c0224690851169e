package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"bookshelf-backend/internal/domains/entry/model"
	"bookshelf-backend/internal/domains/entry/repository"
	"bookshelf-backend/internal/domains/entry/service"
	infraCache "bookshelf-backend/internal/infrastructure/cache"
	"bookshelf-backend/internal/infrastructure/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router *gin.Engine
	db     *database.SQLiteDB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewSQLiteRepository(db.DB, "books")
	require.NoError(t, repo.EnsureSchema(context.Background()))

	h := NewEntryHandler(service.NewService(repo, infraCache.NewNoopCache(), time.Minute), "The Bookshelf")

	r := gin.New()
	r.GET("/health", h.Health)
	r.POST("/create-book", h.CreateBook)
	r.GET("/entries", h.ListEntries)
	r.GET("/entries/export", h.ExportEntries)
	r.GET("/get-book/:title", h.GetBook)
	r.PUT("/update-book", h.UpdateBook)
	r.DELETE("/delete-book/:title", h.DeleteBook)

	return &testEnv{router: r, db: db}
}

func (e *testEnv) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createDune(t *testing.T) {
	t.Helper()
	w := e.do(http.MethodPost, "/create-book", url.Values{
		"title":      {"Dune"},
		"author":     {"Frank Herbert"},
		"start_date": {"2024-01-01"},
		"end_date":   {""},
		"rating":     {""},
		"notes":      {""},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Detail
}

func TestCreateBook(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/create-book", url.Values{
		"title":      {"Dune"},
		"author":     {"Frank Herbert"},
		"start_date": {"2024-01-01"},
		"end_date":   {"2024-02-01"},
		"rating":     {"5"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp model.EntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Dune", resp.Title)
	assert.Equal(t, "2024-01-01", resp.StartDate)
	assert.Equal(t, "2024-02-01", *resp.EndDate)
	assert.Equal(t, "5", *resp.Rating)
	assert.Nil(t, resp.Notes)
}

func TestCreateBook_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	env.createDune(t)

	w := env.do(http.MethodPost, "/create-book", url.Values{
		"title": {"Dune"}, "author": {"X"}, "start_date": {"2024-05-05"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "book already exists", decodeDetail(t, w))
}

func TestCreateBook_Invalid(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/create-book", url.Values{"title": {"Dune"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeDetail(t, w), "author is required")

	w = env.do(http.MethodPost, "/create-book", url.Values{
		"title": {"Dune"}, "author": {"Frank Herbert"}, "start_date": {"yesterday"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeDetail(t, w), "start_date")
}

func TestCreateBook_JSONBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/create-book",
		strings.NewReader(`{"title":"Hyperion","author":"Dan Simmons","start_date":"2024-03-03"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestGetBook(t *testing.T) {
	env := newTestEnv(t)
	env.createDune(t)

	w := env.do(http.MethodGet, "/get-book/Dn", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.EntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Dune", resp.Title)
	assert.Nil(t, resp.EndDate)
	assert.Nil(t, resp.Rating, "blank form inputs are stored as null")

	w = env.do(http.MethodGet, "/get-book/zzz", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "book does not exist", decodeDetail(t, w))
}

func TestGetBook_EscapedQuery(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/create-book", url.Values{
		"title": {"Dune Messiah"}, "author": {"Frank Herbert"}, "start_date": {"2024-01-01"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/get-book/"+url.PathEscape("e M"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUpdateBook(t *testing.T) {
	env := newTestEnv(t)
	env.createDune(t)

	w := env.do(http.MethodPut, "/update-book", url.Values{
		"gettitle":      {"Du"},
		"getauthor":     {""},
		"getstart_date": {""},
		"getend_date":   {"2024-03-01"},
		"getrating":     {"4"},
		"getnotes":      {""},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp model.EntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Dune", resp.Title)
	assert.Equal(t, "Frank Herbert", resp.Author)
	assert.Equal(t, "2024-01-01", resp.StartDate)
	assert.Equal(t, "2024-03-01", *resp.EndDate)
	assert.Equal(t, "4", *resp.Rating)

	w = env.do(http.MethodPut, "/update-book", url.Values{"gettitle": {"zzz"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "book does not exist", decodeDetail(t, w))

	w = env.do(http.MethodPut, "/update-book", url.Values{"getauthor": {"x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeDetail(t, w), "gettitle is required")
}

func TestDeleteBook(t *testing.T) {
	env := newTestEnv(t)
	env.createDune(t)

	w := env.do(http.MethodDelete, "/delete-book/Du", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var msg string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, "Du was deleted from the database", msg)

	w = env.do(http.MethodDelete, "/delete-book/Du", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "book does not exist", decodeDetail(t, w))
}

func TestListEntries(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/entries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	env.createDune(t)
	w = env.do(http.MethodGet, "/entries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"title":"Dune","author":"Frank Herbert","start_date":"2024-01-01","end_date":null,"rating":null,"notes":null}]`, w.Body.String())
}

func TestExportEntries(t *testing.T) {
	env := newTestEnv(t)
	env.createDune(t)

	w := env.do(http.MethodGet, "/entries/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bookshelf.xlsx")
	// xlsx is a zip archive
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	require.NoError(t, env.db.Close())
	w = env.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "database unavailable", decodeDetail(t, w))
}
