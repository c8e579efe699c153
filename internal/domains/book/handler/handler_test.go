package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	authorModel "book-catalog/internal/domains/author/model"
	authorRepo "book-catalog/internal/domains/author/repository"
	"book-catalog/internal/domains/book/repository"
	"book-catalog/internal/domains/book/service"
	"book-catalog/internal/infrastructure/database"
	"book-catalog/internal/shared/validate"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type testServer struct {
	router   *gin.Engine
	authorID int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.MigrateSQLite(context.Background(), db))

	authors := authorRepo.NewSQLiteRepository(db)
	books := repository.NewSQLiteRepository(db)
	v := validate.NewWithClock(func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) })

	birth := validate.NewDate(1828, time.September, 9)
	tolstoy, err := authors.Create(context.Background(), &authorModel.Author{Name: "Leo Tolstoy", BirthDate: &birth})
	require.NoError(t, err)

	bh := NewBookHandler(service.NewBookService(books, authors, v))
	ih := NewBulkImportHandler(service.NewBulkImportService(books, authors, v, 100), 1<<20)

	r := gin.New()
	g := r.Group("/api/v1/books")
	g.GET("", bh.ListBooks)
	g.POST("", bh.CreateBook)
	g.GET("/export", bh.ExportBooks)
	g.POST("/import", ih.ImportBooks)
	g.GET("/:id", bh.GetBookDetail)
	g.PUT("/:id", bh.UpdateBook)
	g.DELETE("/:id", bh.DeleteBook)

	return &testServer{router: r, authorID: tolstoy.ID}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.serve(t, req)
}

func (s *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *testServer) book(title, isbn string) gin.H {
	return gin.H{
		"title":          title,
		"author_id":      s.authorID,
		"published_date": "1869-01-01",
		"isbn":           isbn,
		"pages":          1225,
	}
}

func TestBookHandler_CRUD(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/v1/books", s.book("War and Peace", "978-0-14-044933-4"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID            int64  `json:"id"`
		ISBN          string `json:"isbn"`
		PublishedDate string `json:"published_date"`
		AuthorName    string `json:"author_name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "9780140449334", created.ISBN)
	assert.Equal(t, "1869-01-01", created.PublishedDate)
	assert.Equal(t, "Leo Tolstoy", created.AuthorName)

	w, _ = s.do(t, http.MethodGet, "/api/v1/books?search=peace", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	updated := s.book("War and Peace (revised)", "9780140449334")
	w, _ = s.do(t, http.MethodPut, "/api/v1/books/1", updated)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = s.do(t, http.MethodGet, "/api/v1/books/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "War and Peace (revised)")

	w, _ = s.do(t, http.MethodDelete, "/api/v1/books/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/v1/books/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "BOOK_NOT_FOUND", env.Error.Code)
}

func TestBookHandler_Errors(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/api/v1/books", s.book("War and Peace", "9780140449334"))
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := s.do(t, http.MethodPost, "/api/v1/books", s.book("Again", "9780140449334"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ISBN_ALREADY_EXISTS", env.Error.Code)

	missing := s.book("Ghost", "9780143035008")
	missing["author_id"] = 999
	w, env = s.do(t, http.MethodPost, "/api/v1/books", missing)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "AUTHOR_NOT_FOUND", env.Error.Code)

	invalid := s.book("", "12")
	invalid["published_date"] = "1700-01-01"
	w, env = s.do(t, http.MethodPost, "/api/v1/books", invalid)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var details []validate.FieldError
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	fe := validate.FieldErrors(details)
	assert.Equal(t, []validate.Kind{validate.KindEmptyField}, fe.Kinds(validate.FieldTitle))
	assert.Equal(t, []validate.Kind{validate.KindInconsistentDates}, fe.Kinds(validate.FieldPublishedDate))
	assert.Equal(t, []validate.Kind{validate.KindInvalidLength}, fe.Kinds(validate.FieldISBN))

	w, env = s.do(t, http.MethodGet, "/api/v1/books/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", env.Error.Code)
}

func multipartUpload(t *testing.T, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/books/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestBulkImportHandler(t *testing.T) {
	s := newTestServer(t)

	good := "title,author_name,published_date,isbn,pages\n" +
		"War and Peace,Leo Tolstoy,1869-01-01,9780140449334,1225\n" +
		"Anna Karenina,Leo Tolstoy,1878-01-01,9780143035008,864\n"
	w, env := s.serve(t, multipartUpload(t, "books.csv", []byte(good)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"total_rows":2`)

	bad := "title,author_name,published_date,isbn,pages\n" +
		"Resurrection,Leo Tolstoy,1899-01-01,9780140444506,1\n" +
		"Again,Leo Tolstoy,1869-01-01,9780140449334,1225\n"
	w, env = s.serve(t, multipartUpload(t, "books.csv", []byte(bad)))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "IMPORT_VALIDATION_FAILED", env.Error.Code)
	assert.Contains(t, string(env.Error.Details), `"row":3`)

	w, env = s.serve(t, multipartUpload(t, "books.pdf", []byte(good)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FILE", env.Error.Code)

	w, env = s.serve(t, multipartUpload(t, "books.csv", []byte("title,isbn\nA,1\n")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "IMPORT_BAD_HEADER", env.Error.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/books", nil)
	assert.Contains(t, w.Body.String(), `"total":2`, "rejected import stored nothing")
}

func TestBulkImportHandler_OversizedBodyRejected(t *testing.T) {
	s := newTestServer(t)

	content := "title,author_name,published_date,isbn,pages\n" +
		strings.Repeat("x", 3<<20) + "\n"
	w, env := s.serve(t, multipartUpload(t, "books.csv", []byte(content)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_FILE", env.Error.Code)
	assert.Contains(t, string(env.Error.Details), "too large")

	w, _ = s.do(t, http.MethodGet, "/api/v1/books", nil)
	assert.Contains(t, w.Body.String(), `"total":0`)
}

func TestExportBooks(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/api/v1/books", s.book("War and Peace", "9780140449334"))
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/books/export", nil)
	w, _ = s.serve(t, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(service.ExportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "War and Peace", rows[1][1])
}
