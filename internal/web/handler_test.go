package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authorRepo "book-catalog/internal/domains/author/repository"
	authorService "book-catalog/internal/domains/author/service"
	bookModel "book-catalog/internal/domains/book/model"
	bookRepo "book-catalog/internal/domains/book/repository"
	bookService "book-catalog/internal/domains/book/service"
	"book-catalog/internal/infrastructure/database"
	"book-catalog/internal/shared/validate"
)

type site struct {
	router  *gin.Engine
	authors authorService.ServiceInterface
	books   bookService.ServiceInterface
}

func newSite(t *testing.T) *site {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.MigrateSQLite(context.Background(), db))

	v := validate.NewWithClock(func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) })
	ar := authorRepo.NewSQLiteRepository(db)
	s := &site{
		authors: authorService.NewAuthorService(ar, v),
		books:   bookService.NewBookService(bookRepo.NewSQLiteRepository(db), ar, v),
	}

	r := gin.New()
	r.SetHTMLTemplate(Templates())
	NewHandler(s.authors, s.books).RegisterRoutes(r)
	s.router = r
	return s
}

func (s *site) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (s *site) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *site) seedAuthor(t *testing.T, name, birth string) int64 {
	t.Helper()
	in := validate.AuthorInput{Name: name}
	if birth != "" {
		d, fe := validate.ParseDate(validate.FieldBirthDate, birth)
		require.Nil(t, fe)
		in.BirthDate = d
	}
	a, err := s.authors.Create(context.Background(), in)
	require.NoError(t, err)
	return a.ID
}

func TestTemplatesParse(t *testing.T) {
	tmpl := Templates()
	for _, name := range []string{
		"home.html", "author_list.html", "author_detail.html", "author_form.html",
		"book_list.html", "book_detail.html", "book_form.html", "confirm_delete.html", "error.html",
	} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestHome_ShowsCounts(t *testing.T) {
	s := newSite(t)
	s.seedAuthor(t, "Leo Tolstoy", "")

	w := s.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Authors in the catalog: <strong>1</strong>")
	assert.Contains(t, w.Body.String(), "Books in the catalog: <strong>0</strong>")
}

func TestAuthorCreate_RedirectsHome(t *testing.T) {
	s := newSite(t)

	w := s.post("/authors/new", url.Values{"name": {"Jane Austen"}, "birth_date": {"1775-12-16"}, "bio": {"novelist"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = s.get("/authors")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Jane Austen")
}

func TestAuthorCreate_InvalidRerendersForm(t *testing.T) {
	s := newSite(t)

	w := s.post("/authors/new", url.Values{"name": {"J4ne"}, "birth_date": {"not-a-date"}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `value="J4ne"`, "typed values are kept")
	assert.Contains(t, body, `value="not-a-date"`)
	assert.Contains(t, body, "enter a valid date (YYYY-MM-DD)")
	assert.Contains(t, body, "name may contain only letters, spaces and hyphens")

	n, err := s.authors.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAuthorPages_NotFound(t *testing.T) {
	s := newSite(t)

	for _, path := range []string{"/authors/99", "/authors/abc", "/authors/99/edit", "/authors/99/delete", "/books/5", "/books/5/edit"} {
		w := s.get(path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
	assert.Equal(t, http.StatusNotFound, s.post("/authors/99/delete", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.post("/authors/99/edit", url.Values{"name": {""}}).Code)
}

func TestAuthorUpdateAndDelete(t *testing.T) {
	s := newSite(t)
	id := s.seedAuthor(t, "Mark Twain", "")
	path := "/authors/" + itoa(id)

	w := s.get(path + "/edit")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Mark Twain"`)

	w = s.post(path+"/edit", url.Values{"name": {"Samuel Clemens"}})
	require.Equal(t, http.StatusFound, w.Code)

	w = s.get(path)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Samuel Clemens")

	w = s.get(path + "/delete")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Are you sure")

	w = s.post(path+"/delete", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, http.StatusNotFound, s.get(path).Code)
}

func bookValues(authorID int64) url.Values {
	return url.Values{
		"title":          {"War and Peace"},
		"author_id":      {itoa(authorID)},
		"published_date": {"1869-01-01"},
		"isbn":           {"978-0-14-044933-4"},
		"pages":          {"1225"},
	}
}

func TestBookCreate_FlowAndDuplicate(t *testing.T) {
	s := newSite(t)
	authorID := s.seedAuthor(t, "Leo Tolstoy", "1828-09-09")

	w := s.get("/books/new?author_id=" + itoa(authorID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "selected>Leo Tolstoy")

	w = s.post("/books/new", bookValues(authorID))
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	w = s.post("/books/new", bookValues(authorID))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "a book with this ISBN already exists")

	w = s.get("/authors/" + itoa(authorID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "War and Peace")
	assert.Contains(t, w.Body.String(), "1869-01-01")

	w = s.get("/authors/" + itoa(authorID) + "/delete")
	assert.Contains(t, w.Body.String(), "This will also delete 1 book(s)")
}

func TestBookCreate_DecodeErrorsWin(t *testing.T) {
	s := newSite(t)
	authorID := s.seedAuthor(t, "Leo Tolstoy", "1828-09-09")

	form := bookValues(authorID)
	form.Set("pages", "lots")
	form.Set("published_date", "1800-01-01")
	form.Set("title", "")

	w := s.post("/books/new", form)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "enter a whole number")
	assert.NotContains(t, body, "number of pages cannot be empty")
	assert.Contains(t, body, "title cannot be empty")
	assert.Contains(t, body, "book cannot be published before the author was born")
}

func TestBookCreate_UnknownAuthor(t *testing.T) {
	s := newSite(t)

	w := s.post("/books/new", bookValues(404))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "selected author does not exist")
}

func TestBookEditAndDelete(t *testing.T) {
	s := newSite(t)
	authorID := s.seedAuthor(t, "Leo Tolstoy", "")
	require.Equal(t, http.StatusFound, s.post("/books/new", bookValues(authorID)).Code)

	books, err := s.books.List(context.Background(), bookModel.BookFilter{})
	require.NoError(t, err)
	require.Len(t, books, 1)
	path := "/books/" + itoa(books[0].ID)

	w := s.get(path + "/edit")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="9780140449334"`)

	form := bookValues(authorID)
	form.Set("pages", "1300")
	require.Equal(t, http.StatusFound, s.post(path+"/edit", form).Code)

	w = s.get(path)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "1300")

	form.Set("pages", "0")
	assert.Equal(t, http.StatusUnprocessableEntity, s.post(path+"/edit", form).Code)

	require.Equal(t, http.StatusFound, s.post(path+"/delete", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.get(path).Code)
}

func TestBookList_Search(t *testing.T) {
	s := newSite(t)
	authorID := s.seedAuthor(t, "Leo Tolstoy", "")
	require.Equal(t, http.StatusFound, s.post("/books/new", bookValues(authorID)).Code)

	w := s.get("/books?q=peace")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "War and Peace")

	w = s.get("/books?q=karenina")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "War and Peace")
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
