package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/cinebridge-backend/internal/domain/catalog"
	"github.com/yungbote/cinebridge-backend/internal/platform/apierr"
	"github.com/yungbote/cinebridge-backend/internal/services"
)

type fakeCatalog struct {
	views      []types.ItemView
	err        error
	rated      []float64
	comments   []string
	tags       []string
	uploaded   []services.UploadInput
	deleted    []int64
	uncomments int
}

func (f *fakeCatalog) GetItem(_ context.Context, id int64) ([]types.ItemView, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.views == nil {
		return []types.ItemView{}, nil
	}
	return f.views, nil
}

func (f *fakeCatalog) Rate(_ context.Context, _ int64, rating float64) error {
	f.rated = append(f.rated, rating)
	return f.err
}

func (f *fakeCatalog) Comment(_ context.Context, _ int64, text string) error {
	f.comments = append(f.comments, text)
	return f.err
}

func (f *fakeCatalog) DeleteComment(context.Context, int64) error {
	f.uncomments++
	return f.err
}

func (f *fakeCatalog) Tag(_ context.Context, _ int64, name string, _ float64) error {
	f.tags = append(f.tags, name)
	return f.err
}

func (f *fakeCatalog) Upload(_ context.Context, in services.UploadInput) (int64, error) {
	f.uploaded = append(f.uploaded, in)
	return 11, f.err
}

func (f *fakeCatalog) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func newItemRouter(cat services.CatalogService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewItemHandler(cat)
	r := gin.New()
	r.GET("/api/items/:id", h.GetItem)
	r.POST("/api/items/:id/rate", h.Rate)
	r.POST("/api/items/:id/comment", h.Comment)
	r.DELETE("/api/items/:id/comment", h.DeleteComment)
	r.POST("/api/items/:id/tag", h.Tag)
	r.POST("/api/items", h.Upload)
	r.DELETE("/api/items/:id", h.Delete)
	return r
}

func serve(r http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	var rdr *strings.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	var req *http.Request
	if rdr != nil {
		req = httptest.NewRequest(method, target, rdr)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetItem(t *testing.T) {
	cat := &fakeCatalog{}
	r := newItemRouter(cat)

	rec := serve(r, http.MethodGet, "/api/items/3", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	cat.views = []types.ItemView{{ID: 3, Title: "Heat", Genres: []string{"crime"}, Tags: []string{}}}
	rec = serve(r, http.MethodGet, "/api/items/3", "", "")
	require.JSONEq(t, `[{"id":3,"title":"Heat","genres":["crime"],"tags":[]}]`, rec.Body.String())

	rec = serve(r, http.MethodGet, "/api/items/abc", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateBinding(t *testing.T) {
	cat := &fakeCatalog{}
	r := newItemRouter(cat)

	rec := serve(r, http.MethodPost, "/api/items/3/rate", "application/json", `{"rating":8}`)
	require.Equal(t, http.StatusOK, rec.Code)

	form := url.Values{"rating": {"4"}}.Encode()
	rec = serve(r, http.MethodPost, "/api/items/3/rate", "application/x-www-form-urlencoded", form)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []float64{8, 4}, cat.rated)

	rec = serve(r, http.MethodPost, "/api/items/3/rate", "application/json", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, cat.rated, 2)
}

func TestCommentAcceptsBodyOrQuery(t *testing.T) {
	cat := &fakeCatalog{}
	r := newItemRouter(cat)

	require.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/items/3/comment", "application/json", `{"text":"nice"}`).Code)
	require.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/items/3/comment?text=great", "", "").Code)
	require.Equal(t, []string{"nice", "great"}, cat.comments)

	require.Equal(t, http.StatusOK, serve(r, http.MethodDelete, "/api/items/3/comment", "", "").Code)
	require.Equal(t, 1, cat.uncomments)
}

func TestTagAndUpload(t *testing.T) {
	cat := &fakeCatalog{}
	r := newItemRouter(cat)

	rec := serve(r, http.MethodPost, "/api/items/3/tag", "application/json", `{"name":"Classic","relevance":0.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"Classic"}, cat.tags)

	rec = serve(r, http.MethodPost, "/api/items/3/tag", "application/json", `{"name":"Classic"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, http.MethodPost, "/api/items", "application/json", `{"title":"Heat","labels":["crime"],"tags":["classic"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"id":11}`, rec.Body.String())
	require.Equal(t, services.UploadInput{Title: "Heat", Labels: []string{"crime"}, Tags: []string{"classic"}}, cat.uploaded[0])

	rec = serve(r, http.MethodPost, "/api/items", "application/json", `{"labels":["crime"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServiceErrorsAreMapped(t *testing.T) {
	cat := &fakeCatalog{err: apierr.NotFound("item")}
	r := newItemRouter(cat)
	rec := serve(r, http.MethodDelete, "/api/items/9", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	cat.err = apierr.Storage(errors.New("connection reset by peer"))
	rec = serve(r, http.MethodPost, "/api/items/9/rate", "application/json", `{"rating":5}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "connection reset")
}
