package http

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/cinebridge-backend/internal/clients/capability"
	"github.com/yungbote/cinebridge-backend/internal/data/repos"
	"github.com/yungbote/cinebridge-backend/internal/data/repos/testutil"
	"github.com/yungbote/cinebridge-backend/internal/events"
	httpH "github.com/yungbote/cinebridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cinebridge-backend/internal/http/middleware"
	"github.com/yungbote/cinebridge-backend/internal/observability"
	"github.com/yungbote/cinebridge-backend/internal/platform/validation"
	"github.com/yungbote/cinebridge-backend/internal/realtime/bus"
	"github.com/yungbote/cinebridge-backend/internal/services"
)

const routerSecret = "router-secret"

// authority grants every action listed for a subject.
type authority struct {
	mu     sync.Mutex
	grants map[int64]map[string]bool
	down   bool
}

func (a *authority) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.down {
		w.WriteHeader(nethttp.StatusBadGateway)
		return
	}
	var req struct {
		SubjectID int64  `json:"subject_id"`
		Action    string `json:"action"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	_ = json.NewEncoder(w).Encode(map[string]bool{"allowed": a.grants[req.SubjectID][req.Action]})
}

type routerFixture struct {
	engine *gin.Engine
	auth   *authority
	bus    *bus.MemoryBus
	got    []events.Event
	mu     sync.Mutex
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)

	auth := &authority{grants: map[int64]map[string]bool{
		1: {capability.ActionRate: true, capability.ActionComment: true, capability.ActionTag: true},
		9: {capability.ActionAdmin: true},
	}}
	authSrv := httptest.NewServer(auth)
	t.Cleanup(authSrv.Close)
	caps, err := capability.New(log, capability.Config{BaseURL: authSrv.URL, Timeout: time.Second})
	require.NoError(t, err)

	tokens, err := services.NewTokenValidator(log, routerSecret, "HS256")
	require.NoError(t, err)

	f := &routerFixture{auth: auth, bus: bus.NewMemoryBus()}
	require.NoError(t, events.Listen(t.Context(), f.bus, "movies", func(e events.Event) {
		f.mu.Lock()
		f.got = append(f.got, e)
		f.mu.Unlock()
	}))
	pub := events.NewPublisher(log, f.bus, "movies", time.Second)

	v := validation.New()
	itemRepo := repos.NewItemRepo(db, log)
	labelRepo := repos.NewLabelRepo(db, log)
	itemLabelRepo := repos.NewItemLabelRepo(db, log)
	interactionRepo := repos.NewInteractionRepo(db, log)
	catalog := services.NewCatalogService(db, log, itemRepo, labelRepo, itemLabelRepo, interactionRepo,
		services.NewLabelResolver(db, log, labelRepo, itemLabelRepo),
		services.NewInteractionEngine(db, log, interactionRepo, v),
		pub, v)

	metrics := observability.NewMetrics()
	f.engine = NewRouter(RouterConfig{
		Log:            log,
		Metrics:        metrics,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, tokens, caps, metrics),
		ItemHandler:    httpH.NewItemHandler(catalog),
		HealthHandler:  httpH.NewHealthHandler(nil),
	})
	t.Cleanup(func() { _ = pub.Close() })
	return f
}

func bearer(t *testing.T, subject int64) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(routerSecret))
	require.NoError(t, err)
	return "Bearer " + tok
}

func (f *routerFixture) do(method, target, auth, body string) *httptest.ResponseRecorder {
	var req *nethttp.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func (f *routerFixture) events() []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.Event(nil), f.got...)
}

func TestRouterItemLifecycle(t *testing.T) {
	f := newRouterFixture(t)
	admin := bearer(t, 9)
	user := bearer(t, 1)

	rec := f.do(nethttp.MethodPost, "/api/items", admin, `{"title":"Heat","labels":["Crime","crime"],"tags":["Classic"]}`)
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	path := "/api/items/" + jsonNumber(created.ID)

	rec = f.do(nethttp.MethodGet, path, "", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.JSONEq(t, `[{"id":`+jsonNumber(created.ID)+`,"title":"Heat","genres":["crime"],"tags":["classic"]}]`, rec.Body.String())

	require.Equal(t, nethttp.StatusOK, f.do(nethttp.MethodPost, path+"/rate", user, `{"rating":5}`).Code)
	require.Equal(t, nethttp.StatusOK, f.do(nethttp.MethodPost, path+"/rate", user, `{"rating":8}`).Code)
	require.Equal(t, nethttp.StatusBadRequest, f.do(nethttp.MethodPost, path+"/rate", user, `{"rating":11}`).Code)
	require.Equal(t, nethttp.StatusOK, f.do(nethttp.MethodPost, path+"/comment", user, `{"text":"tense"}`).Code)
	require.Equal(t, nethttp.StatusOK, f.do(nethttp.MethodPost, path+"/tag", user, `{"name":"Heist","relevance":0.8}`).Code)
	require.Equal(t, nethttp.StatusOK, f.do(nethttp.MethodDelete, path+"/comment", user, "").Code)

	require.Eventually(t, func() bool { return len(f.events()) == 2 }, time.Second, 10*time.Millisecond)
	for _, e := range f.events() {
		require.Equal(t, events.KindItemRated, e.Kind)
		require.Equal(t, []string{"crime"}, e.Rated.Genres)
	}

	require.Equal(t, nethttp.StatusOK, f.do(nethttp.MethodDelete, path, admin, "").Code)
	rec = f.do(nethttp.MethodGet, path, "", "")
	require.JSONEq(t, `[]`, rec.Body.String())
	require.Equal(t, nethttp.StatusNotFound, f.do(nethttp.MethodPost, path+"/rate", user, `{"rating":5}`).Code)
}

func TestRouterDenialsShareOneResponse(t *testing.T) {
	f := newRouterFixture(t)
	admin := bearer(t, 9)
	rec := f.do(nethttp.MethodPost, "/api/items", admin, `{"title":"Heat"}`)
	require.Equal(t, nethttp.StatusCreated, rec.Code)

	const want = `{"error":{"message":"unauthorized","code":"unauthorized"}}`
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": 1, "exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte(routerSecret))
	require.NoError(t, err)

	cases := map[string]func() *httptest.ResponseRecorder{
		"no credential": func() *httptest.ResponseRecorder {
			return f.do(nethttp.MethodPost, "/api/items/1/rate", "", `{"rating":5}`)
		},
		"expired credential": func() *httptest.ResponseRecorder {
			return f.do(nethttp.MethodPost, "/api/items/1/rate", "Bearer "+expired, `{"rating":5}`)
		},
		"capability denied": func() *httptest.ResponseRecorder {
			return f.do(nethttp.MethodPost, "/api/items", bearer(t, 1), `{"title":"Ronin"}`)
		},
		"authority down": func() *httptest.ResponseRecorder {
			f.auth.mu.Lock()
			f.auth.down = true
			f.auth.mu.Unlock()
			defer func() {
				f.auth.mu.Lock()
				f.auth.down = false
				f.auth.mu.Unlock()
			}()
			return f.do(nethttp.MethodPost, "/api/items/1/rate", bearer(t, 1), `{"rating":5}`)
		},
	}
	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			rec := call()
			require.Equal(t, nethttp.StatusUnauthorized, rec.Code)
			require.JSONEq(t, want, rec.Body.String())
		})
	}
	require.Empty(t, f.events())
}

func TestRouterHealthAndMetrics(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(nethttp.MethodGet, "/healthcheck", "", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	rec = f.do(nethttp.MethodGet, "/metrics", "", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "cb_api_requests_total")
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
