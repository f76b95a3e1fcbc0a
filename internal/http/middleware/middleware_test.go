package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/cinebridge-backend/internal/clients/capability"
	"github.com/yungbote/cinebridge-backend/internal/observability"
	"github.com/yungbote/cinebridge-backend/internal/platform/apierr"
	"github.com/yungbote/cinebridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
)

const unauthorizedBody = `{"error":{"message":"unauthorized","code":"unauthorized"}}`

type stubTokens struct{}

func (stubTokens) Validate(header string) (int64, error) {
	if header == "Bearer good" {
		return 7, nil
	}
	return 0, apierr.ErrUnauthenticated
}

type stubCapabilities struct {
	decision capability.Decision
	calls    int
	action   string
	resource *int64
}

func (s *stubCapabilities) Check(_ context.Context, _ int64, action string, resourceID *int64) capability.Decision {
	s.calls++
	s.action = action
	s.resource = resourceID
	return s.decision
}

func newAuthRouter(caps *stubCapabilities) (*gin.Engine, *bool) {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.Nop(), stubTokens{}, caps, observability.NewMetrics())
	reached := false
	r := gin.New()
	r.POST("/items/:id/rate", am.RequireAuth(), am.RequireCapability(capability.ActionRate, true), func(c *gin.Context) {
		reached = true
		c.String(http.StatusOK, "%d", ctxutil.SubjectID(c.Request.Context()))
	})
	return r, &reached
}

func doRequest(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/items/5/rate", strings.NewReader(`{}`))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireCapabilityAllowed(t *testing.T) {
	caps := &stubCapabilities{decision: capability.Allowed}
	r, reached := newAuthRouter(caps)

	rec := doRequest(r, "Bearer good")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "7", rec.Body.String())
	require.True(t, *reached)
	require.Equal(t, capability.ActionRate, caps.action)
	require.NotNil(t, caps.resource)
	require.EqualValues(t, 5, *caps.resource)
}

func TestDenialsAreIndistinguishable(t *testing.T) {
	cases := map[string]struct {
		auth     string
		decision capability.Decision
	}{
		"missing credential": {auth: ""},
		"bad credential":     {auth: "Bearer bad", decision: capability.Allowed},
		"denied":             {auth: "Bearer good", decision: capability.Denied},
		"unavailable":        {auth: "Bearer good", decision: capability.Unavailable},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			caps := &stubCapabilities{decision: tc.decision}
			r, reached := newAuthRouter(caps)
			rec := doRequest(r, tc.auth)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.JSONEq(t, unauthorizedBody, rec.Body.String())
			require.False(t, *reached)
		})
	}
}

func TestCredentialRejectedBeforeCapabilityCheck(t *testing.T) {
	caps := &stubCapabilities{decision: capability.Allowed}
	r, _ := newAuthRouter(caps)
	doRequest(r, "Bearer bad")
	require.Zero(t, caps.calls)
}

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var td *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		td = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.NotNil(t, td)
	require.Equal(t, "req-1", td.RequestID)
	require.NotEmpty(t, td.TraceID)
	require.Equal(t, "req-1", rec.Header().Get(headerRequestID))
	require.Equal(t, td.TraceID, rec.Header().Get(headerTraceID))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, strings.Repeat("a", maxIDLen+1))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Len(t, rec.Header().Get(headerRequestID), 36)
}

func TestRequestLoggerDoesNotPanicWithoutLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(nil))
	r.GET("/x", func(c *gin.Context) { _ = c.Error(errors.New("boom")); c.Status(http.StatusInternalServerError) })
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil)) })
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
