package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
)

type Decision int

const (
	Unavailable Decision = iota
	Denied
	Allowed
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	default:
		return "unavailable"
	}
}

// Permits is the one place a decision becomes access. Only an explicit
// Allowed grants; Unavailable is treated as Denied.
func (d Decision) Permits() bool {
	switch d {
	case Allowed:
		return true
	case Denied, Unavailable:
		return false
	default:
		return false
	}
}

const (
	ActionRate    = "rate"
	ActionTag     = "tag"
	ActionComment = "comment"
	ActionAdmin   = "admin"
)

// Client asks the remote authority whether a subject may perform an action.
// It never returns an error: every failure is reported as Unavailable.
type Client interface {
	Check(ctx context.Context, subjectID int64, action string, resourceID *int64) Decision
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type client struct {
	log        *logger.Logger
	endpoint   string
	httpClient *http.Client
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("missing AUTH_SERVICE_ADDRESS")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &client{
		log:      log.With("client", "CapabilityClient"),
		endpoint: base + "/check",
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

type checkRequest struct {
	SubjectID  int64  `json:"subject_id"`
	Action     string `json:"action"`
	ResourceID *int64 `json:"resource_id,omitempty"`
}

type checkResponse struct {
	Allowed *bool `json:"allowed"`
}

func (c *client) Check(ctx context.Context, subjectID int64, action string, resourceID *int64) (decision Decision) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("capability check panicked", "action", action, "panic", r)
			decision = Unavailable
		}
	}()

	body, err := json.Marshal(checkRequest{SubjectID: subjectID, Action: action, ResourceID: resourceID})
	if err != nil {
		c.log.Warn("capability request encode failed", "action", action, "error", err)
		return Unavailable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		c.log.Warn("capability request build failed", "action", action, "error", err)
		return Unavailable
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("capability authority unreachable", "action", action, "error", err)
		return Unavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		c.log.Warn("capability authority returned non-success", "action", action, "status", resp.StatusCode)
		return Unavailable
	}

	var out checkResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&out); err != nil || out.Allowed == nil {
		c.log.Warn("capability response undecodable", "action", action, "error", err)
		return Unavailable
	}
	if *out.Allowed {
		return Allowed
	}
	return Denied
}
