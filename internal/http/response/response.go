package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cinebridge-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError renders err through the apierr taxonomy. Both 401 kinds
// render identically and 5xx causes are never shown.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.As(err)
	if ae == nil {
		ae = apierr.Storage(nil)
	}
	msg := ae.Error()
	switch {
	case ae.Status == http.StatusUnauthorized:
		msg = apierr.CodeUnauthorized
	case ae.Status >= http.StatusInternalServerError:
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(ae.Status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    ae.Code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
