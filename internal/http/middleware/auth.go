package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cinebridge-backend/internal/clients/capability"
	"github.com/yungbote/cinebridge-backend/internal/http/response"
	"github.com/yungbote/cinebridge-backend/internal/observability"
	"github.com/yungbote/cinebridge-backend/internal/platform/apierr"
	"github.com/yungbote/cinebridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
	"github.com/yungbote/cinebridge-backend/internal/services"
)

type AuthMiddleware struct {
	log          *logger.Logger
	tokens       services.TokenValidator
	capabilities capability.Client
	metrics      *observability.Metrics
}

func NewAuthMiddleware(log *logger.Logger, tokens services.TokenValidator, capabilities capability.Client, metrics *observability.Metrics) *AuthMiddleware {
	return &AuthMiddleware{
		log:          log.With("middleware", "AuthMiddleware"),
		tokens:       tokens,
		capabilities: capabilities,
		metrics:      metrics,
	}
}

// RequireAuth attaches the subject carried by the bearer credential.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		subjectID, err := am.tokens.Validate(c.GetHeader("Authorization"))
		if err != nil || subjectID <= 0 {
			response.RespondAPIError(c, apierr.Unauthenticated())
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{SubjectID: subjectID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireCapability asks the capability authority before the handler runs.
// With itemScoped the :id path parameter is sent as the resource id.
func (am *AuthMiddleware) RequireCapability(action string, itemScoped bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		subjectID := ctxutil.SubjectID(ctx)
		if subjectID <= 0 {
			response.RespondAPIError(c, apierr.Unauthenticated())
			return
		}

		var resourceID *int64
		if itemScoped {
			id, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil || id <= 0 {
				response.RespondAPIError(c, apierr.Validation("invalid item id"))
				return
			}
			resourceID = &id
		}

		decision := am.capabilities.Check(ctx, subjectID, action, resourceID)
		am.metrics.IncCapabilityDecision(action, decision.String())
		if !decision.Permits() {
			am.log.Info("capability not granted", "subject_id", subjectID, "action", action, "decision", decision.String())
			response.RespondAPIError(c, apierr.Unauthorized())
			return
		}
		c.Next()
	}
}
