package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/docg1701/iam-dashboard/internal/auth/http"
	apperrors "github.com/docg1701/iam-dashboard/internal/errors"
	"github.com/docg1701/iam-dashboard/internal/httputil"
	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
	permissionUseCase "github.com/docg1701/iam-dashboard/internal/permission/usecase"
)

// RequireScope authorizes the authenticated user for one (scope, operation)
// pair before the handler runs. Denial is 403; a missing identity is 401; an
// evaluation failure surfaces as the mapped infrastructure error, never as a
// silent allow.
func RequireScope(
	useCase permissionUseCase.PermissionUseCase,
	scope permissionDomain.AgentScope,
	op permissionDomain.Operation,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authHTTP.GetUser(c.Request.Context())
		if !ok {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		allowed, err := useCase.Validate(c.Request.Context(), user.ID, scope, op)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		if !allowed {
			logger.Warn("permission denied",
				slog.String("user_id", user.ID.String()),
				slog.String("agent_scope", string(scope)),
				slog.String("operation", string(op)),
			)
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
