// Package http provides HTTP handlers and middleware for agent-scoped
// permission management.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/docg1701/iam-dashboard/internal/auth/http"
	apperrors "github.com/docg1701/iam-dashboard/internal/errors"
	"github.com/docg1701/iam-dashboard/internal/httputil"
	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
	"github.com/docg1701/iam-dashboard/internal/permission/http/dto"
	permissionUseCase "github.com/docg1701/iam-dashboard/internal/permission/usecase"
	customValidation "github.com/docg1701/iam-dashboard/internal/validation"
)

// PermissionHandler handles HTTP requests for grant management.
type PermissionHandler struct {
	permissionUseCase permissionUseCase.PermissionUseCase
	logger            *slog.Logger
}

// NewPermissionHandler creates a new permission handler with required dependencies.
func NewPermissionHandler(
	useCase permissionUseCase.PermissionUseCase,
	logger *slog.Logger,
) *PermissionHandler {
	return &PermissionHandler{
		permissionUseCase: useCase,
		logger:            logger,
	}
}

// GrantHandler creates or replaces the grant for a (user, scope) pair.
// POST /permissions/grant - Requires authentication and admin-scope update
// permission. The authenticated caller is recorded as the grantor.
// Returns 201 Created with the stored grant.
func (h *PermissionHandler) GrantHandler(c *gin.Context) {
	var req dto.GrantRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	actor, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	input := &permissionDomain.GrantInput{
		UserID:     userID,
		AgentScope: permissionDomain.AgentScope(req.AgentScope),
		Flags: permissionDomain.OperationFlags{
			CanCreate: req.CanCreate,
			CanRead:   req.CanRead,
			CanUpdate: req.CanUpdate,
			CanDelete: req.CanDelete,
		},
		GrantedBy: actor.ID,
		ExpiresAt: req.ExpiresAt,
	}

	grant, err := h.permissionUseCase.Grant(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapGrantToResponse(grant))
}

// RevokeHandler removes the grant for a (user, scope) pair.
// POST /permissions/revoke - Requires authentication and admin-scope delete
// permission. Returns 204 No Content, 404 when no grant exists.
func (h *PermissionHandler) RevokeHandler(c *gin.Context) {
	var req dto.RevokeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	actor, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	err = h.permissionUseCase.Revoke(
		c.Request.Context(),
		userID,
		permissionDomain.AgentScope(req.AgentScope),
		actor.ID,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHandler returns all grants held by a user.
// GET /permissions/:user_id - Requires authentication and admin-scope read
// permission. Returns 200 OK with the user's grants.
func (h *PermissionHandler) ListHandler(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	grants, err := h.permissionUseCase.List(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGrantsToListResponse(grants))
}
