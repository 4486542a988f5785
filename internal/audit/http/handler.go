// Package http provides the read-only HTTP surface for the audit trail.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docg1701/iam-dashboard/internal/audit"
	auditDomain "github.com/docg1701/iam-dashboard/internal/audit/domain"
	auditRepository "github.com/docg1701/iam-dashboard/internal/audit/repository"
	"github.com/docg1701/iam-dashboard/internal/httputil"
)

// EntryResponse is the wire form of an audit entry.
type EntryResponse struct {
	ID           string         `json:"id"`
	ActorID      string         `json:"actor_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id,omitempty"`
	OldValues    map[string]any `json:"old_values,omitempty"`
	NewValues    map[string]any `json:"new_values,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ListEntriesResponse wraps a page of audit entries.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
}

// AuditHandler handles HTTP requests for audit trail reads.
type AuditHandler struct {
	recorder *audit.Recorder
	logger   *slog.Logger
}

// NewAuditHandler creates a new audit handler with required dependencies.
func NewAuditHandler(recorder *audit.Recorder, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		recorder: recorder,
		logger:   logger,
	}
}

// ListHandler returns audit entries newest first.
// GET /audit - Requires authentication and admin-scope read permission.
// Supports offset/limit pagination and optional actor_id and action filters.
func (h *AuditHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	filter := auditRepository.ListFilter{
		Limit:  limit,
		Offset: offset,
	}

	if actorIDStr := c.Query("actor_id"); actorIDStr != "" {
		actorID, err := uuid.Parse(actorIDStr)
		if err != nil {
			httputil.HandleBadRequestGin(c, err, h.logger)
			return
		}
		filter.ActorID = &actorID
	}

	if actionStr := c.Query("action"); actionStr != "" {
		action := auditDomain.Action(actionStr)
		filter.Action = &action
	}

	entries, err := h.recorder.List(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	responses := make([]*EntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = &EntryResponse{
			ID:           entry.ID.String(),
			ActorID:      entry.ActorID.String(),
			Action:       string(entry.Action),
			ResourceType: entry.ResourceType,
			ResourceID:   entry.ResourceID,
			OldValues:    entry.OldValues,
			NewValues:    entry.NewValues,
			CreatedAt:    entry.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, ListEntriesResponse{
		Entries: responses,
		Offset:  offset,
		Limit:   limit,
	})
}
