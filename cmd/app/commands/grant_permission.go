package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
	permissionUseCase "github.com/docg1701/iam-dashboard/internal/permission/usecase"
)

// RunGrantPermission creates or replaces a permission grant for a user on an
// agent scope. Any existing grant for the same (user, scope) pair is replaced.
// Outputs the resulting grant in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunGrantPermission(
	ctx context.Context,
	permissionUseCase permissionUseCase.PermissionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	userID string,
	scope string,
	grantedBy string,
	canCreate bool,
	canRead bool,
	canUpdate bool,
	canDelete bool,
	expiresAt string,
	format string,
) error {
	parsedUserID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}

	parsedGrantedBy, err := uuid.Parse(grantedBy)
	if err != nil {
		return fmt.Errorf("invalid granted-by ID: %w", err)
	}

	parsedScope, err := parseAgentScope(scope)
	if err != nil {
		return err
	}

	var expiry *time.Time
	if expiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, expiresAt)
		if err != nil {
			return fmt.Errorf("invalid expires-at (use RFC 3339, e.g. 2026-12-31T00:00:00Z): %w", err)
		}
		expiry = &parsed
	}

	logger.Info("granting permission",
		slog.String("user_id", parsedUserID.String()),
		slog.String("agent_scope", string(parsedScope)),
	)

	input := &permissionDomain.GrantInput{
		UserID:     parsedUserID,
		AgentScope: parsedScope,
		Flags: permissionDomain.OperationFlags{
			CanCreate: canCreate,
			CanRead:   canRead,
			CanUpdate: canUpdate,
			CanDelete: canDelete,
		},
		GrantedBy: parsedGrantedBy,
		ExpiresAt: expiry,
	}

	grant, err := permissionUseCase.Grant(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to grant permission: %w", err)
	}

	if format == "json" {
		outputGrantJSON(grant, writer)
	} else {
		outputGrantText(grant, writer)
	}

	logger.Info("permission granted successfully",
		slog.String("grant_id", grant.ID.String()),
		slog.String("user_id", grant.UserID.String()),
		slog.String("agent_scope", string(grant.AgentScope)),
	)

	return nil
}

// outputGrantText outputs the grant in human-readable text format.
func outputGrantText(grant *permissionDomain.PermissionGrant, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nPermission granted!")
	_, _ = fmt.Fprintf(writer, "Grant ID: %s\n", grant.ID.String())
	_, _ = fmt.Fprintf(writer, "User ID: %s\n", grant.UserID.String())
	_, _ = fmt.Fprintf(writer, "Agent scope: %s\n", grant.AgentScope)
	_, _ = fmt.Fprintf(
		writer,
		"Operations: create=%t read=%t update=%t delete=%t\n",
		grant.Flags.CanCreate,
		grant.Flags.CanRead,
		grant.Flags.CanUpdate,
		grant.Flags.CanDelete,
	)
	if grant.ExpiresAt != nil {
		_, _ = fmt.Fprintf(writer, "Expires at: %s\n", grant.ExpiresAt.Format(time.RFC3339))
	}
}

// outputGrantJSON outputs the grant in JSON format for machine consumption.
func outputGrantJSON(grant *permissionDomain.PermissionGrant, writer io.Writer) {
	jsonBytes, err := json.MarshalIndent(grant, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
