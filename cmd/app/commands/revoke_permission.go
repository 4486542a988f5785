package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	permissionUseCase "github.com/docg1701/iam-dashboard/internal/permission/usecase"
)

// RunRevokePermission removes a user's permission grant for an agent scope.
// Returns an error if no grant exists for the (user, scope) pair.
//
// Requirements: Database must be migrated and accessible.
func RunRevokePermission(
	ctx context.Context,
	permissionUseCase permissionUseCase.PermissionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	userID string,
	scope string,
	revokedBy string,
) error {
	parsedUserID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}

	parsedRevokedBy, err := uuid.Parse(revokedBy)
	if err != nil {
		return fmt.Errorf("invalid revoked-by ID: %w", err)
	}

	parsedScope, err := parseAgentScope(scope)
	if err != nil {
		return err
	}

	logger.Info("revoking permission",
		slog.String("user_id", parsedUserID.String()),
		slog.String("agent_scope", string(parsedScope)),
	)

	if err := permissionUseCase.Revoke(ctx, parsedUserID, parsedScope, parsedRevokedBy); err != nil {
		return fmt.Errorf("failed to revoke permission: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Permission revoked: user=%s scope=%s\n", parsedUserID, parsedScope)

	logger.Info("permission revoked successfully",
		slog.String("user_id", parsedUserID.String()),
		slog.String("agent_scope", string(parsedScope)),
	)

	return nil
}
