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

	permissionUseCase "github.com/docg1701/iam-dashboard/internal/permission/usecase"
)

// RunListPermissions prints all permission grants held by a user.
//
// Requirements: Database must be migrated and accessible.
func RunListPermissions(
	ctx context.Context,
	permissionUseCase permissionUseCase.PermissionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	userID string,
	format string,
) error {
	parsedUserID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}

	grants, err := permissionUseCase.List(ctx, parsedUserID)
	if err != nil {
		return fmt.Errorf("failed to list permissions: %w", err)
	}

	if format == "json" {
		jsonBytes, err := json.MarshalIndent(grants, "", "  ")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
			return nil
		}
		_, _ = fmt.Fprintln(writer, string(jsonBytes))
		return nil
	}

	if len(grants) == 0 {
		_, _ = fmt.Fprintf(writer, "No permission grants for user %s\n", parsedUserID)
		return nil
	}

	_, _ = fmt.Fprintf(writer, "Permission grants for user %s:\n", parsedUserID)
	for _, grant := range grants {
		expiry := "never"
		if grant.ExpiresAt != nil {
			expiry = grant.ExpiresAt.Format(time.RFC3339)
		}
		_, _ = fmt.Fprintf(
			writer,
			"  %s: create=%t read=%t update=%t delete=%t expires=%s\n",
			grant.AgentScope,
			grant.Flags.CanCreate,
			grant.Flags.CanRead,
			grant.Flags.CanUpdate,
			grant.Flags.CanDelete,
			expiry,
		)
	}

	return nil
}
