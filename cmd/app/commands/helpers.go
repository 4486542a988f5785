// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"

	"github.com/docg1701/iam-dashboard/internal/app"
	authDomain "github.com/docg1701/iam-dashboard/internal/auth/domain"
	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// parseRole converts a role string to authDomain.Role.
// Returns an error if the role string is invalid.
func parseRole(role string) (authDomain.Role, error) {
	switch strings.ToLower(role) {
	case "admin":
		return authDomain.RoleAdmin, nil
	case "manager":
		return authDomain.RoleManager, nil
	case "operator":
		return authDomain.RoleOperator, nil
	default:
		return "", fmt.Errorf("invalid role: %s (valid options: admin, manager, operator)", role)
	}
}

// parseAgentScope converts a scope string to permissionDomain.AgentScope.
// Returns an error if the scope string is invalid.
func parseAgentScope(scope string) (permissionDomain.AgentScope, error) {
	parsed := permissionDomain.AgentScope(strings.ToLower(scope))
	if !parsed.Valid() {
		return "", fmt.Errorf(
			"invalid agent scope: %s (valid options: clients, documents, reports, billing, admin)",
			scope,
		)
	}
	return parsed, nil
}
