package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	authDomain "github.com/docg1701/iam-dashboard/internal/auth/domain"
	authUseCase "github.com/docg1701/iam-dashboard/internal/auth/usecase"
)

// RunCreateUser registers a new user account with the given role.
// Outputs the created user's ID, email and role in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunCreateUser(
	ctx context.Context,
	authUseCase authUseCase.AuthUseCase,
	logger *slog.Logger,
	writer io.Writer,
	email string,
	password string,
	role string,
	format string,
) error {
	logger.Info("creating new user", slog.String("email", email))

	parsedRole, err := parseRole(role)
	if err != nil {
		return err
	}

	input := &authDomain.CreateUserInput{
		Email:    email,
		Password: password,
		Role:     parsedRole,
	}

	user, err := authUseCase.CreateUser(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	snapshot := user.Snapshot()

	if format == "json" {
		outputUserJSON(&snapshot, writer)
	} else {
		outputUserText(&snapshot, writer)
	}

	logger.Info("user created successfully",
		slog.String("user_id", snapshot.ID.String()),
		slog.String("email", snapshot.Email),
		slog.String("role", string(snapshot.Role)),
	)

	return nil
}

// outputUserText outputs the result in human-readable text format.
func outputUserText(snapshot *authDomain.UserSnapshot, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nUser created successfully!")
	_, _ = fmt.Fprintf(writer, "User ID: %s\n", snapshot.ID.String())
	_, _ = fmt.Fprintf(writer, "Email: %s\n", snapshot.Email)
	_, _ = fmt.Fprintf(writer, "Role: %s\n", snapshot.Role)
}

// outputUserJSON outputs the result in JSON format for machine consumption.
func outputUserJSON(snapshot *authDomain.UserSnapshot, writer io.Writer) {
	jsonBytes, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
