package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
)

func TestRunListPermissions(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	userID := uuid.Must(uuid.NewV7())

	grants := []*permissionDomain.PermissionGrant{
		{
			ID:         uuid.Must(uuid.NewV7()),
			UserID:     userID,
			AgentScope: permissionDomain.ScopeClients,
			Flags:      permissionDomain.OperationFlags{CanRead: true},
			GrantedBy:  uuid.Must(uuid.NewV7()),
			GrantedAt:  time.Now().UTC(),
		},
		{
			ID:         uuid.Must(uuid.NewV7()),
			UserID:     userID,
			AgentScope: permissionDomain.ScopeReports,
			Flags:      permissionDomain.OperationFlags{CanRead: true, CanCreate: true},
			GrantedBy:  uuid.Must(uuid.NewV7()),
			GrantedAt:  time.Now().UTC(),
		},
	}

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &mockPermissionUseCase{}
		mockUseCase.On("List", ctx, userID).Return(grants, nil)

		var out bytes.Buffer
		err := RunListPermissions(ctx, mockUseCase, logger, &out, userID.String(), "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "clients")
		require.Contains(t, out.String(), "reports")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("empty", func(t *testing.T) {
		mockUseCase := &mockPermissionUseCase{}
		mockUseCase.On("List", ctx, userID).Return([]*permissionDomain.PermissionGrant{}, nil)

		var out bytes.Buffer
		err := RunListPermissions(ctx, mockUseCase, logger, &out, userID.String(), "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "No permission grants")
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &mockPermissionUseCase{}
		mockUseCase.On("List", ctx, userID).Return(grants, nil)

		var out bytes.Buffer
		err := RunListPermissions(ctx, mockUseCase, logger, &out, userID.String(), "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), "[")
		require.Contains(t, out.String(), grants[0].ID.String())
	})

	t.Run("invalid-user-id", func(t *testing.T) {
		mockUseCase := &mockPermissionUseCase{}

		var out bytes.Buffer
		err := RunListPermissions(ctx, mockUseCase, logger, &out, "nope", "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid user ID")
		mockUseCase.AssertNotCalled(t, "List")
	})

	t.Run("usecase-error", func(t *testing.T) {
		mockUseCase := &mockPermissionUseCase{}
		mockUseCase.On("List", ctx, userID).Return(nil, errors.New("boom"))

		var out bytes.Buffer
		err := RunListPermissions(ctx, mockUseCase, logger, &out, userID.String(), "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to list permissions")
	})
}
