package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apperrors "github.com/docg1701/iam-dashboard/internal/errors"
	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
)

func TestRunRevokePermission(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	userID := uuid.Must(uuid.NewV7())
	adminID := uuid.Must(uuid.NewV7())

	t.Run("success", func(t *testing.T) {
		mockUseCase := &mockPermissionUseCase{}
		mockUseCase.On("Revoke", ctx, userID, permissionDomain.ScopeReports, adminID).Return(nil)

		var out bytes.Buffer
		err := RunRevokePermission(ctx, mockUseCase, logger, &out, userID.String(), "reports", adminID.String())

		require.NoError(t, err)
		require.Contains(t, out.String(), "Permission revoked")
		require.Contains(t, out.String(), userID.String())
		mockUseCase.AssertExpectations(t)
	})

	t.Run("not-found", func(t *testing.T) {
		mockUseCase := &mockPermissionUseCase{}
		mockUseCase.On("Revoke", ctx, userID, permissionDomain.ScopeReports, adminID).
			Return(permissionDomain.ErrGrantNotFound)

		var out bytes.Buffer
		err := RunRevokePermission(ctx, mockUseCase, logger, &out, userID.String(), "reports", adminID.String())

		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("invalid-user-id", func(t *testing.T) {
		mockUseCase := &mockPermissionUseCase{}

		var out bytes.Buffer
		err := RunRevokePermission(ctx, mockUseCase, logger, &out, "nope", "reports", adminID.String())

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid user ID")
		mockUseCase.AssertNotCalled(t, "Revoke")
	})
}
