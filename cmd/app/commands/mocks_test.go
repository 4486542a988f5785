package commands

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/docg1701/iam-dashboard/internal/auth/domain"
	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
)

type mockAuthUseCase struct {
	mock.Mock
}

func (m *mockAuthUseCase) Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.LoginOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.LoginOutput), args.Error(1)
}

func (m *mockAuthUseCase) Refresh(ctx context.Context, plainRefreshToken string) (*authDomain.TokenPair, error) {
	args := m.Called(ctx, plainRefreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.TokenPair), args.Error(1)
}

func (m *mockAuthUseCase) Logout(ctx context.Context, plainRefreshToken string) error {
	args := m.Called(ctx, plainRefreshToken)
	return args.Error(0)
}

func (m *mockAuthUseCase) Me(ctx context.Context, userID uuid.UUID) (*authDomain.UserSnapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.UserSnapshot), args.Error(1)
}

func (m *mockAuthUseCase) SetupTOTP(ctx context.Context, userID uuid.UUID) (*authDomain.SetupTOTPOutput, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.SetupTOTPOutput), args.Error(1)
}

func (m *mockAuthUseCase) EnableTOTP(ctx context.Context, userID uuid.UUID, code string) error {
	args := m.Called(ctx, userID, code)
	return args.Error(0)
}

func (m *mockAuthUseCase) DisableTOTP(ctx context.Context, userID uuid.UUID, code string) error {
	args := m.Called(ctx, userID, code)
	return args.Error(0)
}

func (m *mockAuthUseCase) CreateUser(ctx context.Context, input *authDomain.CreateUserInput) (*authDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

type mockPermissionUseCase struct {
	mock.Mock
}

func (m *mockPermissionUseCase) Validate(
	ctx context.Context,
	userID uuid.UUID,
	scope permissionDomain.AgentScope,
	op permissionDomain.Operation,
) (bool, error) {
	args := m.Called(ctx, userID, scope, op)
	return args.Bool(0), args.Error(1)
}

func (m *mockPermissionUseCase) Grant(
	ctx context.Context,
	input *permissionDomain.GrantInput,
) (*permissionDomain.PermissionGrant, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*permissionDomain.PermissionGrant), args.Error(1)
}

func (m *mockPermissionUseCase) Revoke(
	ctx context.Context,
	userID uuid.UUID,
	scope permissionDomain.AgentScope,
	revokedBy uuid.UUID,
) error {
	args := m.Called(ctx, userID, scope, revokedBy)
	return args.Error(0)
}

func (m *mockPermissionUseCase) List(
	ctx context.Context,
	userID uuid.UUID,
) ([]*permissionDomain.PermissionGrant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permissionDomain.PermissionGrant), args.Error(1)
}
