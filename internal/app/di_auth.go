package app

import (
	"fmt"
	"sync"

	authHTTP "github.com/docg1701/iam-dashboard/internal/auth/http"
	authRepository "github.com/docg1701/iam-dashboard/internal/auth/repository"
	authService "github.com/docg1701/iam-dashboard/internal/auth/service"
	authUsecase "github.com/docg1701/iam-dashboard/internal/auth/usecase"
)

// authComponents groups the session lifecycle dependencies held by the container.
type authComponents struct {
	userRepo        authUsecase.UserRepository
	refreshRepo     authUsecase.RefreshTokenRepository
	tokenService    authService.TokenService
	passwordService authService.PasswordService
	totpService     authService.TOTPService
	useCase         authUsecase.AuthUseCase
	handler         *authHTTP.AuthHandler

	userRepoInit        sync.Once
	refreshRepoInit     sync.Once
	tokenServiceInit    sync.Once
	passwordServiceInit sync.Once
	totpServiceInit     sync.Once
	useCaseInit         sync.Once
	handlerInit         sync.Once
}

// UserRepository returns the user repository instance.
func (c *Container) UserRepository() (authUsecase.UserRepository, error) {
	var err error
	c.auth.userRepoInit.Do(func() {
		c.auth.userRepo, err = c.initUserRepository()
		if err != nil {
			c.initErrors["userRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.auth.userRepo, nil
}

// RefreshTokenRepository returns the refresh token repository instance.
func (c *Container) RefreshTokenRepository() (authUsecase.RefreshTokenRepository, error) {
	var err error
	c.auth.refreshRepoInit.Do(func() {
		c.auth.refreshRepo, err = c.initRefreshTokenRepository()
		if err != nil {
			c.initErrors["refreshRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["refreshRepo"]; exists {
		return nil, storedErr
	}
	return c.auth.refreshRepo, nil
}

// TokenService returns the access/refresh token service.
func (c *Container) TokenService() (authService.TokenService, error) {
	var err error
	c.auth.tokenServiceInit.Do(func() {
		c.auth.tokenService, err = authService.NewTokenService(authService.TokenConfig{
			SigningKey: []byte(c.config.JWTSigningKey),
			Issuer:     c.config.JWTIssuer,
			AccessTTL:  c.config.AccessTokenExpiration,
		})
		if err != nil {
			c.initErrors["tokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.auth.tokenService, nil
}

// PasswordService returns the password hashing service.
func (c *Container) PasswordService() authService.PasswordService {
	c.auth.passwordServiceInit.Do(func() {
		c.auth.passwordService = authService.NewPasswordService()
	})
	return c.auth.passwordService
}

// TOTPService returns the TOTP service.
func (c *Container) TOTPService() authService.TOTPService {
	c.auth.totpServiceInit.Do(func() {
		c.auth.totpService = authService.NewTOTPService(c.config.TOTPIssuer)
	})
	return c.auth.totpService
}

// AuthUseCase returns the auth use case instance.
func (c *Container) AuthUseCase() (authUsecase.AuthUseCase, error) {
	var err error
	c.auth.useCaseInit.Do(func() {
		c.auth.useCase, err = c.initAuthUseCase()
		if err != nil {
			c.initErrors["authUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authUseCase"]; exists {
		return nil, storedErr
	}
	return c.auth.useCase, nil
}

// AuthHandler returns the auth HTTP handler.
func (c *Container) AuthHandler() (*authHTTP.AuthHandler, error) {
	var err error
	c.auth.handlerInit.Do(func() {
		var useCase authUsecase.AuthUseCase
		useCase, err = c.AuthUseCase()
		if err != nil {
			c.initErrors["authHandler"] = err
			return
		}
		c.auth.handler = authHTTP.NewAuthHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authHandler"]; exists {
		return nil, storedErr
	}
	return c.auth.handler, nil
}

// initUserRepository creates the user repository instance.
func (c *Container) initUserRepository() (authUsecase.UserRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return authRepository.NewMySQLUserRepository(db), nil
	case "postgres":
		return authRepository.NewPostgreSQLUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRefreshTokenRepository creates the refresh token repository instance.
func (c *Container) initRefreshTokenRepository() (authUsecase.RefreshTokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for refresh token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return authRepository.NewMySQLRefreshTokenRepository(db), nil
	case "postgres":
		return authRepository.NewPostgreSQLRefreshTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuthUseCase creates the auth use case with all its dependencies.
func (c *Container) initAuthUseCase() (authUsecase.AuthUseCase, error) {
	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for auth use case: %w", err)
	}

	refreshRepo, err := c.RefreshTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token repository for auth use case: %w", err)
	}

	tokenService, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for auth use case: %w", err)
	}

	auditRecorder, err := c.AuditRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder for auth use case: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for auth use case: %w", err)
	}

	return authUsecase.NewAuthUseCase(
		c.config,
		userRepo,
		refreshRepo,
		tokenService,
		c.PasswordService(),
		c.TOTPService(),
		auditRecorder,
		txManager,
		c.Logger(),
	), nil
}
