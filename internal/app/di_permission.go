package app

import (
	"fmt"
	"sync"

	permissionCache "github.com/docg1701/iam-dashboard/internal/permission/cache"
	permissionHTTP "github.com/docg1701/iam-dashboard/internal/permission/http"
	permissionRepository "github.com/docg1701/iam-dashboard/internal/permission/repository"
	permissionUsecase "github.com/docg1701/iam-dashboard/internal/permission/usecase"
)

// permissionComponents groups the permission engine dependencies held by the container.
type permissionComponents struct {
	grantRepo permissionUsecase.GrantRepository
	cache     permissionCache.Cache
	useCase   permissionUsecase.PermissionUseCase
	handler   *permissionHTTP.PermissionHandler

	grantRepoInit sync.Once
	cacheInit     sync.Once
	useCaseInit   sync.Once
	handlerInit   sync.Once
}

// GrantRepository returns the permission grant repository instance.
func (c *Container) GrantRepository() (permissionUsecase.GrantRepository, error) {
	var err error
	c.permission.grantRepoInit.Do(func() {
		c.permission.grantRepo, err = c.initGrantRepository()
		if err != nil {
			c.initErrors["grantRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["grantRepo"]; exists {
		return nil, storedErr
	}
	return c.permission.grantRepo, nil
}

// PermissionCache returns the grant cache selected by configuration.
func (c *Container) PermissionCache() (permissionCache.Cache, error) {
	var err error
	c.permission.cacheInit.Do(func() {
		switch c.config.PermissionCacheBackend {
		case "memory":
			c.permission.cache = permissionCache.NewMemoryCache()
		case "redis":
			c.permission.cache = permissionCache.NewRedisCache(c.RedisClient())
		default:
			err = fmt.Errorf("unsupported permission cache backend: %s", c.config.PermissionCacheBackend)
			c.initErrors["permissionCache"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["permissionCache"]; exists {
		return nil, storedErr
	}
	return c.permission.cache, nil
}

// PermissionUseCase returns the permission use case wrapped with metrics recording.
func (c *Container) PermissionUseCase() (permissionUsecase.PermissionUseCase, error) {
	var err error
	c.permission.useCaseInit.Do(func() {
		c.permission.useCase, err = c.initPermissionUseCase()
		if err != nil {
			c.initErrors["permissionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["permissionUseCase"]; exists {
		return nil, storedErr
	}
	return c.permission.useCase, nil
}

// PermissionHandler returns the permission HTTP handler.
func (c *Container) PermissionHandler() (*permissionHTTP.PermissionHandler, error) {
	var err error
	c.permission.handlerInit.Do(func() {
		var useCase permissionUsecase.PermissionUseCase
		useCase, err = c.PermissionUseCase()
		if err != nil {
			c.initErrors["permissionHandler"] = err
			return
		}
		c.permission.handler = permissionHTTP.NewPermissionHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["permissionHandler"]; exists {
		return nil, storedErr
	}
	return c.permission.handler, nil
}

// initGrantRepository creates the permission grant repository instance.
func (c *Container) initGrantRepository() (permissionUsecase.GrantRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for grant repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return permissionRepository.NewMySQLGrantRepository(db), nil
	case "postgres":
		return permissionRepository.NewPostgreSQLGrantRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initPermissionUseCase creates the permission use case with all its dependencies.
func (c *Container) initPermissionUseCase() (permissionUsecase.PermissionUseCase, error) {
	grantRepo, err := c.GrantRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get grant repository for permission use case: %w", err)
	}

	cache, err := c.PermissionCache()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache for permission use case: %w", err)
	}

	auditRecorder, err := c.AuditRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder for permission use case: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for permission use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for permission use case: %w", err)
	}

	useCase := permissionUsecase.NewPermissionUseCase(
		grantRepo,
		cache,
		c.config.PermissionCacheTTL,
		auditRecorder,
		txManager,
		c.Logger(),
	)

	return permissionUsecase.NewPermissionUseCaseWithMetrics(useCase, businessMetrics), nil
}
