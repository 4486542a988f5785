package app

import (
	"fmt"
	"sync"

	"github.com/docg1701/iam-dashboard/internal/audit"
	auditHTTP "github.com/docg1701/iam-dashboard/internal/audit/http"
	auditRepository "github.com/docg1701/iam-dashboard/internal/audit/repository"
)

// auditComponents groups the audit trail dependencies held by the container.
type auditComponents struct {
	repo     auditRepository.Repository
	recorder *audit.Recorder
	handler  *auditHTTP.AuditHandler

	repoInit     sync.Once
	recorderInit sync.Once
	handlerInit  sync.Once
}

// AuditRepository returns the audit repository instance.
func (c *Container) AuditRepository() (auditRepository.Repository, error) {
	var err error
	c.audit.repoInit.Do(func() {
		c.audit.repo, err = c.initAuditRepository()
		if err != nil {
			c.initErrors["auditRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRepo"]; exists {
		return nil, storedErr
	}
	return c.audit.repo, nil
}

// AuditRecorder returns the audit recorder shared by the auth and permission
// use cases.
func (c *Container) AuditRecorder() (*audit.Recorder, error) {
	var err error
	c.audit.recorderInit.Do(func() {
		var repo auditRepository.Repository
		repo, err = c.AuditRepository()
		if err != nil {
			c.initErrors["auditRecorder"] = err
			return
		}
		c.audit.recorder = audit.NewRecorder(repo)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRecorder"]; exists {
		return nil, storedErr
	}
	return c.audit.recorder, nil
}

// AuditHandler returns the audit HTTP handler.
func (c *Container) AuditHandler() (*auditHTTP.AuditHandler, error) {
	var err error
	c.audit.handlerInit.Do(func() {
		var recorder *audit.Recorder
		recorder, err = c.AuditRecorder()
		if err != nil {
			c.initErrors["auditHandler"] = err
			return
		}
		c.audit.handler = auditHTTP.NewAuditHandler(recorder, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditHandler"]; exists {
		return nil, storedErr
	}
	return c.audit.handler, nil
}

// initAuditRepository creates the audit repository instance.
func (c *Container) initAuditRepository() (auditRepository.Repository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return auditRepository.NewMySQLAuditRepository(db), nil
	case "postgres":
		return auditRepository.NewPostgreSQLAuditRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}
