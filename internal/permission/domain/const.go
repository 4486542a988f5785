// Package domain defines core types for agent-scoped permission grants.
package domain

// AgentScope identifies a functional area of the application a grant applies to.
type AgentScope string

// Agent scopes. The set is fixed; unknown scopes are rejected at the boundary.
const (
	ScopeClients   AgentScope = "clients"
	ScopeDocuments AgentScope = "documents"
	ScopeReports   AgentScope = "reports"
	ScopeBilling   AgentScope = "billing"
	ScopeAdmin     AgentScope = "admin"
)

// Valid reports whether the scope is one of the known agent scopes.
func (s AgentScope) Valid() bool {
	switch s {
	case ScopeClients, ScopeDocuments, ScopeReports, ScopeBilling, ScopeAdmin:
		return true
	}
	return false
}

// AgentScopes returns all known agent scopes.
func AgentScopes() []AgentScope {
	return []AgentScope{ScopeClients, ScopeDocuments, ScopeReports, ScopeBilling, ScopeAdmin}
}

// Operation is a CRUD action a grant may allow within a scope.
type Operation string

// Operations.
const (
	OperationCreate Operation = "create"
	OperationRead   Operation = "read"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Valid reports whether the operation is one of the known operations.
func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationRead, OperationUpdate, OperationDelete:
		return true
	}
	return false
}
