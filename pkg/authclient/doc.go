// Package authclient is the client half of the IAM dashboard: it stores and
// rotates token pairs, attaches credentials to outbound requests, deduplicates
// concurrent refresh attempts, and exposes an explicit authentication state
// machine with a categorized error model.
//
// The package is transport-complete: applications construct a TokenStore, a
// SessionClient and an AuthStateMachine and drive everything through the
// state machine. No component in this package is a process-wide singleton.
package authclient
