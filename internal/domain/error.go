package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrAlreadyExists       = errors.New("entity already exists")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrUnauthorized        = errors.New("authentication required")
	ErrForbidden           = errors.New("access denied")
	ErrGatewayUnconfigured = errors.New("payment gateway is not configured")
	ErrGateway             = errors.New("payment gateway request failed")
	ErrRateLimited         = errors.New("too many requests")

	// Infra-level errors surfaced by repositories
	ErrOperationFailed    = errors.New("operation failed")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
