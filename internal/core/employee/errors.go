package employee

import "errors"

var (
	ErrValidation          = errors.New("employee: validation failed")
	ErrInvalidID           = errors.New("employee: invalid id")
	ErrInvalidScope        = errors.New("employee: invalid scope")
	ErrInvalidPageSize     = errors.New("employee: invalid page size")
	ErrInvalidPageToken    = errors.New("employee: invalid page token")
	ErrEmployeeNotFound    = errors.New("employee: not found")
	ErrSSNAlreadyExists    = errors.New("employee: ssn already exists")
	ErrNoCurrentAssignment = errors.New("employee: no current assignment")
)
