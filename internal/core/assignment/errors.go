package assignment

import "errors"

var (
	ErrInvalidID           = errors.New("assignment: invalid id")
	ErrInvalidEmployeeID   = errors.New("assignment: invalid employee id")
	ErrInvalidStoreID      = errors.New("assignment: invalid store id")
	ErrInvalidStartDate    = errors.New("assignment: start date is required")
	ErrInvalidDateRange    = errors.New("assignment: end date must not precede start date")
	ErrAlreadyEnded        = errors.New("assignment: already ended")
	ErrAssignmentNotFound  = errors.New("assignment: not found")
	ErrEmployeeNotFound    = errors.New("assignment: employee not found")
	ErrStoreNotFound       = errors.New("assignment: store not found")
	ErrNoCurrentAssignment = errors.New("assignment: no current assignment")
)
