package handler

import (
	"context"
	"errors"

	"github.com/ogurasousui/store-staffing/internal/core/assignment"
	"github.com/ogurasousui/store-staffing/internal/core/employee"
	"github.com/ogurasousui/store-staffing/internal/core/store"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var verrs employee.ValidationErrors
	if errors.As(err, &verrs) {
		violations := make([]*errdetails.BadRequest_FieldViolation, 0, len(verrs))
		for _, v := range verrs {
			violations = append(violations, &errdetails.BadRequest_FieldViolation{Field: v.Field, Description: v.Message})
		}
		return badRequest(err, violations...)
	}

	var ferr *fieldError
	if errors.As(err, &ferr) {
		return badRequest(err, &errdetails.BadRequest_FieldViolation{Field: ferr.field, Description: ferr.description})
	}

	switch {
	case errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidScope),
		errors.Is(err, employee.ErrInvalidPageSize),
		errors.Is(err, employee.ErrInvalidPageToken),
		errors.Is(err, store.ErrInvalidID),
		errors.Is(err, store.ErrInvalidName),
		errors.Is(err, store.ErrInvalidPhone),
		errors.Is(err, store.ErrInvalidPageSize),
		errors.Is(err, store.ErrInvalidPageToken),
		errors.Is(err, assignment.ErrInvalidID),
		errors.Is(err, assignment.ErrInvalidEmployeeID),
		errors.Is(err, assignment.ErrInvalidStoreID),
		errors.Is(err, assignment.ErrInvalidStartDate),
		errors.Is(err, assignment.ErrInvalidDateRange):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, employee.ErrSSNAlreadyExists), errors.Is(err, store.ErrNameAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrNoCurrentAssignment),
		errors.Is(err, store.ErrStoreNotFound),
		errors.Is(err, assignment.ErrAssignmentNotFound),
		errors.Is(err, assignment.ErrEmployeeNotFound),
		errors.Is(err, assignment.ErrStoreNotFound),
		errors.Is(err, assignment.ErrNoCurrentAssignment):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, assignment.ErrAlreadyEnded):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func badRequest(err error, violations ...*errdetails.BadRequest_FieldViolation) error {
	st := status.New(codes.InvalidArgument, err.Error())
	detailed, detailErr := st.WithDetails(&errdetails.BadRequest{FieldViolations: violations})
	if detailErr != nil {
		return st.Err()
	}
	return detailed.Err()
}
