package handler

import (
	"context"

	"github.com/ogurasousui/store-staffing/internal/core/assignment"
	"google.golang.org/protobuf/types/known/structpb"
)

// AssignmentGrpcHandler は AssignmentService の gRPC 実装です。
type AssignmentGrpcHandler struct {
	svc assignment.UseCase
}

var _ AssignmentServiceServer = (*AssignmentGrpcHandler)(nil)

// NewAssignmentGrpcHandler は AssignmentGrpcHandler を生成します。
func NewAssignmentGrpcHandler(svc assignment.UseCase) *AssignmentGrpcHandler {
	return &AssignmentGrpcHandler{svc: svc}
}

// CreateAssignment は社員を店舗へ配属します。
func (h *AssignmentGrpcHandler) CreateAssignment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)

	employeeID, _, err := f.str("employee_id")
	if err != nil {
		return nil, toStatusError(err)
	}
	storeID, _, err := f.str("store_id")
	if err != nil {
		return nil, toStatusError(err)
	}
	start, err := f.date("start_date")
	if err != nil {
		return nil, toStatusError(err)
	}
	end, err := f.date("end_date")
	if err != nil {
		return nil, toStatusError(err)
	}

	created, err := h.svc.CreateAssignment(ctx, assignment.CreateAssignmentInput{
		EmployeeID: employeeID,
		StoreID:    storeID,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return response(map[string]any{"assignment": assignmentValue(created)})
}

// EndAssignment は配属を終了します。end_date 省略時は当日で終了します。
func (h *AssignmentGrpcHandler) EndAssignment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, toStatusError(err)
	}
	end, err := newFields(req).date("end_date")
	if err != nil {
		return nil, toStatusError(err)
	}

	ended, err := h.svc.EndAssignment(ctx, assignment.EndAssignmentInput{ID: id, EndDate: end})
	if err != nil {
		return nil, toStatusError(err)
	}
	return response(map[string]any{"assignment": assignmentValue(ended)})
}

// GetAssignment は配属を取得します。
func (h *AssignmentGrpcHandler) GetAssignment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	found, err := h.svc.GetAssignment(ctx, assignment.GetAssignmentInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return response(map[string]any{"assignment": assignmentValue(found)})
}

// ListAssignments は社員の配属履歴を返します。
func (h *AssignmentGrpcHandler) ListAssignments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	employeeID, _, err := newFields(req).str("employee_id")
	if err != nil {
		return nil, toStatusError(err)
	}

	list, err := h.svc.ListAssignments(ctx, assignment.ListAssignmentsInput{EmployeeID: employeeID})
	if err != nil {
		return nil, toStatusError(err)
	}

	out := make([]any, 0, len(list))
	for _, a := range list {
		out = append(out, assignmentValue(a))
	}
	return response(map[string]any{"assignments": out})
}
