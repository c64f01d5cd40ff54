package handler

import (
	"context"
	"strings"
	"time"

	"github.com/ogurasousui/store-staffing/internal/core/assignment"
	"github.com/ogurasousui/store-staffing/internal/core/employee"
	"github.com/ogurasousui/store-staffing/internal/core/store"
	"google.golang.org/protobuf/types/known/structpb"
)

// EmployeeGrpcHandler は EmployeeService の gRPC 実装です。
type EmployeeGrpcHandler struct {
	svc employee.UseCase
	now func() time.Time
}

var _ EmployeeServiceServer = (*EmployeeGrpcHandler)(nil)

// NewEmployeeGrpcHandler は EmployeeGrpcHandler を生成します。
func NewEmployeeGrpcHandler(svc employee.UseCase) *EmployeeGrpcHandler {
	return &EmployeeGrpcHandler{svc: svc, now: func() time.Time { return time.Now().UTC() }}
}

// CreateEmployee は社員を作成します。型の合わないフィールドも検証違反としてまとめて返します。
func (h *EmployeeGrpcHandler) CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := newAttributeReader(req)

	in := employee.CreateEmployeeInput{
		FirstName:   deref(r.text(employee.FieldFirstName)),
		LastName:    deref(r.text(employee.FieldLastName)),
		SSN:         deref(r.digits(employee.FieldSSN)),
		DateOfBirth: deref(r.date(employee.FieldDateOfBirth)),
		Phone:       deref(r.digits(employee.FieldPhone)),
		Active:      r.active(),
	}
	if role := r.role(); role != nil {
		in.Role = *role
	}
	in.Rejected = r.rejected

	created, err := h.svc.CreateEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return response(map[string]any{"employee": h.employeeValue(created)})
}

// GetEmployee は社員を取得します。
func (h *EmployeeGrpcHandler) GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	found, err := h.svc.GetEmployee(ctx, employee.GetEmployeeInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return response(map[string]any{"employee": h.employeeValue(found)})
}

// UpdateEmployee は指定されたフィールドだけを変更して社員を更新します。
func (h *EmployeeGrpcHandler) UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, toStatusError(err)
	}
	r := newAttributeReader(req)

	in := employee.UpdateEmployeeInput{
		ID:          id,
		FirstName:   r.text(employee.FieldFirstName),
		LastName:    r.text(employee.FieldLastName),
		SSN:         r.digits(employee.FieldSSN),
		DateOfBirth: r.date(employee.FieldDateOfBirth),
		Phone:       r.digits(employee.FieldPhone),
		Role:        r.role(),
		Active:      r.active(),
	}
	in.Rejected = r.rejected

	updated, err := h.svc.UpdateEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return response(map[string]any{"employee": h.employeeValue(updated)})
}

// DeleteEmployee は社員を削除します。
func (h *EmployeeGrpcHandler) DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	if err := h.svc.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: id}); err != nil {
		return nil, toStatusError(err)
	}
	return response(map[string]any{})
}

// ListEmployees はスコープを指定して社員の一覧を取得します。
// scopes に "alphabetical" を含めると姓、名の順で並べます。
func (h *EmployeeGrpcHandler) ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)

	rawScopes, err := f.stringList("scopes")
	if err != nil {
		return nil, toStatusError(err)
	}
	alphabetical, _, err := f.boolean("alphabetical")
	if err != nil {
		return nil, toStatusError(err)
	}
	scopes := make([]employee.Scope, 0, len(rawScopes))
	for _, raw := range rawScopes {
		if strings.EqualFold(strings.TrimSpace(raw), "alphabetical") {
			alphabetical = true
			continue
		}
		scopes = append(scopes, employee.Scope(raw))
	}

	pageSize, _, err := f.integer("page_size")
	if err != nil {
		return nil, toStatusError(err)
	}
	pageToken, _, err := f.numericText("page_token")
	if err != nil {
		return nil, toStatusError(err)
	}

	res, err := h.svc.ListEmployees(ctx, employee.ListEmployeesInput{
		Scopes:       scopes,
		Alphabetical: alphabetical,
		PageSize:     pageSize,
		PageToken:    pageToken,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	employees := make([]any, 0, len(res.Employees))
	for _, e := range res.Employees {
		employees = append(employees, h.employeeValue(e))
	}
	return response(map[string]any{
		"employees":       employees,
		"next_page_token": res.NextPageToken,
	})
}

// MakeActive は社員を在籍状態にします。
func (h *EmployeeGrpcHandler) MakeActive(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.toggle(ctx, req, h.svc.MakeActive)
}

// MakeInactive は社員を非在籍状態にします。
func (h *EmployeeGrpcHandler) MakeInactive(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.toggle(ctx, req, h.svc.MakeInactive)
}

func (h *EmployeeGrpcHandler) toggle(ctx context.Context, req *structpb.Struct, fn func(context.Context, employee.GetEmployeeInput) (*employee.Employee, error)) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	updated, err := fn(ctx, employee.GetEmployeeInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return response(map[string]any{"employee": h.employeeValue(updated)})
}

// CurrentAssignment は社員の現在の配属を返します。
func (h *EmployeeGrpcHandler) CurrentAssignment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	current, err := h.svc.CurrentAssignment(ctx, employee.GetEmployeeInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return response(map[string]any{"assignment": assignmentValue(current)})
}

// ListEmployeeStores は社員の配属先店舗を返します。
func (h *EmployeeGrpcHandler) ListEmployeeStores(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	stores, err := h.svc.ListStores(ctx, employee.GetEmployeeInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return response(map[string]any{"stores": storeValues(stores)})
}

func (h *EmployeeGrpcHandler) employeeValue(e *employee.Employee) map[string]any {
	return map[string]any{
		"id":            e.ID,
		"first_name":    e.FirstName,
		"last_name":     e.LastName,
		"name":          e.Name(),
		"proper_name":   e.ProperName(),
		"ssn":           e.SSN,
		"date_of_birth": formatDate(e.DateOfBirth),
		"phone":         e.Phone,
		"role":          int(e.Role),
		"role_name":     e.Role.String(),
		"active":        e.Active,
		"over_18":       e.Over18(h.now()),
		"created_at":    formatTime(e.CreatedAt),
		"updated_at":    formatTime(e.UpdatedAt),
	}
}

// attributeReader は社員属性をリクエストから読み出します。
// 型の合わない値は読み飛ばし、rejected に検証違反として記録します。
type attributeReader struct {
	f        fields
	rejected employee.ValidationErrors
}

func newAttributeReader(req *structpb.Struct) *attributeReader {
	return &attributeReader{f: newFields(req)}
}

func (r *attributeReader) reject(field, message string) {
	r.rejected = append(r.rejected, employee.ValidationError{Field: field, Message: message})
}

func (r *attributeReader) text(field string) *string {
	s, err := optional(r.f.str(field))
	if err != nil {
		r.reject(field, employee.MessageNotText)
		return nil
	}
	return s
}

// digits は数値でも受け付けます。
func (r *attributeReader) digits(field string) *string {
	s, err := optional(r.f.numericText(field))
	if err != nil {
		r.reject(field, employee.MessageOnlyNumbers)
		return nil
	}
	return s
}

func (r *attributeReader) date(field string) *string {
	s, err := optional(r.f.str(field))
	if err != nil {
		r.reject(field, employee.MessageInvalidDate)
		return nil
	}
	return s
}

// role は数値またはロール名を受け付けます。空文字は未指定として扱い、
// 解釈できない値は不正なロールとして検証に回します。
func (r *attributeReader) role() *employee.Role {
	if !r.f.has(employee.FieldRole) {
		return nil
	}
	if n, _, err := r.f.integer(employee.FieldRole); err == nil {
		role := employee.Role(n)
		return &role
	}
	if s, _, err := r.f.str(employee.FieldRole); err == nil {
		name := strings.TrimSpace(s)
		if name == "" {
			return nil
		}
		for _, role := range []employee.Role{employee.RoleRegular, employee.RoleManager, employee.RoleAdmin} {
			if strings.EqualFold(name, role.String()) {
				return &role
			}
		}
	}
	invalid := employee.Role(-1)
	return &invalid
}

func (r *attributeReader) active() *bool {
	active, err := r.f.optionalBool(employee.FieldActive)
	if err != nil {
		r.reject(employee.FieldActive, employee.MessageInvalidBoolean)
		return nil
	}
	return active
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func requireID(req *structpb.Struct) (string, error) {
	id, ok, err := newFields(req).str("id")
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(id) == "" {
		return "", &fieldError{field: "id", description: "is required"}
	}
	return id, nil
}

func assignmentValue(a *assignment.Assignment) map[string]any {
	var end any
	if a.EndDate != nil {
		end = formatDate(*a.EndDate)
	}
	return map[string]any{
		"id":          a.ID,
		"employee_id": a.EmployeeID,
		"store_id":    a.StoreID,
		"start_date":  formatDate(a.StartDate),
		"end_date":    end,
		"created_at":  formatTime(a.CreatedAt),
		"updated_at":  formatTime(a.UpdatedAt),
	}
}

func storeValue(s *store.Store) map[string]any {
	return map[string]any{
		"id":         s.ID,
		"name":       s.Name,
		"phone":      s.Phone,
		"active":     s.Active,
		"created_at": formatTime(s.CreatedAt),
		"updated_at": formatTime(s.UpdatedAt),
	}
}

func storeValues(stores []*store.Store) []any {
	out := make([]any, 0, len(stores))
	for _, s := range stores {
		out = append(out, storeValue(s))
	}
	return out
}
