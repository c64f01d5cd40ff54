package employee

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/store-staffing/internal/core/assignment"
	"github.com/ogurasousui/store-staffing/internal/core/normalize"
	"github.com/ogurasousui/store-staffing/internal/core/store"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// AssignmentLookup は社員の現在の配属を引く協調者です。
type AssignmentLookup interface {
	FindCurrentByEmployee(ctx context.Context, employeeID string, today time.Time) (*assignment.Assignment, error)
}

// StoreLookup は配属を経由して社員に紐づく店舗を引く協調者です。
type StoreLookup interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]*store.Store, error)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo        Repository
	assignments AssignmentLookup
	stores      StoreLookup
	clock       Clock
	tx          TransactionManager
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
	MakeActive(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	MakeInactive(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	CurrentAssignment(ctx context.Context, in GetEmployeeInput) (*assignment.Assignment, error)
	ListStores(ctx context.Context, in GetEmployeeInput) ([]*store.Store, error)
}

// NewService は Service を生成します。assignments と stores は配属関連の参照に使います。
func NewService(repo Repository, assignments AssignmentLookup, stores StoreLookup, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, assignments: assignments, stores: stores, clock: clock, tx: tx}
}

// CreateEmployeeInput は社員作成時の入力です。Active が nil の場合は在籍として作成します。
// Rejected は呼び出し側で型を解釈できなかったフィールドの違反で、検証結果に合流させます。
type CreateEmployeeInput struct {
	FirstName   string
	LastName    string
	SSN         string
	DateOfBirth string
	Phone       string
	Role        Role
	Active      *bool
	Rejected    ValidationErrors
}

// UpdateEmployeeInput は社員更新時の入力です。nil のフィールドは変更しません。
type UpdateEmployeeInput struct {
	ID          string
	FirstName   *string
	LastName    *string
	SSN         *string
	DateOfBirth *string
	Phone       *string
	Role        *Role
	Active      *bool
	Rejected    ValidationErrors
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	Scopes       []Scope
	Alphabetical bool
	PageSize     int
	PageToken    string
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// CreateEmployee は正規化と検証を経て新しい社員を作成します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	attrs := Attributes{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		SSN:         in.SSN,
		DateOfBirth: in.DateOfBirth,
		Phone:       in.Phone,
		Role:        in.Role,
		Active:      in.Active,
	}
	if attrs.Active == nil {
		active := true
		attrs.Active = &active
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		emp, err := s.prepare(txCtx, attrs, in.Rejected, "", now)
		if err != nil {
			return err
		}
		emp.CreatedAt = now
		emp.UpdatedAt = now

		result, err := s.repo.Create(txCtx, emp)
		if err != nil {
			return translateRepoError(err)
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateEmployee は既存レコードに変更を重ね、全体を再度正規化・検証して保存します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		attrs := existing.Attributes()
		if in.FirstName != nil {
			attrs.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			attrs.LastName = *in.LastName
		}
		if in.SSN != nil {
			attrs.SSN = *in.SSN
		}
		if in.DateOfBirth != nil {
			attrs.DateOfBirth = *in.DateOfBirth
		}
		if in.Phone != nil {
			attrs.Phone = *in.Phone
		}
		if in.Role != nil {
			attrs.Role = *in.Role
		}
		if in.Active != nil {
			active := *in.Active
			attrs.Active = &active
		}

		result, err := s.save(txCtx, existing, attrs, in.Rejected)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// MakeActive は社員を在籍状態にして保存します。
func (s *Service) MakeActive(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	return s.setActive(ctx, in.ID, true)
}

// MakeInactive は社員を非在籍状態にして保存します。
func (s *Service) MakeInactive(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	return s.setActive(ctx, in.ID, false)
}

func (s *Service) setActive(ctx context.Context, rawID string, active bool) (*Employee, error) {
	id, err := normalizeID(rawID)
	if err != nil {
		return nil, err
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		if active {
			existing.MakeActive()
		} else {
			existing.MakeInactive()
		}

		result, err := s.save(txCtx, existing, existing.Attributes(), nil)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteEmployee は社員を削除します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	id, err := normalizeID(in.ID)
	if err != nil {
		return err
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees はスコープを積集合として適用した社員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	scopes := make([]Scope, 0, len(in.Scopes))
	for _, raw := range in.Scopes {
		scope, err := ParseScope(string(raw))
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, scope)
	}

	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var (
		employees []*Employee
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		resultEmployees, token, err := s.repo.List(txCtx, ListEmployeesFilter{
			Scopes:       scopes,
			Alphabetical: in.Alphabetical,
			Today:        normalize.Date(s.clock.Now()),
			Limit:        limit,
			Offset:       offset,
		})
		if err != nil {
			return err
		}
		employees = resultEmployees
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

// CurrentAssignment は社員の現在有効な配属を返します。
func (s *Service) CurrentAssignment(ctx context.Context, in GetEmployeeInput) (*assignment.Assignment, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}
	if s.assignments == nil {
		return nil, errors.New("employee: assignment lookup is not configured")
	}

	var current *assignment.Assignment
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindByID(txCtx, id); err != nil {
			return err
		}
		found, err := s.assignments.FindCurrentByEmployee(txCtx, id, normalize.Date(s.clock.Now()))
		if errors.Is(err, assignment.ErrAssignmentNotFound) {
			return ErrNoCurrentAssignment
		}
		if err != nil {
			return err
		}
		current = found
		return nil
	}); err != nil {
		return nil, err
	}

	return current, nil
}

// ListStores は配属を経由して社員に紐づく店舗を返します。
func (s *Service) ListStores(ctx context.Context, in GetEmployeeInput) ([]*store.Store, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}
	if s.stores == nil {
		return nil, errors.New("employee: store lookup is not configured")
	}

	var stores []*store.Store
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindByID(txCtx, id); err != nil {
			return err
		}
		found, err := s.stores.ListByEmployee(txCtx, id)
		if err != nil {
			return err
		}
		stores = found
		return nil
	}); err != nil {
		return nil, err
	}

	return stores, nil
}

// save は existing に attrs を反映し、検証後に更新します。
func (s *Service) save(ctx context.Context, existing *Employee, attrs Attributes, rejected ValidationErrors) (*Employee, error) {
	now := s.clock.Now()
	emp, err := s.prepare(ctx, attrs, rejected, existing.ID, now)
	if err != nil {
		return nil, err
	}
	emp.ID = existing.ID
	emp.CreatedAt = existing.CreatedAt
	emp.UpdatedAt = now

	result, err := s.repo.Update(ctx, emp)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return result, nil
}

// prepare は正規化、ローカル検証、SSN の一意性確認を順に行います。
// 違反はすべて集約して ValidationErrors として返します。
func (s *Service) prepare(ctx context.Context, raw Attributes, rejected ValidationErrors, selfID string, now time.Time) (*Employee, error) {
	attrs := Normalize(raw)
	errs := Validate(attrs, now).Merge(rejected)

	if !errs.Has(FieldSSN) {
		taken, err := s.ssnTaken(ctx, attrs.SSN, selfID)
		if err != nil {
			return nil, err
		}
		if taken {
			errs = append(errs, ssnTaken())
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return build(attrs), nil
}

// ssnTaken は他の社員が同じ SSN を使用しているかを確認します。
// 同時実行時の最終的な保証はストレージ側の一意制約が担います。
func (s *Service) ssnTaken(ctx context.Context, ssn, selfID string) (bool, error) {
	found, err := s.repo.FindBySSN(ctx, ssn)
	if errors.Is(err, ErrEmployeeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return found != nil && found.ID != selfID, nil
}

func translateRepoError(err error) error {
	if errors.Is(err, ErrSSNAlreadyExists) {
		return ValidationErrors{ssnTaken()}
	}
	return err
}

func normalizeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("id: %w", ErrInvalidID)
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("id %q: %w", trimmed, ErrInvalidID)
	}
	return parsed.String(), nil
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
