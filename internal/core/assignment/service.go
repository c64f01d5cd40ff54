package assignment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
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

// Service は配属に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は配属ユースケースの公開インターフェースです。
type UseCase interface {
	CreateAssignment(ctx context.Context, in CreateAssignmentInput) (*Assignment, error)
	EndAssignment(ctx context.Context, in EndAssignmentInput) (*Assignment, error)
	GetAssignment(ctx context.Context, in GetAssignmentInput) (*Assignment, error)
	ListAssignments(ctx context.Context, in ListAssignmentsInput) ([]*Assignment, error)
	FindCurrent(ctx context.Context, employeeID string) (*Assignment, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// CreateAssignmentInput は配属作成時の入力です。
type CreateAssignmentInput struct {
	EmployeeID string
	StoreID    string
	StartDate  *time.Time
	EndDate    *time.Time
}

// EndAssignmentInput は配属終了時の入力です。EndDate が nil なら当日で終了します。
type EndAssignmentInput struct {
	ID      string
	EndDate *time.Time
}

// GetAssignmentInput は配属取得時の入力です。
type GetAssignmentInput struct {
	ID string
}

// ListAssignmentsInput は社員単位の一覧取得入力です。
type ListAssignmentsInput struct {
	EmployeeID string
}

// CreateAssignment は新しい配属を作成します。
func (s *Service) CreateAssignment(ctx context.Context, in CreateAssignmentInput) (*Assignment, error) {
	employeeID, err := normalizeID(in.EmployeeID, ErrInvalidEmployeeID)
	if err != nil {
		return nil, err
	}

	storeID, err := normalizeID(in.StoreID, ErrInvalidStoreID)
	if err != nil {
		return nil, err
	}

	if in.StartDate == nil {
		return nil, ErrInvalidStartDate
	}
	start := DateOf(*in.StartDate)
	end := normalizeDate(in.EndDate)
	if err := validatePeriod(start, end); err != nil {
		return nil, err
	}

	var created *Assignment
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Assignment{
			EmployeeID: employeeID,
			StoreID:    storeID,
			StartDate:  start,
			EndDate:    end,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// EndAssignment は継続中の配属に終了日を設定します。
func (s *Service) EndAssignment(ctx context.Context, in EndAssignmentInput) (*Assignment, error) {
	id, err := normalizeID(in.ID, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var updated *Assignment
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if !existing.IsOpenEnded() {
			return ErrAlreadyEnded
		}

		now := s.clock.Now()
		end := DateOf(now)
		if in.EndDate != nil {
			end = DateOf(*in.EndDate)
		}
		if err := validatePeriod(existing.StartDate, &end); err != nil {
			return err
		}

		existing.EndDate = &end
		existing.UpdatedAt = now

		result, err := s.repo.Update(txCtx, existing)
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

// GetAssignment は ID で配属を取得します。
func (s *Service) GetAssignment(ctx context.Context, in GetAssignmentInput) (*Assignment, error) {
	id, err := normalizeID(in.ID, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var found *Assignment
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		found = result
		return nil
	}); err != nil {
		return nil, err
	}
	return found, nil
}

// ListAssignments は社員の配属履歴を開始日の新しい順で返します。
func (s *Service) ListAssignments(ctx context.Context, in ListAssignmentsInput) ([]*Assignment, error) {
	employeeID, err := normalizeID(in.EmployeeID, ErrInvalidEmployeeID)
	if err != nil {
		return nil, err
	}

	var list []*Assignment
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListByEmployee(txCtx, employeeID)
		if err != nil {
			return err
		}
		list = result
		return nil
	}); err != nil {
		return nil, err
	}
	return list, nil
}

// FindCurrent は社員の現在の配属を返します。存在しなければ ErrNoCurrentAssignment を返します。
func (s *Service) FindCurrent(ctx context.Context, employeeID string) (*Assignment, error) {
	id, err := normalizeID(employeeID, ErrInvalidEmployeeID)
	if err != nil {
		return nil, err
	}

	found, err := s.repo.FindCurrentByEmployee(ctx, id, DateOf(s.clock.Now()))
	if errors.Is(err, ErrAssignmentNotFound) {
		return nil, ErrNoCurrentAssignment
	}
	if err != nil {
		return nil, err
	}
	return found, nil
}

func normalizeID(raw string, sentinel error) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", sentinel
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %q", sentinel, trimmed)
	}
	return parsed.String(), nil
}

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := DateOf(*t)
	return &d
}

func validatePeriod(start time.Time, end *time.Time) error {
	if end == nil {
		return nil
	}
	if end.Before(start) {
		return ErrInvalidDateRange
	}
	return nil
}
