package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/store-staffing/internal/core/normalize"
)

const phoneLength = 10

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

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service は店舗に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は店舗ユースケースの公開インターフェースです。
type UseCase interface {
	CreateStore(ctx context.Context, in CreateStoreInput) (*Store, error)
	GetStore(ctx context.Context, in GetStoreInput) (*Store, error)
	ListStores(ctx context.Context, in ListStoresInput) (*ListStoresResult, error)
	UpdateStore(ctx context.Context, in UpdateStoreInput) (*Store, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*Store, error)
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

// CreateStoreInput は店舗作成時の入力です。
type CreateStoreInput struct {
	Name  string
	Phone string
}

// UpdateStoreInput は店舗更新時の入力です。nil のフィールドは変更しません。
type UpdateStoreInput struct {
	ID     string
	Name   *string
	Phone  *string
	Active *bool
}

// GetStoreInput は店舗取得時の入力です。
type GetStoreInput struct {
	ID string
}

// ListStoresInput は一覧取得時の入力です。
type ListStoresInput struct {
	PageSize  int
	PageToken string
	Active    *bool
}

// ListStoresResult は一覧取得結果を表します。
type ListStoresResult struct {
	Stores        []*Store
	NextPageToken string
}

// CreateStore は新しい店舗を作成します。
func (s *Service) CreateStore(ctx context.Context, in CreateStoreInput) (*Store, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	phone, err := normalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}

	var created *Store
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureNameNotExists(txCtx, name, ""); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Store{
			Name:      name,
			Phone:     phone,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
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

// UpdateStore は店舗情報を更新します。
func (s *Service) UpdateStore(ctx context.Context, in UpdateStoreInput) (*Store, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var updated *Store
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name, err := normalizeName(*in.Name)
			if err != nil {
				return err
			}
			if name != existing.Name {
				if err := s.ensureNameNotExists(txCtx, name, existing.ID); err != nil {
					return err
				}
				existing.Name = name
			}
		}

		if in.Phone != nil {
			phone, err := normalizePhone(*in.Phone)
			if err != nil {
				return err
			}
			existing.Phone = phone
		}

		if in.Active != nil {
			existing.Active = *in.Active
		}

		existing.UpdatedAt = s.clock.Now()

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

// GetStore は ID で店舗を取得します。
func (s *Service) GetStore(ctx context.Context, in GetStoreInput) (*Store, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var found *Store
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

// ListStores は店舗の一覧を取得します。
func (s *Service) ListStores(ctx context.Context, in ListStoresInput) (*ListStoresResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var (
		stores    []*Store
		nextToken string
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListStoresFilter{
			Limit:  limit,
			Offset: offset,
			Active: in.Active,
		})
		if err != nil {
			return err
		}
		stores = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListStoresResult{Stores: stores, NextPageToken: nextToken}, nil
}

// ListByEmployee は社員が配属を通じて関わった店舗を返します。
func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]*Store, error) {
	id, err := normalizeID(employeeID)
	if err != nil {
		return nil, err
	}

	var stores []*Store
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListByEmployee(txCtx, id)
		if err != nil {
			return err
		}
		stores = result
		return nil
	}); err != nil {
		return nil, err
	}
	return stores, nil
}

func (s *Service) ensureNameNotExists(ctx context.Context, name, selfID string) error {
	found, err := s.repo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, ErrStoreNotFound) {
		return err
	}
	if found != nil && found.ID != selfID {
		return ErrNameAlreadyExists
	}
	return nil
}

func normalizeID(raw string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("id: %w", ErrInvalidID)
	}
	return parsed.String(), nil
}

func normalizeName(raw string) (string, error) {
	name := normalize.Text(raw)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

func normalizePhone(raw string) (string, error) {
	phone := normalize.Digits(raw)
	if len(phone) != phoneLength {
		return "", ErrInvalidPhone
	}
	return phone, nil
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
