package store

import "context"

// Repository は店舗エンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, store *Store) (*Store, error)
	Update(ctx context.Context, store *Store) (*Store, error)
	FindByID(ctx context.Context, id string) (*Store, error)
	FindByName(ctx context.Context, name string) (*Store, error)
	List(ctx context.Context, filter ListStoresFilter) ([]*Store, string, error)
	// ListByEmployee は配属を経由して社員に紐づく店舗を重複なく返します。
	ListByEmployee(ctx context.Context, employeeID string) ([]*Store, error)
}

// ListStoresFilter は一覧取得時の検索条件を表します。
type ListStoresFilter struct {
	Limit  int
	Offset int
	Active *bool
}
