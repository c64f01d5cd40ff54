package assignment

import (
	"context"
	"time"
)

// Repository は配属永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, assignment *Assignment) (*Assignment, error)
	Update(ctx context.Context, assignment *Assignment) (*Assignment, error)
	FindByID(ctx context.Context, id string) (*Assignment, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*Assignment, error)
	// FindCurrentByEmployee は today 時点で有効な配属を Current と同じ優先順位で 1 件返します。
	FindCurrentByEmployee(ctx context.Context, employeeID string, today time.Time) (*Assignment, error)
}
