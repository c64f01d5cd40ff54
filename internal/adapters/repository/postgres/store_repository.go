package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/store-staffing/internal/core/store"
	pgdb "github.com/ogurasousui/store-staffing/internal/platform/db/postgres"
)

var storeColumns = []string{"id", "name", "phone", "active", "created_at", "updated_at"}

type storeRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Phone     string    `db:"phone"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r storeRow) toDomain() *store.Store {
	return &store.Store{
		ID:        r.ID,
		Name:      r.Name,
		Phone:     r.Phone,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// StoreRepository は PostgreSQL を利用した店舗永続化の実装です。
type StoreRepository struct {
	pool pgdb.Queryer
}

// NewStoreRepository は StoreRepository を生成します。
func NewStoreRepository(pool pgdb.Queryer) *StoreRepository {
	return &StoreRepository{pool: pool}
}

// Create は店舗を新規作成します。
func (r *StoreRepository) Create(ctx context.Context, s *store.Store) (*store.Store, error) {
	query, args, err := psql.Insert("stores").
		Columns("name", "phone", "active", "created_at", "updated_at").
		Values(s.Name, s.Phone, s.Active, s.CreatedAt, s.UpdatedAt).
		Suffix(returning(storeColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build insert store: %w", err)
	}
	return r.getOne(ctx, query, args)
}

// Update は店舗情報を更新します。
func (r *StoreRepository) Update(ctx context.Context, s *store.Store) (*store.Store, error) {
	query, args, err := psql.Update("stores").
		Set("name", s.Name).
		Set("phone", s.Phone).
		Set("active", s.Active).
		Set("updated_at", s.UpdatedAt).
		Where(sq.Eq{"id": s.ID}).
		Suffix(returning(storeColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build update store: %w", err)
	}
	return r.getOne(ctx, query, args)
}

// FindByID は ID で店舗を取得します。
func (r *StoreRepository) FindByID(ctx context.Context, id string) (*store.Store, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

// FindByName は店舗名で店舗を取得します。
func (r *StoreRepository) FindByName(ctx context.Context, name string) (*store.Store, error) {
	return r.findOne(ctx, sq.Eq{"name": name})
}

func (r *StoreRepository) findOne(ctx context.Context, pred sq.Sqlizer) (*store.Store, error) {
	query, args, err := psql.Select(storeColumns...).From("stores").Where(pred).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build select store: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *StoreRepository) getOne(ctx context.Context, query string, args []any) (*store.Store, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var row storeRow
	if err := pgxscan.Get(ctx, exec, &row, query, args...); err != nil {
		return nil, translateStorePgError(err)
	}
	return row.toDomain(), nil
}

// List は店舗の一覧を取得します。
func (r *StoreRepository) List(ctx context.Context, filter store.ListStoresFilter) ([]*store.Store, string, error) {
	if filter.Limit <= 0 {
		return nil, "", store.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", store.ErrInvalidPageToken
	}

	builder := psql.Select(storeColumns...).From("stores")
	if filter.Active != nil {
		builder = builder.Where(sq.Eq{"active": *filter.Active})
	}

	limitWithBuffer := filter.Limit + 1
	query, args, err := builder.
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limitWithBuffer)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, "", fmt.Errorf("postgres: build list stores: %w", err)
	}

	stores, err := r.selectAll(ctx, query, args)
	if err != nil {
		return nil, "", err
	}

	var nextToken string
	if len(stores) == limitWithBuffer {
		stores = stores[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return stores, nextToken, nil
}

// ListByEmployee は社員の配属先店舗を店舗名順に重複なく返します。
func (r *StoreRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*store.Store, error) {
	query, args, err := psql.Select("s.id", "s.name", "s.phone", "s.active", "s.created_at", "s.updated_at").
		Distinct().
		From("stores s").
		Join("assignments a ON a.store_id = s.id").
		Where(sq.Eq{"a.employee_id": employeeID}).
		OrderBy("s.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build list stores by employee: %w", err)
	}
	return r.selectAll(ctx, query, args)
}

func (r *StoreRepository) selectAll(ctx context.Context, query string, args []any) ([]*store.Store, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var rows []storeRow
	if err := pgxscan.Select(ctx, exec, &rows, query, args...); err != nil {
		return nil, translateStorePgError(err)
	}

	stores := make([]*store.Store, 0, len(rows))
	for _, row := range rows {
		stores = append(stores, row.toDomain())
	}
	return stores, nil
}

func translateStorePgError(err error) error {
	if err == nil {
		return nil
	}
	if pgxscan.NotFound(err) {
		return store.ErrStoreNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return store.ErrNameAlreadyExists
	}

	return err
}
