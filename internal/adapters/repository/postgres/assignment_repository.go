package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/store-staffing/internal/core/assignment"
	pgdb "github.com/ogurasousui/store-staffing/internal/platform/db/postgres"
)

const (
	assignmentEmployeeFKey = "assignments_employee_id_fkey"
	assignmentStoreFKey    = "assignments_store_id_fkey"
)

var assignmentColumns = []string{"id", "employee_id", "store_id", "start_date", "end_date", "created_at", "updated_at"}

type assignmentRow struct {
	ID         string     `db:"id"`
	EmployeeID string     `db:"employee_id"`
	StoreID    string     `db:"store_id"`
	StartDate  time.Time  `db:"start_date"`
	EndDate    *time.Time `db:"end_date"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

func (r assignmentRow) toDomain() *assignment.Assignment {
	a := &assignment.Assignment{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		StoreID:    r.StoreID,
		StartDate:  dateValue(r.StartDate),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.EndDate != nil {
		end := dateValue(*r.EndDate)
		a.EndDate = &end
	}
	return a
}

// AssignmentRepository は PostgreSQL を利用した配属永続化の実装です。
type AssignmentRepository struct {
	pool pgdb.Queryer
}

// NewAssignmentRepository は AssignmentRepository を生成します。
func NewAssignmentRepository(pool pgdb.Queryer) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// Create は配属を新規作成します。
func (r *AssignmentRepository) Create(ctx context.Context, a *assignment.Assignment) (*assignment.Assignment, error) {
	query, args, err := psql.Insert("assignments").
		Columns("employee_id", "store_id", "start_date", "end_date", "created_at", "updated_at").
		Values(a.EmployeeID, a.StoreID, dateValue(a.StartDate), nullableDate(a.EndDate), a.CreatedAt, a.UpdatedAt).
		Suffix(returning(assignmentColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build insert assignment: %w", err)
	}
	return r.getOne(ctx, query, args)
}

// Update は配属期間を更新します。社員と店舗は変更しません。
func (r *AssignmentRepository) Update(ctx context.Context, a *assignment.Assignment) (*assignment.Assignment, error) {
	query, args, err := psql.Update("assignments").
		Set("start_date", dateValue(a.StartDate)).
		Set("end_date", nullableDate(a.EndDate)).
		Set("updated_at", a.UpdatedAt).
		Where(sq.Eq{"id": a.ID}).
		Suffix(returning(assignmentColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build update assignment: %w", err)
	}
	return r.getOne(ctx, query, args)
}

// FindByID は ID で配属を取得します。
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*assignment.Assignment, error) {
	query, args, err := psql.Select(assignmentColumns...).
		From("assignments").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build select assignment: %w", err)
	}
	return r.getOne(ctx, query, args)
}

// ListByEmployee は社員の配属を開始日の新しい順に返します。
func (r *AssignmentRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*assignment.Assignment, error) {
	query, args, err := psql.Select(assignmentColumns...).
		From("assignments").
		Where(sq.Eq{"employee_id": employeeID}).
		OrderBy("start_date DESC", "created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build list assignments: %w", err)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var rows []assignmentRow
	if err := pgxscan.Select(ctx, exec, &rows, query, args...); err != nil {
		return nil, translateAssignmentPgError(err)
	}

	list := make([]*assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toDomain())
	}
	return list, nil
}

// FindCurrentByEmployee は today 時点で有効な配属を assignment.Current と同じ優先順位で 1 件返します。
func (r *AssignmentRepository) FindCurrentByEmployee(ctx context.Context, employeeID string, today time.Time) (*assignment.Assignment, error) {
	day := dateValue(today)
	query, args, err := psql.Select(assignmentColumns...).
		From("assignments").
		Where(sq.Eq{"employee_id": employeeID}).
		Where(sq.LtOrEq{"start_date": day}).
		Where(sq.Or{sq.Eq{"end_date": nil}, sq.GtOrEq{"end_date": day}}).
		OrderBy("start_date DESC", "created_at DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build current assignment: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *AssignmentRepository) getOne(ctx context.Context, query string, args []any) (*assignment.Assignment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var row assignmentRow
	if err := pgxscan.Get(ctx, exec, &row, query, args...); err != nil {
		return nil, translateAssignmentPgError(err)
	}
	return row.toDomain(), nil
}

func translateAssignmentPgError(err error) error {
	if err == nil {
		return nil
	}
	if pgxscan.NotFound(err) {
		return assignment.ErrAssignmentNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case assignmentEmployeeFKey:
				return assignment.ErrEmployeeNotFound
			case assignmentStoreFKey:
				return assignment.ErrStoreNotFound
			}
		case checkViolationCode:
			return assignment.ErrInvalidDateRange
		}
	}

	return err
}

func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return dateValue(*value)
}
