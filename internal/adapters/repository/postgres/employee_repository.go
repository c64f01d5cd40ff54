package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/store-staffing/internal/core/employee"
	pgdb "github.com/ogurasousui/store-staffing/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

// psql は PostgreSQL 用のプレースホルダ ($1, $2, ...) を使うクエリビルダです。
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var employeeColumns = []string{
	"id",
	"first_name",
	"last_name",
	"ssn",
	"date_of_birth",
	"phone",
	"role",
	"active",
	"created_at",
	"updated_at",
}

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	query, args, err := psql.Insert("employees").
		Columns("first_name", "last_name", "ssn", "date_of_birth", "phone", "role", "active", "created_at", "updated_at").
		Values(e.FirstName, e.LastName, e.SSN, dateValue(e.DateOfBirth), e.Phone, int(e.Role), e.Active, e.CreatedAt, e.UpdatedAt).
		Suffix(returning(employeeColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build insert employee: %w", err)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	created, err := scanEmployee(exec.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員情報を更新します。created_at は変更しません。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	query, args, err := psql.Update("employees").
		Set("first_name", e.FirstName).
		Set("last_name", e.LastName).
		Set("ssn", e.SSN).
		Set("date_of_birth", dateValue(e.DateOfBirth)).
		Set("phone", e.Phone).
		Set("role", int(e.Role)).
		Set("active", e.Active).
		Set("updated_at", e.UpdatedAt).
		Where(sq.Eq{"id": e.ID}).
		Suffix(returning(employeeColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build update employee: %w", err)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	updated, err := scanEmployee(exec.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("employees").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("postgres: build delete employee: %w", err)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, query, args...)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

// FindBySSN は正規化済みの SSN で社員を取得します。
func (r *EmployeeRepository) FindBySSN(ctx context.Context, ssn string) (*employee.Employee, error) {
	return r.findOne(ctx, sq.Eq{"ssn": ssn})
}

func (r *EmployeeRepository) findOne(ctx context.Context, pred sq.Sqlizer) (*employee.Employee, error) {
	query, args, err := psql.Select(employeeColumns...).
		From("employees").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build select employee: %w", err)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanEmployee(exec.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List はスコープを WHERE 句に変換して社員の一覧を取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	builder := psql.Select(employeeColumns...).From("employees")
	for _, scope := range filter.Scopes {
		pred, err := ScopePredicate(scope, filter.Today)
		if err != nil {
			return nil, "", err
		}
		builder = builder.Where(pred)
	}

	if filter.Alphabetical {
		builder = builder.OrderBy("last_name ASC", "first_name ASC", "id ASC")
	} else {
		builder = builder.OrderBy("created_at DESC", "id DESC")
	}

	limitWithBuffer := filter.Limit + 1
	query, args, err := builder.
		Limit(uint64(limitWithBuffer)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, "", fmt.Errorf("postgres: build list employees: %w", err)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateEmployeePgError(err)
	}

	var nextToken string
	if len(employees) == limitWithBuffer {
		employees = employees[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return employees, nextToken, nil
}

// ScopePredicate はスコープを等価な SQL 条件に変換します。
// 年齢系スコープは employee.AdultCutoff と同じ基準日で比較します。
func ScopePredicate(scope employee.Scope, today time.Time) (sq.Sqlizer, error) {
	switch scope {
	case employee.ScopeActive:
		return sq.Eq{"active": true}, nil
	case employee.ScopeInactive:
		return sq.Eq{"active": false}, nil
	case employee.ScopeEighteenOrOlder:
		return sq.LtOrEq{"date_of_birth": employee.AdultCutoff(today)}, nil
	case employee.ScopeYoungerThan18:
		return sq.Gt{"date_of_birth": employee.AdultCutoff(today)}, nil
	case employee.ScopeRegulars:
		return sq.Eq{"role": int(employee.RoleRegular)}, nil
	case employee.ScopeManagers:
		return sq.Eq{"role": int(employee.RoleManager)}, nil
	case employee.ScopeAdmins:
		return sq.Eq{"role": int(employee.RoleAdmin)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", employee.ErrInvalidScope, scope)
	}
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		e    employee.Employee
		role int
	)

	if err := row.Scan(
		&e.ID,
		&e.FirstName,
		&e.LastName,
		&e.SSN,
		&e.DateOfBirth,
		&e.Phone,
		&role,
		&e.Active,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	e.Role = employee.Role(role)
	e.DateOfBirth = dateValue(e.DateOfBirth)
	return &e, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("%w: %s", employee.ErrSSNAlreadyExists, pgErr.ConstraintName)
	}

	return err
}

func returning(columns []string) string {
	return "RETURNING " + strings.Join(columns, ", ")
}

// dateValue は t を UTC の暦日に丸めます。DATE 列の読み書きに使います。
func dateValue(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
