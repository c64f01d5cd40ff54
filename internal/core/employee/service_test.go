package employee

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/ogurasousui/store-staffing/internal/core/assignment"
	"github.com/ogurasousui/store-staffing/internal/core/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeRepo struct {
	items     map[string]*Employee
	sequence  int
	createErr error
	lastList  ListEmployeesFilter
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]*Employee)}
}

func (r *fakeRepo) Create(_ context.Context, e *Employee) (*Employee, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	clone := *e
	r.sequence++
	clone.ID = fmt.Sprintf("00000000-0000-4000-8000-%012d", r.sequence)
	r.items[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *fakeRepo) Update(_ context.Context, e *Employee) (*Employee, error) {
	if _, ok := r.items[e.ID]; !ok {
		return nil, ErrEmployeeNotFound
	}
	clone := *e
	r.items[e.ID] = &clone
	out := clone
	return &out, nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*Employee, error) {
	e, ok := r.items[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	out := *e
	return &out, nil
}

func (r *fakeRepo) FindBySSN(_ context.Context, ssn string) (*Employee, error) {
	for _, e := range r.items {
		if e.SSN == ssn {
			out := *e
			return &out, nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (r *fakeRepo) List(_ context.Context, filter ListEmployeesFilter) ([]*Employee, string, error) {
	r.lastList = filter

	all := make([]*Employee, 0, len(r.items))
	for _, e := range r.items {
		out := *e
		all = append(all, &out)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	list := Filter(all, filter.Today, filter.Scopes...)
	if filter.Alphabetical {
		list = Alphabetical(list)
	}
	if filter.Offset >= len(list) {
		return nil, "", nil
	}
	list = list[filter.Offset:]
	if len(list) > filter.Limit {
		return list[:filter.Limit], strconv.Itoa(filter.Offset + filter.Limit), nil
	}
	return list, "", nil
}

type fakeAssignments struct {
	items []*assignment.Assignment
}

func (f *fakeAssignments) FindCurrentByEmployee(_ context.Context, employeeID string, today time.Time) (*assignment.Assignment, error) {
	var own []*assignment.Assignment
	for _, a := range f.items {
		if a.EmployeeID == employeeID {
			own = append(own, a)
		}
	}
	if current := assignment.Current(own, today); current != nil {
		return current, nil
	}
	return nil, assignment.ErrAssignmentNotFound
}

type fakeStores struct {
	byEmployee map[string][]*store.Store
}

func (f *fakeStores) ListByEmployee(_ context.Context, employeeID string) ([]*store.Store, error) {
	return f.byEmployee[employeeID], nil
}

func ptr[T any](v T) *T {
	return &v
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *fakeAssignments, *fakeStores, *stubClock) {
	t.Helper()

	repo := newFakeRepo()
	assignments := &fakeAssignments{}
	stores := &fakeStores{byEmployee: map[string][]*store.Store{}}
	clock := &stubClock{now: time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)}
	return NewService(repo, assignments, stores, clock, nil), repo, assignments, stores, clock
}

func janeInput() CreateEmployeeInput {
	return CreateEmployeeInput{
		FirstName:   "Jane",
		LastName:    "Doe",
		SSN:         "123-45-6789",
		DateOfBirth: "1990-04-01",
		Phone:       "(555) 123-4567",
		Role:        RoleRegular,
	}
}

func validationErrors(t *testing.T, err error) ValidationErrors {
	t.Helper()

	require.ErrorIs(t, err, ErrValidation)
	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))
	return errs
}

func TestService_CreateEmployee(t *testing.T) {
	t.Parallel()

	svc, _, _, _, clock := newTestService(t)

	created, err := svc.CreateEmployee(context.Background(), janeInput())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "123456789", created.SSN)
	assert.Equal(t, "5551234567", created.Phone)
	assert.Equal(t, time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC), created.DateOfBirth)
	assert.True(t, created.Active)
	assert.Equal(t, clock.now, created.CreatedAt)
	assert.Equal(t, clock.now, created.UpdatedAt)
	assert.Equal(t, "Doe, Jane", created.Name())
	assert.Equal(t, "Jane Doe", created.ProperName())
}

func TestService_CreateEmployee_Inactive(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _ := newTestService(t)

	in := janeInput()
	in.Active = ptr(false)
	created, err := svc.CreateEmployee(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, created.Active)
}

func TestService_CreateEmployee_AggregatesErrors(t *testing.T) {
	t.Parallel()

	svc, repo, _, _, _ := newTestService(t)

	_, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		FirstName:   " ",
		LastName:    "Doe",
		SSN:         "12-34",
		DateOfBirth: "2015-01-01",
		Phone:       "555",
		Role:        9,
	})

	errs := validationErrors(t, err)
	assert.True(t, errs.Has(FieldFirstName))
	assert.True(t, errs.Has(FieldSSN))
	assert.True(t, errs.Has(FieldDateOfBirth))
	assert.True(t, errs.Has(FieldPhone))
	assert.True(t, errs.Has(FieldRole))
	assert.False(t, errs.Has(FieldLastName))
	assert.Empty(t, repo.items)
}

func TestService_CreateEmployee_MergesRejectedFields(t *testing.T) {
	t.Parallel()

	svc, repo, _, _, _ := newTestService(t)

	in := janeInput()
	in.FirstName = ""
	in.SSN = "12"
	in.Role = 9
	in.Rejected = ValidationErrors{
		{Field: FieldFirstName, Message: MessageNotText},
		{Field: FieldActive, Message: MessageInvalidBoolean},
	}
	_, err := svc.CreateEmployee(context.Background(), in)

	errs := validationErrors(t, err)
	assert.Equal(t, []string{MessageNotText}, errs.On(FieldFirstName))
	assert.Equal(t, []string{"is the wrong length (should be 9 characters)"}, errs.On(FieldSSN))
	assert.Equal(t, []string{MessageInvalidRole}, errs.On(FieldRole))
	assert.Equal(t, []string{MessageInvalidBoolean}, errs.On(FieldActive))
	assert.Empty(t, repo.items)
}

func TestService_CreateEmployee_RejectedAloneBlocksCreate(t *testing.T) {
	t.Parallel()

	svc, repo, _, _, _ := newTestService(t)

	in := janeInput()
	in.Rejected = ValidationErrors{{Field: FieldActive, Message: MessageInvalidBoolean}}
	_, err := svc.CreateEmployee(context.Background(), in)

	errs := validationErrors(t, err)
	assert.Equal(t, ValidationErrors{{Field: FieldActive, Message: MessageInvalidBoolean}}, errs)
	assert.Empty(t, repo.items)
}

func TestService_CreateEmployee_DuplicateSSN(t *testing.T) {
	t.Parallel()

	svc, repo, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateEmployee(ctx, janeInput())
	require.NoError(t, err)

	dup := janeInput()
	dup.FirstName = "John"
	dup.SSN = "123 45 6789"
	_, err = svc.CreateEmployee(ctx, dup)

	errs := validationErrors(t, err)
	assert.Equal(t, []string{"has already been taken"}, errs.On(FieldSSN))
	assert.Len(t, repo.items, 1)
}

func TestService_CreateEmployee_UniqueViolationFromStorage(t *testing.T) {
	t.Parallel()

	svc, repo, _, _, _ := newTestService(t)
	repo.createErr = fmt.Errorf("insert: %w", ErrSSNAlreadyExists)

	_, err := svc.CreateEmployee(context.Background(), janeInput())

	errs := validationErrors(t, err)
	assert.Equal(t, ValidationErrors{{Field: FieldSSN, Message: "has already been taken"}}, errs)
}

func TestService_CreateEmployee_TooYoung(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	young := janeInput()
	young.DateOfBirth = "2011-06-16"
	_, err := svc.CreateEmployee(ctx, young)
	errs := validationErrors(t, err)
	assert.Equal(t, []string{"must be 14 years or older"}, errs.On(FieldDateOfBirth))

	fourteen := janeInput()
	fourteen.DateOfBirth = "2011-06-15"
	_, err = svc.CreateEmployee(ctx, fourteen)
	assert.NoError(t, err)
}

func TestService_UpdateEmployee(t *testing.T) {
	t.Parallel()

	svc, _, _, _, clock := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateEmployee(ctx, janeInput())
	require.NoError(t, err)

	clock.now = clock.now.Add(time.Hour)
	updated, err := svc.UpdateEmployee(ctx, UpdateEmployeeInput{
		ID:    created.ID,
		Phone: ptr("555-987-6543"),
		Role:  ptr(RoleManager),
	})
	require.NoError(t, err)

	assert.Equal(t, "5559876543", updated.Phone)
	assert.True(t, updated.IsManagerRole())
	assert.Equal(t, created.SSN, updated.SSN, "self must not count as an ssn duplicate")
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, clock.now, updated.UpdatedAt)
}

func TestService_UpdateEmployee_RevalidatesMergedRecord(t *testing.T) {
	t.Parallel()

	svc, repo, _, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateEmployee(ctx, janeInput())
	require.NoError(t, err)

	_, err = svc.UpdateEmployee(ctx, UpdateEmployeeInput{
		ID:       created.ID,
		LastName: ptr(""),
		Role:     ptr(Role(5)),
	})

	errs := validationErrors(t, err)
	assert.Equal(t, []string{"can't be blank"}, errs.On(FieldLastName))
	assert.Equal(t, []string{"is not a valid role"}, errs.On(FieldRole))
	assert.Equal(t, "Doe", repo.items[created.ID].LastName)
}

func TestService_UpdateEmployee_MergesRejectedFields(t *testing.T) {
	t.Parallel()

	svc, repo, _, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateEmployee(ctx, janeInput())
	require.NoError(t, err)

	_, err = svc.UpdateEmployee(ctx, UpdateEmployeeInput{
		ID:       created.ID,
		Phone:    ptr("555"),
		Rejected: ValidationErrors{{Field: FieldDateOfBirth, Message: MessageInvalidDate}},
	})

	errs := validationErrors(t, err)
	assert.True(t, errs.Has(FieldPhone))
	assert.Equal(t, []string{MessageInvalidDate}, errs.On(FieldDateOfBirth))
	assert.Equal(t, "5551234567", repo.items[created.ID].Phone)
}

func TestService_UpdateEmployee_DuplicateSSN(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateEmployee(ctx, janeInput())
	require.NoError(t, err)

	other := janeInput()
	other.SSN = "987654321"
	second, err := svc.CreateEmployee(ctx, other)
	require.NoError(t, err)

	_, err = svc.UpdateEmployee(ctx, UpdateEmployeeInput{ID: second.ID, SSN: ptr("123456789")})
	errs := validationErrors(t, err)
	assert.Equal(t, []string{"has already been taken"}, errs.On(FieldSSN))
}

func TestService_UpdateEmployee_NotFound(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _ := newTestService(t)

	_, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: "00000000-0000-4000-8000-000000000999"})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestService_MakeActiveInactive(t *testing.T) {
	t.Parallel()

	svc, repo, _, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateEmployee(ctx, janeInput())
	require.NoError(t, err)

	inactive, err := svc.MakeInactive(ctx, GetEmployeeInput{ID: created.ID})
	require.NoError(t, err)
	assert.False(t, inactive.Active)
	assert.False(t, repo.items[created.ID].Active)

	active, err := svc.MakeActive(ctx, GetEmployeeInput{ID: created.ID})
	require.NoError(t, err)
	assert.True(t, active.Active)
	assert.True(t, repo.items[created.ID].Active)
}

func TestService_MakeInactive_FailsOnInvalidStoredRecord(t *testing.T) {
	t.Parallel()

	svc, repo, _, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateEmployee(ctx, janeInput())
	require.NoError(t, err)
	repo.items[created.ID].Phone = "555"

	_, err = svc.MakeInactive(ctx, GetEmployeeInput{ID: created.ID})
	errs := validationErrors(t, err)
	assert.True(t, errs.Has(FieldPhone))
	assert.True(t, repo.items[created.ID].Active)
}

func TestService_DeleteEmployee(t *testing.T) {
	t.Parallel()

	svc, repo, _, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateEmployee(ctx, janeInput())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEmployee(ctx, DeleteEmployeeInput{ID: created.ID}))
	assert.Empty(t, repo.items)

	_, err = svc.GetEmployee(ctx, GetEmployeeInput{ID: created.ID})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestService_GetEmployee_InvalidID(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _ := newTestService(t)

	for _, id := range []string{"", "  ", "not-a-uuid"} {
		_, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: id})
		assert.ErrorIs(t, err, ErrInvalidID, "id %q", id)
	}
}

func TestService_ListEmployees(t *testing.T) {
	t.Parallel()

	svc, repo, _, _, clock := newTestService(t)
	ctx := context.Background()

	seed := []CreateEmployeeInput{
		{FirstName: "Al", LastName: "Smith", SSN: "111111111", DateOfBirth: "1980-01-01", Phone: "5550000001", Role: RoleManager},
		{FirstName: "Zoe", LastName: "Doe", SSN: "222222222", DateOfBirth: "2009-01-01", Phone: "5550000002", Role: RoleRegular},
		{FirstName: "Ann", LastName: "Doe", SSN: "333333333", DateOfBirth: "1995-01-01", Phone: "5550000003", Role: RoleAdmin, Active: ptr(false)},
	}
	for _, in := range seed {
		_, err := svc.CreateEmployee(ctx, in)
		require.NoError(t, err)
	}

	res, err := svc.ListEmployees(ctx, ListEmployeesInput{Alphabetical: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Doe, Ann", "Doe, Zoe", "Smith, Al"}, names(res.Employees))
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), repo.lastList.Today)
	assert.Equal(t, defaultListPageSize, repo.lastList.Limit)
	assert.True(t, clock.now.After(repo.lastList.Today))

	res, err = svc.ListEmployees(ctx, ListEmployeesInput{Scopes: []Scope{"active", "is_18_or_older"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Smith, Al"}, names(res.Employees))

	res, err = svc.ListEmployees(ctx, ListEmployeesInput{Scopes: []Scope{ScopeYoungerThan18}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Doe, Zoe"}, names(res.Employees))

	res, err = svc.ListEmployees(ctx, ListEmployeesInput{Alphabetical: true, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, res.Employees, 2)
	assert.Equal(t, "2", res.NextPageToken)

	res, err = svc.ListEmployees(ctx, ListEmployeesInput{Alphabetical: true, PageSize: 2, PageToken: res.NextPageToken})
	require.NoError(t, err)
	assert.Equal(t, []string{"Smith, Al"}, names(res.Employees))
	assert.Empty(t, res.NextPageToken)
}

func TestService_ListEmployees_InvalidInput(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ListEmployees(ctx, ListEmployeesInput{Scopes: []Scope{"seniors"}})
	assert.ErrorIs(t, err, ErrInvalidScope)

	_, err = svc.ListEmployees(ctx, ListEmployeesInput{PageSize: maxListPageSize + 1})
	assert.ErrorIs(t, err, ErrInvalidPageSize)

	_, err = svc.ListEmployees(ctx, ListEmployeesInput{PageToken: "-1"})
	assert.ErrorIs(t, err, ErrInvalidPageToken)
}

func TestService_CurrentAssignment(t *testing.T) {
	t.Parallel()

	svc, _, assignments, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateEmployee(ctx, janeInput())
	require.NoError(t, err)

	_, err = svc.CurrentAssignment(ctx, GetEmployeeInput{ID: created.ID})
	assert.ErrorIs(t, err, ErrNoCurrentAssignment)

	ended := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	assignments.items = []*assignment.Assignment{
		{ID: "a-old", EmployeeID: created.ID, StoreID: "s-1", StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), EndDate: &ended},
		{ID: "a-cur", EmployeeID: created.ID, StoreID: "s-2", StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "a-future", EmployeeID: created.ID, StoreID: "s-3", StartDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	current, err := svc.CurrentAssignment(ctx, GetEmployeeInput{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, "a-cur", current.ID)

	_, err = svc.CurrentAssignment(ctx, GetEmployeeInput{ID: "00000000-0000-4000-8000-000000000999"})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestService_ListStores(t *testing.T) {
	t.Parallel()

	svc, _, _, stores, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateEmployee(ctx, janeInput())
	require.NoError(t, err)

	stores.byEmployee[created.ID] = []*store.Store{{ID: "s-1", Name: "Downtown"}}

	list, err := svc.ListStores(ctx, GetEmployeeInput{ID: created.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Downtown", list[0].Name)
}

func TestService_LookupsNotConfigured(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, &stubClock{now: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)}, nil)
	created, err := svc.CreateEmployee(context.Background(), janeInput())
	require.NoError(t, err)

	_, err = svc.CurrentAssignment(context.Background(), GetEmployeeInput{ID: created.ID})
	assert.Error(t, err)
	_, err = svc.ListStores(context.Background(), GetEmployeeInput{ID: created.ID})
	assert.Error(t, err)
}
