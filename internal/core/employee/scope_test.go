package employee

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(list []*Employee) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.Name())
	}
	return out
}

func TestAlphabetical(t *testing.T) {
	t.Parallel()

	list := []*Employee{
		{LastName: "Smith", FirstName: "Al"},
		{LastName: "Doe", FirstName: "Zoe"},
		{LastName: "Doe", FirstName: "Ann"},
	}

	assert.Equal(t, []string{"Doe, Ann", "Doe, Zoe", "Smith, Al"}, names(Alphabetical(list)))
	assert.Equal(t, "Smith, Al", list[0].Name(), "input order must be preserved")
}

func TestScopes(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	adultRegular := &Employee{FirstName: "A", LastName: "Adult", Role: RoleRegular, Active: true, DateOfBirth: date(2007, 6, 15)}
	minorManager := &Employee{FirstName: "M", LastName: "Minor", Role: RoleManager, Active: true, DateOfBirth: date(2007, 6, 16)}
	inactiveAdmin := &Employee{FirstName: "I", LastName: "Inactive", Role: RoleAdmin, Active: false, DateOfBirth: date(1980, 1, 1)}
	all := []*Employee{adultRegular, minorManager, inactiveAdmin}

	assert.Equal(t, []*Employee{adultRegular, minorManager}, Active(all))
	assert.Equal(t, []*Employee{inactiveAdmin}, Inactive(all))
	assert.Equal(t, []*Employee{adultRegular, inactiveAdmin}, EighteenOrOlder(all, now))
	assert.Equal(t, []*Employee{minorManager}, YoungerThan18(all, now))
	assert.Equal(t, []*Employee{adultRegular}, Regulars(all))
	assert.Equal(t, []*Employee{minorManager}, Managers(all))
	assert.Equal(t, []*Employee{inactiveAdmin}, Admins(all))

	assert.Equal(t, []*Employee{adultRegular}, Filter(all, now, ScopeActive, ScopeEighteenOrOlder))
	assert.Empty(t, Filter(all, now, ScopeActive, ScopeInactive))
	assert.Equal(t, all, Filter(all, now))
}

func TestParseScope(t *testing.T) {
	t.Parallel()

	s, err := ParseScope(" Managers ")
	require.NoError(t, err)
	assert.Equal(t, ScopeManagers, s)

	_, err = ParseScope("alphabetical")
	assert.ErrorIs(t, err, ErrInvalidScope)
}
