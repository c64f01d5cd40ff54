package employee

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ogurasousui/store-staffing/internal/core/normalize"
)

// Scope は社員コレクションに対する名前付きの絞り込み条件です。
// 複数指定した場合は積集合として扱います。
type Scope string

const (
	ScopeActive          Scope = "active"
	ScopeInactive        Scope = "inactive"
	ScopeEighteenOrOlder Scope = "is_18_or_older"
	ScopeYoungerThan18   Scope = "younger_than_18"
	ScopeRegulars        Scope = "regulars"
	ScopeManagers        Scope = "managers"
	ScopeAdmins          Scope = "admins"
)

// ParseScope は文字列をスコープに変換します。
func ParseScope(raw string) (Scope, error) {
	scope := Scope(strings.ToLower(strings.TrimSpace(raw)))
	switch scope {
	case ScopeActive, ScopeInactive, ScopeEighteenOrOlder, ScopeYoungerThan18,
		ScopeRegulars, ScopeManagers, ScopeAdmins:
		return scope, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, raw)
	}
}

// Matches は e がスコープ条件を満たすかを返します。年齢系スコープは now を基準日とします。
func (s Scope) Matches(e *Employee, now time.Time) bool {
	switch s {
	case ScopeActive:
		return e.Active
	case ScopeInactive:
		return !e.Active
	case ScopeEighteenOrOlder:
		return !normalize.Date(e.DateOfBirth).After(AdultCutoff(now))
	case ScopeYoungerThan18:
		return normalize.Date(e.DateOfBirth).After(AdultCutoff(now))
	case ScopeRegulars:
		return e.Role == RoleRegular
	case ScopeManagers:
		return e.Role == RoleManager
	case ScopeAdmins:
		return e.Role == RoleAdmin
	default:
		return false
	}
}

// Filter は全スコープを満たす社員だけを元の順序のまま返します。
func Filter(list []*Employee, now time.Time, scopes ...Scope) []*Employee {
	out := make([]*Employee, 0, len(list))
	for _, e := range list {
		if matchesAll(e, now, scopes) {
			out = append(out, e)
		}
	}
	return out
}

func matchesAll(e *Employee, now time.Time, scopes []Scope) bool {
	for _, s := range scopes {
		if !s.Matches(e, now) {
			return false
		}
	}
	return true
}

// Alphabetical は姓、名の昇順に並べた新しいスライスを返します。
func Alphabetical(list []*Employee) []*Employee {
	out := make([]*Employee, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out
}

func Active(list []*Employee) []*Employee {
	return Filter(list, time.Time{}, ScopeActive)
}

func Inactive(list []*Employee) []*Employee {
	return Filter(list, time.Time{}, ScopeInactive)
}

func EighteenOrOlder(list []*Employee, now time.Time) []*Employee {
	return Filter(list, now, ScopeEighteenOrOlder)
}

func YoungerThan18(list []*Employee, now time.Time) []*Employee {
	return Filter(list, now, ScopeYoungerThan18)
}

func Regulars(list []*Employee) []*Employee {
	return Filter(list, time.Time{}, ScopeRegulars)
}

func Managers(list []*Employee) []*Employee {
	return Filter(list, time.Time{}, ScopeManagers)
}

func Admins(list []*Employee) []*Employee {
	return Filter(list, time.Time{}, ScopeAdmins)
}
