package employee

import (
	"time"

	"github.com/ogurasousui/store-staffing/internal/core/normalize"
)

// Role は社員の権限レベルを表します。
type Role int

const (
	RoleRegular Role = 1
	RoleManager Role = 2
	RoleAdmin   Role = 3
)

// IsValid は定義済みのロールかを返します。
func (r Role) IsValid() bool {
	switch r {
	case RoleRegular, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	switch r {
	case RoleRegular:
		return "regular"
	case RoleManager:
		return "manager"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Employee は社員エンティティです。
// SSN と Phone は正規化済みの数字列を保持します。
type Employee struct {
	ID          string
	FirstName   string
	LastName    string
	SSN         string
	DateOfBirth time.Time
	Phone       string
	Role        Role
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e *Employee) IsEmployeeRole() bool {
	return e.Role == RoleRegular
}

func (e *Employee) IsManagerRole() bool {
	return e.Role == RoleManager
}

func (e *Employee) IsAdminRole() bool {
	return e.Role == RoleAdmin
}

// Name は "姓, 名" 形式 (例: "Doe, Jane") の表示名を返します。
func (e *Employee) Name() string {
	return e.LastName + ", " + e.FirstName
}

// ProperName は "名 姓" 形式 (例: "Jane Doe") の表示名を返します。
func (e *Employee) ProperName() string {
	return e.FirstName + " " + e.LastName
}

// Over18 は now 時点で 18 歳以上かを返します。
// 判定は ScopeEighteenOrOlder と同じく生年月日と基準日の比較で行います。
func (e *Employee) Over18(now time.Time) bool {
	return !normalize.Date(e.DateOfBirth).After(AdultCutoff(now))
}

// MakeActive は在籍フラグを立てます。永続化は Service.MakeActive が行います。
func (e *Employee) MakeActive() {
	e.Active = true
}

// MakeInactive は在籍フラグを下ろします。永続化は Service.MakeInactive が行います。
func (e *Employee) MakeInactive() {
	e.Active = false
}

// Attributes は再検証用に現在の値を入力形式へ戻します。
func (e *Employee) Attributes() Attributes {
	active := e.Active
	return Attributes{
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		SSN:         e.SSN,
		DateOfBirth: e.DateOfBirth.Format(DateLayout),
		Phone:       e.Phone,
		Role:        e.Role,
		Active:      &active,
	}
}
