package employee

import (
	"time"

	"github.com/ogurasousui/store-staffing/internal/core/normalize"
)

// DateLayout は生年月日の入力および表示形式です。
const DateLayout = "2006-01-02"

// Attributes は検証前の社員属性です。呼び出し元から受け取った値をそのまま保持します。
type Attributes struct {
	FirstName   string
	LastName    string
	SSN         string
	DateOfBirth string
	Phone       string
	Role        Role
	Active      *bool
}

// NormalizeSSN は SSN から数字以外の文字を取り除きます。
func NormalizeSSN(raw string) string {
	return normalize.Digits(raw)
}

// NormalizePhoneNumber は電話番号から数字以外の文字を取り除きます。
func NormalizePhoneNumber(raw string) string {
	return normalize.Digits(raw)
}

// Normalize は検証の前段で必ず呼び出す正規化処理です。何度適用しても結果は変わりません。
func Normalize(a Attributes) Attributes {
	a.FirstName = normalize.Text(a.FirstName)
	a.LastName = normalize.Text(a.LastName)
	a.SSN = NormalizeSSN(a.SSN)
	a.Phone = NormalizePhoneNumber(a.Phone)
	a.DateOfBirth = normalize.Text(a.DateOfBirth)
	if a.Active != nil {
		active := *a.Active
		a.Active = &active
	}
	return a
}

func parseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, raw, time.UTC)
}

// build は検証済みの属性からエンティティを組み立てます。
func build(a Attributes) *Employee {
	dob, _ := parseDate(a.DateOfBirth)
	return &Employee{
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		SSN:         a.SSN,
		DateOfBirth: dob,
		Phone:       a.Phone,
		Role:        a.Role,
		Active:      a.Active != nil && *a.Active,
	}
}
