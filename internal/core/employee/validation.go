package employee

import (
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/store-staffing/internal/core/normalize"
)

const (
	ssnLength   = 9
	phoneLength = 10
	minimumAge  = 14
	adultAge    = 18
)

// 検証対象のフィールド名です。
const (
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldSSN         = "ssn"
	FieldDateOfBirth = "date_of_birth"
	FieldPhone       = "phone"
	FieldRole        = "role"
	FieldActive      = "active"
)

// 検証違反のメッセージです。
const (
	MessageBlank          = "can't be blank"
	MessageOnlyNumbers    = "only allows numbers"
	MessageTaken          = "has already been taken"
	MessageInvalidDate    = "is not a valid date"
	MessageTooYoung       = "must be 14 years or older"
	MessageInvalidRole    = "is not a valid role"
	MessageInvalidBoolean = "is not a valid boolean"
	MessageNotText        = "must be text"

	messageWrongLengthFormat = "is the wrong length (should be %d characters)"
)

// ValidationError は 1 フィールドに対する 1 件の検証違反です。
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// ValidationErrors は 1 レコードに対する検証違反をすべて保持します。
// errors.Is(err, ErrValidation) で判定できます。
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return "employee: validation failed: " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// On は指定フィールドの違反メッセージを返します。
func (v ValidationErrors) On(field string) []string {
	var msgs []string
	for _, e := range v {
		if e.Field == field {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// Has は指定フィールドに違反があるかを返します。
func (v ValidationErrors) Has(field string) bool {
	return len(v.On(field)) > 0
}

// validator は 1 つの規則を評価し、0 件以上の違反を返します。
type validator func(a Attributes, now time.Time) []ValidationError

var validators = []validator{
	validateFirstName,
	validateLastName,
	validateSSN,
	validateDateOfBirth,
	validatePhone,
	validateRole,
	validateActive,
}

// Merge は v に rejected を重ねます。rejected に含まれるフィールドは v 側の違反を rejected の内容で置き換えます。
func (v ValidationErrors) Merge(rejected ValidationErrors) ValidationErrors {
	if len(rejected) == 0 {
		return v
	}

	var out ValidationErrors
	placed := make(map[string]bool, len(rejected))
	place := func(field string) {
		if placed[field] {
			return
		}
		placed[field] = true
		for _, r := range rejected {
			if r.Field == field {
				out = append(out, r)
			}
		}
	}

	for _, e := range v {
		if rejected.Has(e.Field) {
			place(e.Field)
			continue
		}
		out = append(out, e)
	}
	for _, r := range rejected {
		place(r.Field)
	}
	return out
}

// Validate は全規則を評価し、違反をまとめて返します。違反がなければ nil です。
// 一意性の確認は永続化層への問い合わせが必要なため Service が別途行います。
func Validate(a Attributes, now time.Time) ValidationErrors {
	var errs ValidationErrors
	for _, v := range validators {
		errs = append(errs, v(a, now)...)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateFirstName(a Attributes, _ time.Time) []ValidationError {
	return requireText(FieldFirstName, a.FirstName)
}

func validateLastName(a Attributes, _ time.Time) []ValidationError {
	return requireText(FieldLastName, a.LastName)
}

func validateSSN(a Attributes, _ time.Time) []ValidationError {
	return digitString(FieldSSN, a.SSN, ssnLength)
}

func validatePhone(a Attributes, _ time.Time) []ValidationError {
	return digitString(FieldPhone, a.Phone, phoneLength)
}

func validateDateOfBirth(a Attributes, now time.Time) []ValidationError {
	if strings.TrimSpace(a.DateOfBirth) == "" {
		return []ValidationError{{Field: FieldDateOfBirth, Message: MessageBlank}}
	}
	dob, err := parseDate(a.DateOfBirth)
	if err != nil {
		return []ValidationError{{Field: FieldDateOfBirth, Message: MessageInvalidDate}}
	}
	if dob.After(MinimumAgeCutoff(now)) {
		return []ValidationError{{Field: FieldDateOfBirth, Message: MessageTooYoung}}
	}
	return nil
}

func validateRole(a Attributes, _ time.Time) []ValidationError {
	if a.Role == 0 {
		return []ValidationError{{Field: FieldRole, Message: MessageBlank}}
	}
	if !a.Role.IsValid() {
		return []ValidationError{{Field: FieldRole, Message: MessageInvalidRole}}
	}
	return nil
}

func validateActive(a Attributes, _ time.Time) []ValidationError {
	if a.Active == nil {
		return []ValidationError{{Field: FieldActive, Message: MessageInvalidBoolean}}
	}
	return nil
}

func requireText(field, value string) []ValidationError {
	if strings.TrimSpace(value) == "" {
		return []ValidationError{{Field: field, Message: MessageBlank}}
	}
	return nil
}

func digitString(field, value string, length int) []ValidationError {
	if value == "" {
		return []ValidationError{{Field: field, Message: MessageBlank}}
	}
	var errs []ValidationError
	if len(value) != length {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(messageWrongLengthFormat, length)})
	}
	if !normalize.IsDigits(value) {
		errs = append(errs, ValidationError{Field: field, Message: MessageOnlyNumbers})
	}
	return errs
}

func ssnTaken() ValidationError {
	return ValidationError{Field: FieldSSN, Message: MessageTaken}
}

// MinimumAgeCutoff は now 時点で 14 歳以上となる生年月日の上限を返します。
func MinimumAgeCutoff(now time.Time) time.Time {
	return yearsBefore(now, minimumAge)
}

// AdultCutoff は now 時点で 18 歳以上となる生年月日の上限を返します。
func AdultCutoff(now time.Time) time.Time {
	return yearsBefore(now, adultAge)
}

// yearsBefore は now の暦日から years 年前の同月同日を返します。
// 該当日が存在しない場合 (2/29) はその月の末日に丸めます。
func yearsBefore(now time.Time, years int) time.Time {
	today := normalize.Date(now)
	cutoff := time.Date(today.Year()-years, today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if cutoff.Month() != today.Month() {
		cutoff = time.Date(today.Year()-years, today.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	}
	return cutoff
}
