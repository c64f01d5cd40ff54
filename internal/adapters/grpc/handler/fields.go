package handler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

const dateLayout = "2006-01-02"

// fieldError はリクエストの 1 フィールドを解釈できなかったことを表します。
type fieldError struct {
	field       string
	description string
}

func (e *fieldError) Error() string {
	return e.field + " " + e.description
}

// fields は Struct リクエストの型付き読み出しを提供します。null は未指定として扱います。
type fields struct {
	values map[string]*structpb.Value
}

func newFields(req *structpb.Struct) fields {
	return fields{values: req.GetFields()}
}

func (f fields) lookup(name string) (*structpb.Value, bool) {
	v, ok := f.values[name]
	if !ok || v == nil {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func (f fields) has(name string) bool {
	_, ok := f.lookup(name)
	return ok
}

// str は文字列を返します。文字列以外の値はエラーです。
func (f fields) str(name string) (string, bool, error) {
	v, ok := f.lookup(name)
	if !ok {
		return "", false, nil
	}
	if k, isString := v.GetKind().(*structpb.Value_StringValue); isString {
		return k.StringValue, true, nil
	}
	return "", true, &fieldError{field: name, description: "must be a string"}
}

// numericText は文字列を返します。SSN や電話番号のように数字列を値とするフィールド用で、
// 数値は整数表記の文字列に変換します。
func (f fields) numericText(name string) (string, bool, error) {
	v, ok := f.lookup(name)
	if !ok {
		return "", false, nil
	}
	if k, isNumber := v.GetKind().(*structpb.Value_NumberValue); isNumber {
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64), true, nil
	}
	return f.str(name)
}

func (f fields) optionalString(name string) (*string, error) {
	return optional(f.str(name))
}

// optional は str / numericText の結果をポインタに変換します。未指定は nil です。
func optional(s string, ok bool, err error) (*string, error) {
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

// boolean は真偽値を返します。"true" / "false" などの文字列も受け付けます。
func (f fields) boolean(name string) (bool, bool, error) {
	v, ok := f.lookup(name)
	if !ok {
		return false, false, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return k.BoolValue, true, nil
	case *structpb.Value_StringValue:
		b, err := strconv.ParseBool(strings.TrimSpace(k.StringValue))
		if err != nil {
			return false, true, &fieldError{field: name, description: "must be a boolean"}
		}
		return b, true, nil
	default:
		return false, true, &fieldError{field: name, description: "must be a boolean"}
	}
}

func (f fields) optionalBool(name string) (*bool, error) {
	b, ok, err := f.boolean(name)
	if err != nil || !ok {
		return nil, err
	}
	return &b, nil
}

func (f fields) integer(name string) (int, bool, error) {
	v, ok := f.lookup(name)
	if !ok {
		return 0, false, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if k.NumberValue != math.Trunc(k.NumberValue) || math.Abs(k.NumberValue) > math.MaxInt32 {
			return 0, true, &fieldError{field: name, description: "must be an integer"}
		}
		return int(k.NumberValue), true, nil
	case *structpb.Value_StringValue:
		n, err := strconv.Atoi(strings.TrimSpace(k.StringValue))
		if err != nil {
			return 0, true, &fieldError{field: name, description: "must be an integer"}
		}
		return n, true, nil
	default:
		return 0, true, &fieldError{field: name, description: "must be an integer"}
	}
}

func (f fields) stringList(name string) ([]string, error) {
	v, ok := f.lookup(name)
	if !ok {
		return nil, nil
	}
	list, isList := v.GetKind().(*structpb.Value_ListValue)
	if !isList {
		return nil, &fieldError{field: name, description: "must be a list of strings"}
	}
	out := make([]string, 0, len(list.ListValue.GetValues()))
	for _, item := range list.ListValue.GetValues() {
		s, isString := item.GetKind().(*structpb.Value_StringValue)
		if !isString {
			return nil, &fieldError{field: name, description: "must be a list of strings"}
		}
		out = append(out, s.StringValue)
	}
	return out, nil
}

func (f fields) date(name string) (*time.Time, error) {
	s, ok, err := f.str(name)
	if err != nil || !ok {
		return nil, err
	}
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return nil, &fieldError{field: name, description: fmt.Sprintf("must be a date (%s)", dateLayout)}
	}
	return &t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func response(values map[string]any) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(values)
	if err != nil {
		return nil, toStatusError(fmt.Errorf("handler: encode response: %w", err))
	}
	return st, nil
}
