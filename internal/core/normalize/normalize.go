// Package normalize は入力値を正規形へ変換する共通処理を提供します。
package normalize

import (
	"strings"
	"time"
	"unicode"
)

// Digits は s から ASCII 数字以外の文字をすべて取り除きます。
// 数字の順序は保持され、結果に再適用しても変化しません。
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// IsDigits は s が空でなく ASCII 数字のみで構成されているかを返します。
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Text は前後の空白を除去し、連続する空白を 1 文字にまとめます。
func Text(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// Date は t を UTC の暦日 (00:00:00) に丸めます。
// t のロケーションでの年月日をそのまま採用します。
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
