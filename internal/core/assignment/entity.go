package assignment

import (
	"sort"
	"time"

	"github.com/ogurasousui/store-staffing/internal/core/normalize"
)

// Assignment は社員を店舗へ期間付きで配属する関連エンティティです。
// EndDate が nil の場合は終了日未定 (継続中) を表します。
type Assignment struct {
	ID         string
	EmployeeID string
	StoreID    string
	StartDate  time.Time
	EndDate    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsCurrent は today 時点で有効な配属かを返します。
// 開始日が today 以前で、終了日が未設定または today 以降であれば有効です。
func (a *Assignment) IsCurrent(today time.Time) bool {
	if a == nil {
		return false
	}
	day := DateOf(today)
	if DateOf(a.StartDate).After(day) {
		return false
	}
	return a.EndDate == nil || !DateOf(*a.EndDate).Before(day)
}

// IsOpenEnded は終了日が未設定かを返します。
func (a *Assignment) IsOpenEnded() bool {
	return a != nil && a.EndDate == nil
}

// Current は list の中から today 時点で有効な配属を 1 件選びます。
// 複数該当する場合は開始日が最も新しいもの、次に作成日時が新しいもの、
// 最後に ID が大きいものを優先します。該当がなければ nil を返します。
func Current(list []*Assignment, today time.Time) *Assignment {
	current := make([]*Assignment, 0, len(list))
	for _, a := range list {
		if a.IsCurrent(today) {
			current = append(current, a)
		}
	}
	if len(current) == 0 {
		return nil
	}

	sort.SliceStable(current, func(i, j int) bool {
		return newerThan(current[i], current[j])
	})
	return current[0]
}

func newerThan(a, b *Assignment) bool {
	if !a.StartDate.Equal(b.StartDate) {
		return a.StartDate.After(b.StartDate)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// DateOf は t を UTC の日付 (00:00:00) に丸めます。
func DateOf(t time.Time) time.Time {
	return normalize.Date(t)
}
