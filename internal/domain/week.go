package domain

import "time"

// WeekWindow now を含む週の範囲を返す
// 開始は直近の日曜 00:00、終了は土曜の now と同じ時刻（どちらも境界を含む）
func WeekWindow(now time.Time) (weekStart, weekEnd time.Time) {
	sunday := now.Day() - int(now.Weekday())

	weekStart = time.Date(now.Year(), now.Month(), sunday, 0, 0, 0, 0, now.Location())
	weekEnd = time.Date(now.Year(), now.Month(), sunday+6,
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
	return weekStart, weekEnd
}

// IsCurrentWeek 更新日時が now の週に含まれるか判定
// 日付単位ではなくタイムスタンプ単位で比較する
func IsCurrentWeek(modifiedTime, now time.Time) bool {
	weekStart, weekEnd := WeekWindow(now)
	return !modifiedTime.Before(weekStart) && !modifiedTime.After(weekEnd)
}
