package domain

import "time"

// CalendarEvent カレンダーファイルから読み取ったイベントのドメインエンティティ
// Start/End のゼロ値、Summary の空文字は「未設定」を表す
type CalendarEvent struct {
	Start       time.Time
	End         time.Time
	Summary     string
	Description string
	Location    string
}

// HasRequiredFields 出力に必要な開始・終了・件名が揃っているか
func (e CalendarEvent) HasRequiredFields() bool {
	return !e.Start.IsZero() && !e.End.IsZero() && e.Summary != ""
}

// FileCandidate 週フィルタ判定用のファイル情報
type FileCandidate struct {
	Name    string
	ModTime time.Time
	IsDir   bool
}
