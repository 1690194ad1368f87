package domain

import "time"

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// Header スプレッドシートのヘッダー行
var Header = []string{
	"Subject",
	"Start Date",
	"Start Time",
	"End Date",
	"End Time",
	"All Day Event",
	"Description",
	"Location",
	"Private",
}

// Row スプレッドシートに書き込む1行分（9列固定）
type Row struct {
	Subject     string
	StartDate   string
	StartTime   string
	EndDate     string
	EndTime     string
	AllDay      bool
	Description string
	Location    string
	Private     bool
}

// Values 列順に並べた値を返す
func (r Row) Values() []interface{} {
	return []interface{}{
		r.Subject,
		r.StartDate,
		r.StartTime,
		r.EndDate,
		r.EndTime,
		r.AllDay,
		r.Description,
		r.Location,
		r.Private,
	}
}

// HeaderValues ヘッダー行を書き込み用の値に変換
func HeaderValues() []interface{} {
	values := make([]interface{}, len(Header))
	for i, h := range Header {
		values[i] = h
	}
	return values
}

// ProjectRow イベントを指定タイムゾーンの行に変換
// 必須項目の有無は呼び出し側で確認済みであること
func ProjectRow(event CalendarEvent, loc *time.Location) Row {
	start := event.Start.In(loc)
	end := event.End.In(loc)

	// 終日・非公開フラグは元データに対応する項目がないため常に false
	return Row{
		Subject:     event.Summary,
		StartDate:   start.Format(dateLayout),
		StartTime:   start.Format(timeLayout),
		EndDate:     end.Format(dateLayout),
		EndTime:     end.Format(timeLayout),
		AllDay:      false,
		Description: event.Description,
		Location:    event.Location,
		Private:     false,
	}
}
