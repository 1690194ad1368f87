package gateway

import (
	"fmt"
	"strings"
	"time"

	duration "github.com/ChannelMeter/iso8601duration"
	ical "github.com/arran4/golang-ical"
	log "github.com/sirupsen/logrus"

	"github.com/k-negishi/ics-weekly-sheet-exporter/internal/domain"
)

const (
	icsFloatingDateTime = "20060102T150405"
	icsFloatingDate     = "20060102"
)

// ICSParser iCalendar形式のテキストを解析するCalendarParserの実装
type ICSParser struct {
	// TZIDもUTC指定もない日時を解釈するタイムゾーン
	floating *time.Location
}

// NewICSParser ICSパーサーを作成
func NewICSParser(floating *time.Location) *ICSParser {
	return &ICSParser{floating: floating}
}

// Parse カレンダー全体を解析し、VEVENTをファイル内の順序で返す
// 必須項目が欠けたイベントもそのまま返す（除外は呼び出し側で行う）
// 空のファイルはイベント0件として扱う
func (p *ICSParser) Parse(raw string) ([]domain.CalendarEvent, error) {
	if strings.TrimSpace(raw) == "" {
		return []domain.CalendarEvent{}, nil
	}

	cal, err := ical.ParseCalendar(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}

	vevents := cal.Events()
	events := make([]domain.CalendarEvent, 0, len(vevents))
	for i, vevent := range vevents {
		event, err := p.convertToEvent(vevent)
		if err != nil {
			return nil, fmt.Errorf("VEVENT[%d]: %w", i, err)
		}
		events = append(events, event)
	}

	return events, nil
}

// convertToEvent VEVENTをドメインエンティティに変換
func (p *ICSParser) convertToEvent(vevent *ical.VEvent) (domain.CalendarEvent, error) {
	event := domain.CalendarEvent{
		Summary:     propertyValue(vevent, ical.ComponentPropertySummary),
		Description: propertyValue(vevent, ical.ComponentPropertyDescription),
		Location:    propertyValue(vevent, ical.ComponentPropertyLocation),
	}

	start, err := p.eventTime(vevent, ical.ComponentPropertyDtStart)
	if err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("開始時刻の解析に失敗しました: %w", err)
	}
	event.Start = start

	end, err := p.eventTime(vevent, ical.ComponentPropertyDtEnd)
	if err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("終了時刻の解析に失敗しました: %w", err)
	}

	// DTENDがなくDURATIONがある場合は開始時刻から算出
	if end.IsZero() && !start.IsZero() {
		if prop := vevent.GetProperty(ical.ComponentPropertyDuration); prop != nil {
			end, err = addDuration(start, prop.Value)
			if err != nil {
				return domain.CalendarEvent{}, fmt.Errorf("DURATIONの解析に失敗しました: %w", err)
			}
		}
	}
	event.End = end

	return event, nil
}

// eventTime 日時プロパティを解析する。プロパティがない場合はゼロ値を返す
func (p *ICSParser) eventTime(vevent *ical.VEvent, property ical.ComponentProperty) (time.Time, error) {
	prop := vevent.GetProperty(property)
	if prop == nil || strings.TrimSpace(prop.Value) == "" {
		return time.Time{}, nil
	}

	tzids, hasTZID := prop.ICalParameters["TZID"]
	if !hasTZID && !strings.HasSuffix(strings.ToUpper(strings.TrimSpace(prop.Value)), "Z") {
		// ライブラリはフローティング時刻をtime.Localで解釈するため自前で解析する
		return parseFloating(prop.Value, p.floating)
	}

	var t time.Time
	var err error
	if property == ical.ComponentPropertyDtStart {
		t, err = vevent.GetStartAt()
	} else {
		t, err = vevent.GetEndAt()
	}
	if err != nil {
		// 未知のTZIDはフローティング時刻として扱う
		if hasTZID && len(tzids) == 1 {
			if _, lerr := time.LoadLocation(tzids[0]); lerr != nil {
				log.WithFields(log.Fields{
					"tzid":     tzids[0],
					"property": string(property),
				}).Warn("未知のTZIDのため既定のタイムゾーンで解釈します")
				return parseFloating(prop.Value, p.floating)
			}
		}
		return time.Time{}, err
	}
	return t, nil
}

// parseFloating タイムゾーン指定のない日時・日付を指定タイムゾーンで解析
func parseFloating(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if strings.Contains(value, "T") {
		return time.ParseInLocation(icsFloatingDateTime, value, loc)
	}
	return time.ParseInLocation(icsFloatingDate, value, loc)
}

// addDuration ISO 8601形式の期間を加算する。日・週は暦日として加算
func addDuration(start time.Time, value string) (time.Time, error) {
	d, err := duration.FromString(strings.TrimPrefix(strings.TrimSpace(value), "+"))
	if err != nil {
		return time.Time{}, err
	}

	end := start.AddDate(d.Years, 0, d.Weeks*7+d.Days)
	return end.Add(time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second), nil
}

// propertyValue テキストプロパティの値を取得（存在しない場合は空文字）
func propertyValue(vevent *ical.VEvent, property ical.ComponentProperty) string {
	if prop := vevent.GetProperty(property); prop != nil {
		return prop.Value
	}
	return ""
}
