package usecase

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/k-negishi/ics-weekly-sheet-exporter/internal/domain"
)

// CalendarFolder カレンダーファイルを置いたフォルダを読むポート
type CalendarFolder interface {
	// ListFiles フォルダ直下のエントリ名を列挙
	ListFiles(ctx context.Context) ([]string, error)
	// Stat エントリの更新日時を取得
	Stat(ctx context.Context, name string) (domain.FileCandidate, error)
	// ReadFile ファイル全体をテキストとして読み込む
	ReadFile(ctx context.Context, name string) (string, error)
}

// CalendarParser カレンダーファイルのテキストをイベントに変換するポート
type CalendarParser interface {
	Parse(raw string) ([]domain.CalendarEvent, error)
}

// FolderScanner フォルダから今週分のカレンダーファイルを読み、出力行を組み立てる
type FolderScanner struct {
	folder    CalendarFolder
	parser    CalendarParser
	location  *time.Location
	extension string
}

// NewFolderScanner フォルダスキャナーを生成
func NewFolderScanner(folder CalendarFolder, parser CalendarParser, location *time.Location, extension string) *FolderScanner {
	return &FolderScanner{
		folder:    folder,
		parser:    parser,
		location:  location,
		extension: extension,
	}
}

// Scan 今週更新されたカレンダーファイルのイベントを行に変換して返す
// ファイルの列挙順、ファイル内のイベント順を保持する
func (s *FolderScanner) Scan(ctx context.Context, now time.Time) ([]domain.Row, error) {
	names, err := s.folder.ListFiles(ctx)
	if err != nil {
		return nil, err
	}

	// 全エントリの更新日時を先に取得（1件でも失敗したら中断）
	candidates := make([]domain.FileCandidate, 0, len(names))
	for _, name := range names {
		candidate, err := s.folder.Stat(ctx, name)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
	}

	rows := make([]domain.Row, 0)
	for _, candidate := range candidates {
		if !s.accepts(candidate, now) {
			continue
		}

		data, err := s.folder.ReadFile(ctx, candidate.Name)
		if err != nil {
			return nil, err
		}

		events, err := s.parser.Parse(data)
		if err != nil {
			return nil, domain.NewStageError(domain.ErrParse, candidate.Name, err)
		}

		skipped := 0
		for _, event := range events {
			// 開始・終了・件名のいずれかが欠けたイベントは黙って除外
			if !event.HasRequiredFields() {
				skipped++
				continue
			}
			rows = append(rows, domain.ProjectRow(event, s.location))
		}

		log.WithFields(log.Fields{
			"file":    candidate.Name,
			"events":  len(events),
			"skipped": skipped,
		}).Debug("カレンダーファイルを読み込みました")
	}

	return rows, nil
}

// accepts 拡張子と更新日時で対象ファイルか判定
func (s *FolderScanner) accepts(candidate domain.FileCandidate, now time.Time) bool {
	if candidate.IsDir {
		return false
	}
	if !strings.HasSuffix(candidate.Name, s.extension) {
		return false
	}
	return domain.IsCurrentWeek(candidate.ModTime, now)
}
