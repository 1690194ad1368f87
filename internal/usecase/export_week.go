package usecase

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/k-negishi/ics-weekly-sheet-exporter/internal/domain"
)

// Scanner 今週分の行を収集するポート
type Scanner interface {
	Scan(ctx context.Context, now time.Time) ([]domain.Row, error)
}

// SheetPublisher スプレッドシートへ書き込むポート
type SheetPublisher interface {
	// WriteHeader ヘッダー行を書き込む
	WriteHeader(ctx context.Context) error
	// AppendRows 行を追記し、更新されたセル数を返す
	AppendRows(ctx context.Context, rows []domain.Row) (int64, error)
}

// ExportResult エクスポート結果
type ExportResult struct {
	Rows         int
	UpdatedCells int64
}

// ExportWeekUseCase 今週のカレンダーファイルをスプレッドシートへ書き出すユースケース
type ExportWeekUseCase struct {
	scanner   Scanner
	publisher SheetPublisher
}

// NewExportWeekUseCase ユースケースを生成
func NewExportWeekUseCase(scanner Scanner, publisher SheetPublisher) *ExportWeekUseCase {
	return &ExportWeekUseCase{
		scanner:   scanner,
		publisher: publisher,
	}
}

// Execute フォルダを読み込み、ヘッダー行を書き込んだ後に行を追記する
// 行が0件の場合は追記しない
func (uc *ExportWeekUseCase) Execute(ctx context.Context, now time.Time) (ExportResult, error) {
	// シートに触る前にローカルの読み込みを完了させる
	rows, err := uc.scanner.Scan(ctx, now)
	if err != nil {
		log.Errorf("カレンダーファイルの読み込みに失敗しました: %v", err)
		return ExportResult{}, err
	}

	if err := uc.publisher.WriteHeader(ctx); err != nil {
		log.Errorf("ヘッダー行の書き込みに失敗しました: %v", err)
		return ExportResult{}, err
	}

	if len(rows) == 0 {
		log.Info("今週のイベントがないため追記をスキップしました")
		return ExportResult{}, nil
	}

	updated, err := uc.publisher.AppendRows(ctx, rows)
	if err != nil {
		log.Errorf("行の追記に失敗しました: %v", err)
		return ExportResult{}, err
	}

	return ExportResult{Rows: len(rows), UpdatedCells: updated}, nil
}
