package gateway

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/k-negishi/ics-weekly-sheet-exporter/internal/domain"
)

// 値をそのまま書き込む（スプレッドシート側の型推論をしない）
const valueInputRaw = "RAW"

// GoogleSheetsPublisher Google Sheets APIを使用したSheetPublisherの実装
type GoogleSheetsPublisher struct {
	service       *sheets.Service
	spreadsheetID string
	headerRange   string
	appendRange   string
}

// NewGoogleSheetsPublisher OAuthトークンを使ってSheetsクライアントを作成
func NewGoogleSheetsPublisher(ctx context.Context, tokenSource oauth2.TokenSource, spreadsheetID, headerRange, appendRange string) (*GoogleSheetsPublisher, error) {
	service, err := sheets.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("google Sheets APIサービスの作成に失敗しました: %v", err)
	}

	return NewGoogleSheetsPublisherWithService(service, spreadsheetID, headerRange, appendRange), nil
}

// NewGoogleSheetsPublisherWithService 作成済みのサービスから生成（テスト用）
func NewGoogleSheetsPublisherWithService(service *sheets.Service, spreadsheetID, headerRange, appendRange string) *GoogleSheetsPublisher {
	return &GoogleSheetsPublisher{
		service:       service,
		spreadsheetID: spreadsheetID,
		headerRange:   headerRange,
		appendRange:   appendRange,
	}
}

// WriteHeader ヘッダー行を上書きで書き込む
func (p *GoogleSheetsPublisher) WriteHeader(ctx context.Context) error {
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{domain.HeaderValues()},
	}

	resp, err := p.service.Spreadsheets.Values.
		Update(p.spreadsheetID, p.headerRange, valueRange).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return domain.NewStageError(domain.ErrPublish, p.headerRange, err)
	}

	log.WithFields(log.Fields{
		"range":         resp.UpdatedRange,
		"updated_cells": resp.UpdatedCells,
	}).Debug("ヘッダー行を書き込みました")
	return nil
}

// AppendRows 行を追記し、更新されたセル数を返す
func (p *GoogleSheetsPublisher) AppendRows(ctx context.Context, rows []domain.Row) (int64, error) {
	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		values = append(values, row.Values())
	}

	resp, err := p.service.Spreadsheets.Values.
		Append(p.spreadsheetID, p.appendRange, &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return 0, domain.NewStageError(domain.ErrPublish, p.appendRange, err)
	}

	if resp.Updates == nil {
		return 0, nil
	}
	return resp.Updates.UpdatedCells, nil
}
