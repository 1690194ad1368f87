package main

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	log "github.com/sirupsen/logrus"

	"github.com/k-negishi/ics-weekly-sheet-exporter/internal/config"
	"github.com/k-negishi/ics-weekly-sheet-exporter/internal/gateway"
	"github.com/k-negishi/ics-weekly-sheet-exporter/internal/usecase"
)

// newTokenStore 実行環境に応じたトークンの保存先
func newTokenStore(cfg *config.Config) gateway.TokenStore {
	if awsConfig, ok := cfg.AWSConfig(); ok {
		return gateway.NewSSMTokenStore(ssm.NewFromConfig(awsConfig), cfg.TokenParam)
	}
	return gateway.NewFileTokenStore(cfg.TokenPath)
}

// newAuthorizer 認可クライアントを作成
// interactive が false の場合は保存済みトークンのみを使用する
func newAuthorizer(cfg *config.Config, interactive bool) (*gateway.GoogleAuthorizer, error) {
	credentialsJSON, err := cfg.CredentialsJSON()
	if err != nil {
		return nil, err
	}

	var grant gateway.GrantFunc
	if interactive {
		grant = gateway.NewLoopbackGrant(os.Stderr).Grant
	}
	return gateway.NewGoogleAuthorizer(credentialsJSON, newTokenStore(cfg), grant)
}

// buildUseCase 設定からエクスポートのユースケースを組み立てる
func buildUseCase(ctx context.Context, cfg *config.Config, location *time.Location, interactive bool) (*usecase.ExportWeekUseCase, error) {
	authorizer, err := newAuthorizer(cfg, interactive)
	if err != nil {
		return nil, err
	}

	tokenSource, err := authorizer.TokenSource(ctx)
	if err != nil {
		return nil, err
	}

	publisher, err := gateway.NewGoogleSheetsPublisher(ctx, tokenSource, cfg.SpreadsheetID, cfg.HeaderRange, cfg.AppendRange)
	if err != nil {
		return nil, err
	}

	scanner := usecase.NewFolderScanner(
		gateway.NewLocalFolder(cfg.FolderPath),
		gateway.NewICSParser(location),
		location,
		cfg.FileExtension,
	)

	return usecase.NewExportWeekUseCase(scanner, publisher), nil
}

// runExport 現在時刻の週でエクスポートを1回実行
func runExport(ctx context.Context, cfg *config.Config, interactive bool) (usecase.ExportResult, error) {
	location, err := cfg.Location()
	if err != nil {
		return usecase.ExportResult{}, err
	}

	uc, err := buildUseCase(ctx, cfg, location, interactive)
	if err != nil {
		return usecase.ExportResult{}, err
	}

	result, err := uc.Execute(ctx, time.Now().In(location))
	if err != nil {
		return usecase.ExportResult{}, err
	}

	log.WithFields(log.Fields{
		"folder":        cfg.FolderPath,
		"rows":          result.Rows,
		"updated_cells": result.UpdatedCells,
	}).Infof("%d件の予定を書き込みました（%dセル更新）", result.Rows, result.UpdatedCells)
	return result, nil
}
