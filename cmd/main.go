package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	log "github.com/sirupsen/logrus"

	"github.com/k-negishi/ics-weekly-sheet-exporter/internal/config"
	"github.com/k-negishi/ics-weekly-sheet-exporter/internal/logging"
)

// LambdaEvent Lambda実行時のイベント構造体
type LambdaEvent struct {
	// EventBridge Schedulerからの実行なので特に使用しない
}

// LambdaResponse Lambda実行結果のレスポンス
type LambdaResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// handler Lambda関数のメインハンドラー
func handler(ctx context.Context, event LambdaEvent) (LambdaResponse, error) {
	// 設定を読み込み
	cfg, err := config.Load()
	if err != nil {
		return LambdaResponse{
			StatusCode: 500,
			Message:    "設定読み込みエラー",
		}, err
	}
	logging.Setup(cfg.LogLevel, true)

	// Lambdaでは対話的な認可はできない
	result, err := runExport(ctx, cfg, false)
	if err != nil {
		log.Errorf("エクスポートに失敗しました: %v", err)
		return LambdaResponse{
			StatusCode: 500,
			Message:    "エクスポートエラー",
		}, err
	}

	return LambdaResponse{
		StatusCode: 200,
		Message:    fmt.Sprintf("%d件の予定を書き込みました（%dセル更新）", result.Rows, result.UpdatedCells),
	}, nil
}

func main() {
	if config.IsLambda() {
		lambda.Start(handler)
		return
	}

	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
