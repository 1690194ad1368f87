package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/k-negishi/ics-weekly-sheet-exporter/internal/config"
	"github.com/k-negishi/ics-weekly-sheet-exporter/internal/logging"
)

// newRootCmd コマンドツリーを作成（サブコマンド省略時は run と同じ動作）
func newRootCmd() *cobra.Command {
	var cfg *config.Config

	loadConfig := func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		logging.Setup(loaded.LogLevel, false)
		cfg = loaded
		return nil
	}

	runE := func(cmd *cobra.Command, _ []string) error {
		_, err := runExport(cmd.Context(), cfg, true)
		return err
	}

	root := &cobra.Command{
		Use:               "ics-weekly-sheet-exporter",
		Short:             "今週更新されたICSファイルの予定をGoogleスプレッドシートへ書き出す",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
		RunE:              runE,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "エクスポートを1回実行",
			RunE:  runE,
		},
		&cobra.Command{
			Use:   "auth",
			Short: "ブラウザでGoogleアカウントを認可し、トークンを保存",
			RunE: func(cmd *cobra.Command, _ []string) error {
				authorizer, err := newAuthorizer(cfg, true)
				if err != nil {
					return err
				}
				if _, err := authorizer.Authorize(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "認可が完了しました")
				return nil
			},
		},
		&cobra.Command{
			Use:   "schedule",
			Short: "cron式のスケジュールでエクスポートを繰り返し実行",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runSchedule(cmd.Context(), cfg)
			},
		},
	)

	return root
}

// newScheduler cron式でジョブを登録したスケジューラを作成
func newScheduler(expr string, location *time.Location, job func()) (*cron.Cron, error) {
	scheduler := cron.New(cron.WithLocation(location))
	if _, err := scheduler.AddFunc(expr, job); err != nil {
		return nil, fmt.Errorf("スケジュール %q の解析に失敗しました: %v", expr, err)
	}
	return scheduler, nil
}

// runSchedule SIGINT/SIGTERMを受けるまでスケジュール実行を続ける
func runSchedule(ctx context.Context, cfg *config.Config) error {
	location, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler, err := newScheduler(cfg.Schedule, location, func() {
		// 失敗しても次回の実行は継続する
		if _, err := runExport(ctx, cfg, false); err != nil {
			log.Errorf("エクスポートに失敗しました: %v", err)
		}
	})
	if err != nil {
		return err
	}

	scheduler.Start()
	log.WithField("schedule", cfg.Schedule).Info("スケジュール実行を開始しました")

	<-ctx.Done()
	<-scheduler.Stop().Done()
	log.Info("スケジュール実行を終了しました")
	return nil
}
