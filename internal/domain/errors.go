package domain

import (
	"errors"
	"fmt"
)

// 処理を中断させるエラーの種別
var (
	ErrDirectoryRead = errors.New("フォルダの読み込みに失敗しました")
	ErrFileStat      = errors.New("ファイル情報の取得に失敗しました")
	ErrFileRead      = errors.New("ファイルの読み込みに失敗しました")
	ErrParse         = errors.New("カレンダーファイルの解析に失敗しました")
	ErrAuth          = errors.New("Google認証に失敗しました")
	ErrPublish       = errors.New("スプレッドシートへの書き込みに失敗しました")
)

// StageError 失敗した処理段階と対象を保持するエラー
type StageError struct {
	Kind   error
	Target string
	Err    error
}

// NewStageError エラー種別と対象を付与してラップ
func NewStageError(kind error, target string, err error) *StageError {
	return &StageError{Kind: kind, Target: target, Err: err}
}

func (e *StageError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%v (%s): %v", e.Kind, e.Target, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
