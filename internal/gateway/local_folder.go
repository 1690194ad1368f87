package gateway

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/k-negishi/ics-weekly-sheet-exporter/internal/domain"
)

// LocalFolder ローカルファイルシステム上のフォルダを読むCalendarFolderの実装
type LocalFolder struct {
	path string
	fsys fs.FS
}

// NewLocalFolder フォルダ読み込みクライアントを作成
func NewLocalFolder(path string) *LocalFolder {
	return &LocalFolder{
		path: path,
		fsys: os.DirFS(path),
	}
}

// Path 対象フォルダのパス
func (f *LocalFolder) Path() string {
	return f.path
}

// ListFiles フォルダ直下のエントリ名を列挙（サブフォルダは再帰しない）
func (f *LocalFolder) ListFiles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(f.fsys, ".")
	if err != nil {
		return nil, domain.NewStageError(domain.ErrDirectoryRead, f.path, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// Stat エントリの更新日時を取得
func (f *LocalFolder) Stat(ctx context.Context, name string) (domain.FileCandidate, error) {
	if err := ctx.Err(); err != nil {
		return domain.FileCandidate{}, err
	}

	info, err := fs.Stat(f.fsys, name)
	if err != nil {
		return domain.FileCandidate{}, domain.NewStageError(domain.ErrFileStat, filepath.Join(f.path, name), err)
	}

	return domain.FileCandidate{
		Name:    name,
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}, nil
}

// ReadFile ファイル全体を文字列として読み込む
func (f *LocalFolder) ReadFile(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := fs.ReadFile(f.fsys, name)
	if err != nil {
		return "", domain.NewStageError(domain.ErrFileRead, filepath.Join(f.path, name), err)
	}
	return string(data), nil
}
