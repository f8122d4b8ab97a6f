// Package catalog は商品カタログのビジネスロジックを提供する。
package catalog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ImageStore は商品画像ファイルの保存先インターフェース。
type ImageStore interface {
	// Save は画像を保存し、保存に使ったファイル名を返す。
	Save(reader io.Reader, originalName string) (string, error)

	// Remove は指定ファイル名の画像を削除する。
	Remove(fileName string) error
}

// DirImageStore はローカルディレクトリに商品画像を保存するImageStore実装。
type DirImageStore struct {
	dir    string
	logger *slog.Logger
}

var _ ImageStore = (*DirImageStore)(nil)

// NewDirImageStore は新しいDirImageStoreを生成する。
// 保存先ディレクトリが無ければ作成する。
func NewDirImageStore(dir string, logger *slog.Logger) (*DirImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &DirImageStore{dir: dir, logger: logger}, nil
}

// Save は画像をタイムスタンプ由来のファイル名で保存する。
// 元のファイル名は拡張子の決定にのみ使用する。
func (s *DirImageStore) Save(reader io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	fileName := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)

	f, err := os.Create(filepath.Join(s.dir, fileName))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	s.logger.Debug("image saved", slog.String("file_name", fileName))
	return fileName, nil
}

// Remove は画像ファイルを削除する。ファイルが存在しない場合はエラーにしない。
func (s *DirImageStore) Remove(fileName string) error {
	if fileName == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, fileName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image file: %w", err)
	}
	return nil
}

// Dir は保存先ディレクトリのパスを返す。静的配信の設定に使う。
func (s *DirImageStore) Dir() string {
	return s.dir
}
