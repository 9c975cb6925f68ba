package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	ProductImages = "products"
	Receipts      = "receipts"
)

var ErrInvalidImage = errors.New("file is not a supported image")

var allowExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

func isValidImageExtension(filename string) bool {
	fileExt := strings.ToLower(filepath.Ext(filename))
	for _, allowExt := range allowExtensions {
		if fileExt == allowExt {
			return true
		}
	}
	return false
}

// 將上傳檔案存放在本機uploads資料夾
type Local struct {
	Dir       string
	URLPrefix string
}

func NewLocal(dir string) *Local {
	return &Local{Dir: dir, URLPrefix: "/uploads"}
}

// 儲存圖片，副檔名與檔案內容都必須是圖片，回傳可公開存取的路徑
func (l *Local) SaveImage(file *multipart.FileHeader, category string) (string, error) {
	if !isValidImageExtension(file.Filename) {
		return "", fmt.Errorf("%w: extension %q", ErrInvalidImage, filepath.Ext(file.Filename))
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: content type %s", ErrInvalidImage, mtype.String())
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	//檢查資料夾是否存在，如不存在則創建
	dir := filepath.Join(l.Dir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return path.Join(l.URLPrefix, category, name), nil
}
