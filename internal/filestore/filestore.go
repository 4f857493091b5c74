package filestore

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/gommon/random"
	"go.uber.org/zap"
)

// ErrInvalidExtension is returned for uploads that are not jpg/jpeg/png.
var ErrInvalidExtension = errors.New("Only image files (jpg, jpeg, png) are allowed")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// FileStore writes product images to a local directory and hands back the
// stored file name. Replacing an image deletes the previous one.
type FileStore struct {
	dir string
}

func New(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Dir() string {
	return s.dir
}

// Store saves the uploaded file under a random name and removes existing
// when set. A nil file keeps the existing name untouched.
func (s *FileStore) Store(file *multipart.FileHeader, existing string) (string, error) {
	if file == nil || file.Size == 0 {
		return existing, nil
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", ErrInvalidExtension
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := random.String(16) + "_image" + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	if existing != "" {
		s.Remove(existing)
	}
	return name, nil
}

// Remove deletes a stored file, ignoring files that are already gone.
func (s *FileStore) Remove(name string) {
	if name == "" {
		return
	}
	path := filepath.Join(s.dir, filepath.Base(name))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		zap.L().Warn("failed to remove stored file",
			zap.String("file", path), zap.Error(err))
	}
}
