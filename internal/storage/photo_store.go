package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"shiftops/internal/apperrors"
	"shiftops/internal/utils"
)

// PhotoStore writes completion-evidence photos under the files root and hands
// back the URL path they are served from. Only the URL string ever reaches
// the database.
type PhotoStore struct {
	RootDir string
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

func NewPhotoStore(rootDir string) *PhotoStore {
	return &PhotoStore{RootDir: filepath.Clean(rootDir)}
}

// Dir returns the directory photos are served from.
func (s *PhotoStore) Dir() string {
	return filepath.Join(s.RootDir, "photos")
}

// Save stores the upload under a random name and returns "/photos/<name>".
// The client-supplied filename contributes only its extension.
func (s *PhotoStore) Save(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if !allowedExtensions[ext] {
		return "", apperrors.New(apperrors.InvalidRequest, "unsupported_photo_type",
			"unsupported photo type "+ext)
	}

	name, err := utils.NewFileName()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(s.Dir(), name+ext))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return "/photos/" + name + ext, nil
}
