package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage writes uploads to the configured directory on disk. The
// stored reference is the URL path the site serves the image under,
// e.g. "static/images/imagesProperty/fachada.jpg".
type LocalStorage struct {
	dir       string
	urlPrefix string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{
		dir:       dir,
		urlPrefix: strings.TrimPrefix(filepath.ToSlash(dir), "./"),
	}, nil
}

func (s *LocalStorage) Save(filename string, file io.Reader) (string, error) {
	dst, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	_, err = io.Copy(dst, file)
	if err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return s.urlPrefix + "/" + filename, nil
}

// Delete removes the file behind a stored reference. A missing file is
// not an error; the database row is the source of truth.
func (s *LocalStorage) Delete(ref string) error {
	name := path.Base(ref)
	if name == "" || name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}

// Dir exposes the upload directory.
func (s *LocalStorage) Dir() string {
	return s.dir
}
