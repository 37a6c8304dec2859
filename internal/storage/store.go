package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"taskhub/internal/apperr"
	"taskhub/internal/model"
)

// MaxDocuments is the cap on attachments per request and per task.
const MaxDocuments = 3

// MaxFileSize is the per-file upload limit in bytes.
const MaxFileSize = 10 << 20

// DefaultAllowedTypes is the media-type allow-list when none is
// configured. Arbitrary types are never accepted by default.
var DefaultAllowedTypes = map[string]string{
	"application/pdf": ".pdf",
}

// Store writes uploaded files under a dedicated directory using
// generated names, and removes them on replacement or task deletion.
type Store struct {
	dir     string
	allowed map[string]string // media type -> expected extension
}

// NewStore creates the uploads directory if needed. A nil allow-list
// falls back to DefaultAllowedTypes.
func NewStore(dir string, allowed map[string]string) (*Store, error) {
	if allowed == nil {
		allowed = DefaultAllowedTypes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &Store{dir: dir, allowed: allowed}, nil
}

// Dir returns the uploads directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Save validates and persists one uploaded file, returning its
// attachment record. Stored names are generated, so an upload can never
// overwrite another file.
func (s *Store) Save(fh *multipart.FileHeader) (model.Document, error) {
	if fh.Size > MaxFileSize {
		return model.Document{}, apperr.Uploadf("%s exceeds the %d byte limit", fh.Filename, MaxFileSize)
	}

	contentType := fh.Header.Get("Content-Type")
	ext, ok := s.allowed[contentType]
	if !ok {
		return model.Document{}, apperr.Uploadf("file type %q is not allowed", contentType)
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ext) {
		return model.Document{}, apperr.Uploadf("%s does not match its declared type", fh.Filename)
	}

	src, err := fh.Open()
	if err != nil {
		return model.Document{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	id := uuid.NewString()
	stored := id + ext
	path := filepath.Join(s.dir, stored)

	dst, err := os.Create(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(path)
		return model.Document{}, fmt.Errorf("write upload: %w", err)
	}

	return model.Document{
		ID:           id,
		Filename:     stored,
		OriginalName: fh.Filename,
		ContentType:  contentType,
		Path:         path,
		Size:         size,
	}, nil
}

// Remove deletes a stored file by its generated name.
func (s *Store) Remove(filename string) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove %s: %w", filename, err)
	}
	return nil
}

// Open returns the on-disk path for a stored file, refusing anything
// that escapes the uploads directory.
func (s *Store) Open(filename string) (string, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", apperr.NotFoundf("document %s", filename)
	}
	return path, nil
}

func (s *Store) resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", apperr.Validationf("invalid filename %q", filename)
	}
	return filepath.Join(s.dir, filename), nil
}
