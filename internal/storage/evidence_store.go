package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

// EvidenceStore writes uploaded complaint images to local disk under
// randomized, collision-resistant filenames. Complaints reference evidence by
// filename only.
type EvidenceStore struct {
	dir string
}

// NewEvidenceStore creates the store and ensures the upload directory exists.
func NewEvidenceStore(dir string) (*EvidenceStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &EvidenceStore{dir: dir}, nil
}

// Allowed reports whether the filename carries an accepted image extension.
func Allowed(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := allowedExtensions[ext]
	return ok
}

// Save persists one uploaded file and returns its stored filename. Files with
// disallowed extensions are skipped by returning ok=false, mirroring the
// submission flow which silently ignores non-image parts.
func (s *EvidenceStore) Save(file *multipart.FileHeader) (filename string, ok bool, err error) {
	if file == nil || !Allowed(file.Filename) {
		return "", false, nil
	}

	filename = uuid.NewString() + "_" + sanitizeFilename(file.Filename)

	src, err := file.Open()
	if err != nil {
		return "", false, err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", false, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", false, err
	}
	return filename, true, nil
}

// Dir returns the root of the store, used for static serving.
func (s *EvidenceStore) Dir() string {
	return s.dir
}

// sanitizeFilename strips path separators and whitespace so client-supplied
// names cannot escape the upload directory.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", "..", "_")
	return replacer.Replace(name)
}
