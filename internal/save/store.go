package save

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ErrNotFound is returned by Load when no save exists yet.
var ErrNotFound = errors.New("save not found")

// FileStore keeps a single save document at a fixed path.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a FileStore writing to path.
//
// Precondition: path must be non-empty.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the file the store writes to.
func (s *FileStore) Path() string { return s.path }

// Save writes doc atomically: the document is written to a temporary file in
// the same directory and renamed over the previous save.
//
// Postcondition: On success the file at Path decodes to doc; on failure the
// previous save, if any, is untouched.
func (s *FileStore) Save(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := Encode(doc)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating save directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".save-*")
	if err != nil {
		return fmt.Errorf("creating temporary save: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("writing save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing save: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing save: %w", err)
	}
	s.logger.Debug("game saved", zap.String("id", doc.ID), zap.String("path", s.path))
	return nil
}

// Load reads and decodes the save.
//
// Postcondition: Returns ErrNotFound when the file does not exist.
func (s *FileStore) Load(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading save %s: %w", s.path, err)
	}
	doc, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	s.logger.Info("save loaded",
		zap.String("id", doc.ID),
		zap.Time("last_played", doc.Metadata.LastPlayed),
	)
	return doc, nil
}
