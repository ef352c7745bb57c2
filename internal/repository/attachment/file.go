package attachment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/appbundle/internal/domain/bundle"
	"github.com/oshokin/appbundle/internal/fileutil"
)

// Record lists the files a run handed back to the build host.
type Record struct {
	// RunID identifies the packaging run.
	RunID string `yaml:"run_id"`
	// Bundle is the bundle directory that was produced.
	Bundle string `yaml:"bundle"`
	// UpdatedAt is when the record was last written.
	UpdatedAt time.Time `yaml:"updated_at"`
	// Attachments are listed in the order they were produced.
	Attachments []bundle.Attachment `yaml:"attachments"`
}

// Repository defines persistence operations for attachment records.
type Repository interface {
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, record *Record) error
}

// FileRepository persists the record to a YAML file on disk.
type FileRepository struct {
	// path is the filesystem location of the YAML file.
	path string
	// mu protects concurrent access to the file.
	mu sync.Mutex
}

// ErrNotFound is returned when no record has been written yet.
var ErrNotFound = errors.New("attachment record not found")

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the location of the record file.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the record from disk.
func (r *FileRepository) Load(_ context.Context) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read attachments file: %w", err)
	}

	var record Record
	if err = yaml.Unmarshal(contents, &record); err != nil {
		return nil, fmt.Errorf("decode attachments file: %w", err)
	}

	return &record, nil
}

// Save writes the record to disk, replacing any previous one.
func (r *FileRepository) Save(_ context.Context, record *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode attachments: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(r.path), fileutil.DirMode); err != nil {
		return fmt.Errorf("create attachments directory: %w", err)
	}

	if err = os.WriteFile(r.path, data, fileutil.FileMode); err != nil {
		return fmt.Errorf("write attachments file: %w", err)
	}

	return nil
}
