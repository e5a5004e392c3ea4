package store

import (
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/qoiview/catalog"
)

// Dir is a Store backed by a single flat directory.
type Dir struct {
	root   string
	logger *log.Logger
}

// NewDir returns a Dir rooted at root.
func NewDir(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("store: not a directory")
	}
	return &Dir{root: root, logger: log.New(io.Discard, "", 0)}, nil
}

// SetLogger sets the logger used to report skipped files.
func (d *Dir) SetLogger(logger *log.Logger) {
	d.logger = logger
}

// Root returns the directory the store reads from.
func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) names() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		// Ignore anything that isn't a normal file
		if !e.Type().IsRegular() || !isImage(e.Name()) {
			continue
		}
		// A longer name can't be catalogued intact so it could never be opened
		if len(e.Name()) > catalog.MaxNameLen {
			d.logger.Printf("Skipping \"%s\": name longer than %d bytes\n", e.Name(), catalog.MaxNameLen)
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Entries returns the .qoi files in the directory in name order.
func (d *Dir) Entries() (catalog.Iterator, error) {
	names, err := d.names()
	if err != nil {
		return nil, err
	}
	return catalog.NewSliceIterator(names), nil
}

// Open opens the named file within the directory.
func (d *Dir) Open(name string) (io.ReadSeekCloser, error) {
	f, err := os.Open(filepath.Join(d.root, filepath.Base(name)))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Close is a no-op.
func (d *Dir) Close() error {
	return nil
}
