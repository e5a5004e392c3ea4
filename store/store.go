/*
Package store provides the read-only image stores the viewer browses: a flat
directory of .qoi files on disk, or a pack file built from one.
*/
package store

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/qoiview/catalog"
	"github.com/bodgit/qoiview/qoi"
)

// Ext is the file extension of images picked up from a directory
const Ext = ".qoi"

// Store is a read-only collection of named compressed images.
type Store interface {
	qoi.Source

	// Entries returns an iterator over every image name in the store
	Entries() (catalog.Iterator, error)

	Close() error
}

// Open returns a Dir if path is a directory and a Pack otherwise.
func Open(path string) (Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return NewDir(path)
	}
	return OpenPack(path)
}

func isImage(name string) bool {
	// Ignore any hidden files, otherwise we end up fighting with things like Spotlight, etc.
	if name == "" || name[0] == '.' {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), Ext)
}
