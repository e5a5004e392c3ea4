package store

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/bodgit/qoiview/catalog"
	_ "github.com/mattn/go-sqlite3"
)

const schema = "CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE, codec INTEGER NOT NULL, size INTEGER NOT NULL, data BLOB NOT NULL)"

// Pack is a Store backed by a read-only sqlite database of images.
type Pack struct {
	db *sql.DB
}

// dsn returns a URI filename for file so that characters such as '?' and
// '#' in the path aren't taken as URI syntax.
func dsn(file, mode string) string {
	u := url.URL{Scheme: "file", Opaque: url.PathEscape(file), RawQuery: "mode=" + mode}
	return u.String()
}

// OpenPack opens an existing pack file read-only.
func OpenPack(file string) (*Pack, error) {
	if _, err := os.Stat(file); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn(file, "ro"))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	var n int
	if err := db.QueryRow("SELECT count(*) FROM image").Scan(&n); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: %s is not a pack: %w", file, err)
	}

	return &Pack{
		db: db,
	}, nil
}

func createPack(file string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn(file, "rwc"))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the underlying database.
func (p *Pack) Close() error {
	return p.db.Close()
}

// Len returns the number of images in the pack.
func (p *Pack) Len() (int, error) {
	var n int
	if err := p.db.QueryRow("SELECT count(*) FROM image").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type blobReader struct {
	*bytes.Reader
}

func (blobReader) Close() error {
	return nil
}

// Open returns the decompressed contents of the named image. A missing
// image returns an error satisfying errors.Is(err, os.ErrNotExist).
func (p *Pack) Open(name string) (io.ReadSeekCloser, error) {
	var codec Codec
	var size int
	var data []byte
	switch err := p.db.QueryRow("SELECT codec, size, data FROM image WHERE name = ?", name).Scan(&codec, &size, &data); err {
	case sql.ErrNoRows:
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	case nil:
		b, err := decompress(codec, data, size)
		if err != nil {
			return nil, fmt.Errorf("store: %s: %w", name, err)
		}
		return blobReader{bytes.NewReader(b)}, nil
	default:
		return nil, err
	}
}

type rowIterator struct {
	rows *sql.Rows
}

func (r *rowIterator) Next() (string, error) {
	if !r.rows.Next() {
		err := r.rows.Err()
		r.rows.Close()
		if err != nil {
			return "", err
		}
		return "", io.EOF
	}
	var name string
	if err := r.rows.Scan(&name); err != nil {
		r.rows.Close()
		return "", err
	}
	return name, nil
}

// Entries returns the names of every image in the pack in name order.
func (p *Pack) Entries() (catalog.Iterator, error) {
	rows, err := p.db.Query("SELECT name FROM image ORDER BY name")
	if err != nil {
		return nil, err
	}
	return &rowIterator{rows: rows}, nil
}
