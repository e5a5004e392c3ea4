package store

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/bodgit/qoiview/qoi"
	"golang.org/x/sync/errgroup"
)

type blob struct {
	name  string
	codec Codec
	size  int
	data  []byte
}

func loadBlob(path string, codec Codec) (*blob, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if _, err := qoi.DecodeHeader(b); err != nil {
		return nil, err
	}

	c, data, err := compress(codec, b)
	if err != nil {
		return nil, err
	}

	return &blob{
		name:  filepath.Base(path),
		codec: c,
		size:  len(b),
		data:  data,
	}, nil
}

// BuildPack scans the directory dir and writes every image found into a new
// pack at file, compressing each with codec. Files without a valid header
// are logged and skipped. It returns the number of images written.
func BuildPack(ctx context.Context, dir, file string, codec Codec, workers int, logger *log.Logger) (int, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if workers < 1 {
		workers = 1
	}

	d, err := NewDir(dir)
	if err != nil {
		return 0, err
	}
	d.SetLogger(logger)
	names, err := d.names()
	if err != nil {
		return 0, err
	}

	db, err := createPack(file)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	g, ctx := errgroup.WithContext(ctx)

	in := make(chan string)
	g.Go(func() error {
		defer close(in)
		for _, name := range names {
			select {
			case in <- filepath.Join(d.root, name):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	out := make(chan *blob)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			defer wg.Done()
			for path := range in {
				b, err := loadBlob(path, codec)
				if err != nil {
					logger.Printf("Skipping \"%s\": %v\n", path, err)
					continue
				}
				select {
				case out <- b:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	var n int
	g.Go(func() error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		// Replace any existing contents only if the whole build commits
		if _, err := tx.Exec("DELETE FROM image"); err != nil {
			tx.Rollback()
			return err
		}
		for b := range out {
			if _, err := tx.Exec("INSERT INTO image (name, codec, size, data) VALUES (?, ?, ?, ?)", b.name, b.codec, b.size, b.data); err != nil {
				tx.Rollback()
				return err
			}
			logger.Printf("Packed \"%s\" (%s, %d -> %d bytes)\n", b.name, b.codec, b.size, len(b.data))
			n++
		}
		if err := ctx.Err(); err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit()
	})

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return n, nil
}
