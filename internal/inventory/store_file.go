package inventory

import (
	"context"
	"os"
)

// FileStore keeps the snapshot as an indented JSON document on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Ping(ctx context.Context) error { return nil }

func (s *FileStore) SaveSnapshot(ctx context.Context, ps []Product) error {
	doc, err := encodeDocument(ps)
	if err != nil {
		return err
	}

	f, err := os.Create(s.path)
	if err != nil {
		return ioErr("save", err)
	}
	if _, err := f.Write(doc); err != nil {
		_ = f.Close()
		return ioErr("save", err)
	}
	if err := f.Close(); err != nil {
		return ioErr("save", err)
	}
	return nil
}

func (s *FileStore) LoadSnapshot(ctx context.Context) ([]Product, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, ioErr("load", err)
	}
	defer f.Close()

	return decodeDocument(f)
}
