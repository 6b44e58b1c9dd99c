package inventorymsgpack

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
)

// FileStore keeps the whole state as one msgpack snapshot on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) (*inventory.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, inventory.ErrNoState
	}
	if err != nil {
		return nil, &inventory.PersistenceError{Op: "load", Err: err}
	}
	doc, err := Decode(b)
	if err != nil {
		return nil, &inventory.PersistenceError{Op: "load", Err: err}
	}
	return doc, nil
}

// Save writes to a temp file in the target directory, syncs it and renames
// it over the target so a crash never leaves a half-written snapshot.
func (s *FileStore) Save(ctx context.Context, doc *inventory.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := Encode(doc)
	if err != nil {
		return &inventory.PersistenceError{Op: "save", Err: err}
	}
	if err := writeAtomic(s.path, b); err != nil {
		return &inventory.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func Encode(doc *inventory.Document) ([]byte, error) {
	return msgpack.Marshal(NewDocument(doc))
}

func Decode(b []byte) (*inventory.Document, error) {
	var doc Document
	if err := msgpack.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return ToInvDocument(&doc)
}

func writeAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(b); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
