package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Dir is a document Backend that keeps one JSON file per collection in a
// local directory. Each file holds an object mapping document ID to document.
type Dir struct {
	mu   sync.Mutex
	path string
}

// OpenDir returns a Dir backend rooted at path, creating it if needed.
func OpenDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Dir{path: path}, nil
}

func (d *Dir) Name() string { return "jsonfile" }

func (d *Dir) file(collection string) string {
	return filepath.Join(d.path, collection+".json")
}

func (d *Dir) read(collection string) (map[string]json.RawMessage, error) {
	b, err := os.ReadFile(d.file(collection))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	docs := map[string]json.RawMessage{}
	if len(b) == 0 {
		return docs, nil
	}
	if err := json.Unmarshal(b, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", d.file(collection), err)
	}
	return docs, nil
}

func (d *Dir) Get(_ context.Context, collection, id string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	docs, err := d.read(collection)
	if err != nil {
		return nil, err
	}
	data, ok := docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (d *Dir) List(_ context.Context, collection string) ([]Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	docs, err := d.read(collection)
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(docs))
	for id, data := range docs {
		out = append(out, Document{ID: id, Data: data})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Put rewrites the collection file through a temp file and rename.
func (d *Dir) Put(_ context.Context, collection string, docs ...Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing, err := d.read(collection)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if !json.Valid(doc.Data) {
			return fmt.Errorf("document %s/%s is not valid JSON", collection, doc.ID)
		}
		existing[doc.ID] = json.RawMessage(doc.Data)
	}

	b, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(d.path, collection+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), d.file(collection))
}
