// Package testutil provides in-memory gateway implementations for tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"newsdesk/internal/gateway"
)

// FakeDocuments is an in-memory DocumentGateway. Documents keep insertion
// order per collection and every write resolves server timestamps with the
// fake's clock, so tests see deterministic, inspectable state.
type FakeDocuments struct {
	mu          sync.Mutex
	collections map[string][]gateway.Document
	nextID      int

	// Err, when set, is returned by every operation. Calls is the total
	// number of operations attempted, including failed ones.
	Err   error
	Calls int

	// Now supplies the server-timestamp clock. Defaults to time.Now.
	Now func() time.Time
}

// NewFakeDocuments returns an empty document store.
func NewFakeDocuments() *FakeDocuments {
	return &FakeDocuments{collections: map[string][]gateway.Document{}}
}

func (f *FakeDocuments) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now().UTC()
}

func (f *FakeDocuments) resolve(fields gateway.Fields) gateway.Fields {
	out := gateway.Fields{}
	for k, v := range fields {
		if gateway.IsServerTimestamp(v) {
			out[k] = f.now()
			continue
		}
		out[k] = v
	}
	return out
}

func (f *FakeDocuments) begin() error {
	f.Calls++
	return f.Err
}

// Seed inserts a document directly, bypassing error injection.
func (f *FakeDocuments) Seed(collection, id string, fields gateway.Fields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections[collection] = append(f.collections[collection], gateway.Document{ID: id, Fields: f.resolve(fields)})
}

// Doc returns a copy of the stored document, or nil if absent.
func (f *FakeDocuments) Doc(collection, id string) *gateway.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.collections[collection] {
		if d.ID == id {
			cp := gateway.Document{ID: d.ID, Fields: gateway.Fields{}}
			for k, v := range d.Fields {
				cp.Fields[k] = v
			}
			return &cp
		}
	}
	return nil
}

// Count returns how many documents the collection holds.
func (f *FakeDocuments) Count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.collections[collection])
}

func (f *FakeDocuments) Create(_ context.Context, collection string, fields gateway.Fields) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return "", err
	}
	f.nextID++
	id := fmt.Sprintf("doc-%d", f.nextID)
	f.collections[collection] = append(f.collections[collection], gateway.Document{ID: id, Fields: f.resolve(fields)})
	return id, nil
}

func (f *FakeDocuments) Set(_ context.Context, collection, id string, fields gateway.Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	docs := f.collections[collection]
	for i, d := range docs {
		if d.ID == id {
			docs[i].Fields = f.resolve(fields)
			return nil
		}
	}
	f.collections[collection] = append(docs, gateway.Document{ID: id, Fields: f.resolve(fields)})
	return nil
}

func (f *FakeDocuments) Get(_ context.Context, collection, id string) (*gateway.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	for _, d := range f.collections[collection] {
		if d.ID == id {
			cp := d
			return &cp, nil
		}
	}
	return nil, gateway.ErrNotFound
}

func (f *FakeDocuments) List(_ context.Context, collection string) ([]gateway.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	return append([]gateway.Document(nil), f.collections[collection]...), nil
}

func (f *FakeDocuments) Update(_ context.Context, collection, id string, fields gateway.Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	docs := f.collections[collection]
	for i, d := range docs {
		if d.ID == id {
			for k, v := range f.resolve(fields) {
				docs[i].Fields[k] = v
			}
			return nil
		}
	}
	return gateway.ErrNotFound
}

func (f *FakeDocuments) Delete(_ context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	docs := f.collections[collection]
	for i, d := range docs {
		if d.ID == id {
			f.collections[collection] = append(docs[:i], docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *FakeDocuments) Query(_ context.Context, collection, field string, value any) ([]gateway.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	var out []gateway.Document
	for _, d := range f.collections[collection] {
		if d.Fields[field] == value {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *FakeDocuments) AddToSet(_ context.Context, collection, id, field string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	docs := f.collections[collection]
	for i, d := range docs {
		if d.ID != id {
			continue
		}
		current, _ := d.Fields[field].([]string)
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("fake AddToSet supports string values, got %T", value)
		}
		for _, existing := range current {
			if existing == str {
				return nil
			}
		}
		docs[i].Fields[field] = append(current, str)
		return nil
	}
	return gateway.ErrNotFound
}

func (f *FakeDocuments) RemoveFromSet(_ context.Context, collection, id, field string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	docs := f.collections[collection]
	for i, d := range docs {
		if d.ID != id {
			continue
		}
		current, _ := d.Fields[field].([]string)
		kept := current[:0:0]
		for _, existing := range current {
			if existing != value {
				kept = append(kept, existing)
			}
		}
		docs[i].Fields[field] = kept
		return nil
	}
	return gateway.ErrNotFound
}

// FakeFiles is an in-memory FileGateway that records uploads and returns
// deterministic URLs.
type FakeFiles struct {
	mu sync.Mutex

	// Err, when set, fails every upload.
	Err error
	// Uploads holds the path of each successful upload in order.
	Uploads []string
}

// NewFakeFiles returns an empty file store.
func NewFakeFiles() *FakeFiles {
	return &FakeFiles{}
}

func (f *FakeFiles) Upload(_ context.Context, path string, r io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.Uploads = append(f.Uploads, path)
	return "https://files.example/" + path, nil
}
