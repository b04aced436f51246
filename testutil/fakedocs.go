package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/tonimelisma/azshare-go/internal/docrepo"
)

// FakeDocs is an in-memory document source.
type FakeDocs struct {
	Docs map[int64]*FakeDoc
}

// FakeDoc is one document. When Reader is set it is served instead of
// Content, which lets tests inject mid-stream read failures. Closed
// counts how many times the served stream was closed.
type FakeDoc struct {
	Size     int64
	Content  []byte
	Reader   io.Reader
	CloseErr error
	Closed   int
}

// NewFakeDocs creates an empty document source.
func NewFakeDocs() *FakeDocs {
	return &FakeDocs{Docs: make(map[int64]*FakeDoc)}
}

// AddDoc registers content under id with Size matching the content.
func (d *FakeDocs) AddDoc(id int64, content []byte) *FakeDoc {
	doc := &FakeDoc{Size: int64(len(content)), Content: content}
	d.Docs[id] = doc

	return doc
}

func (d *FakeDocs) ResolveCurrentVersion(_ context.Context, id int64) (*docrepo.Version, error) {
	doc, ok := d.Docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", docrepo.ErrNotFound, id)
	}

	return &docrepo.Version{Size: doc.Size}, nil
}

func (d *FakeDocs) OpenReadStream(_ context.Context, id int64) (io.ReadCloser, error) {
	doc, ok := d.Docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", docrepo.ErrNotFound, id)
	}

	r := doc.Reader
	if r == nil {
		r = bytes.NewReader(doc.Content)
	}

	return &trackedStream{Reader: r, doc: doc}, nil
}

type trackedStream struct {
	io.Reader
	doc *FakeDoc
}

func (s *trackedStream) Close() error {
	s.doc.Closed++
	return s.doc.CloseErr
}
