// Package testutil provides in-memory fakes for the remote share and
// the document repository, shared across package tests. The fake
// share records every remote call so tests can assert on walk order
// and transfer behavior.
package testutil

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/tonimelisma/azshare-go/internal/share"
)

// FakeShare is an in-memory share.Directory tree with call recording
// and per-node error injection.
type FakeShare struct {
	Root     *FakeDir
	Calls    []string // ordered remote calls, e.g. "create reports/2024"
	Endpoint string   // last endpoint passed to Connect
}

// NewFakeShare returns a share whose root directory exists.
func NewFakeShare() *FakeShare {
	s := &FakeShare{}
	s.Root = &FakeDir{share: s, Present: true}

	return s
}

// Connect satisfies share.Connector, recording the endpoint.
func (s *FakeShare) Connect(endpoint string) (share.Directory, error) {
	s.Endpoint = endpoint
	return s.Root, nil
}

func (s *FakeShare) record(op, p string, args ...any) {
	entry := op + " " + p
	if len(args) > 0 {
		entry += fmt.Sprint(" ", args[0])
	}

	s.Calls = append(s.Calls, entry)
}

// Dir returns the directory node at slash-separated p, creating
// handle nodes as needed (without marking them present). Useful for
// pre-seeding state or injecting errors before the walk runs.
func (s *FakeShare) Dir(p string) *FakeDir {
	dir := s.Root
	if p == "" {
		return dir
	}

	for _, name := range splitPath(p) {
		dir = dir.child(name)
	}

	return dir
}

// File returns the file node at slash-separated p.
func (s *FakeShare) File(p string) *FakeFile {
	parent, name := path.Split(p)
	return s.Dir(path.Clean("/"+parent)[1:]).fileNode(name)
}

func splitPath(p string) []string {
	var parts []string

	for _, part := range strings.Split(p, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}

	return parts
}

// FakeDir is one directory node.
type FakeDir struct {
	share    *FakeShare
	path     string
	Present  bool
	children map[string]*FakeDir
	files    map[string]*FakeFile

	ExistsErr error
	CreateErr error
}

func (d *FakeDir) child(name string) *FakeDir {
	if d.children == nil {
		d.children = make(map[string]*FakeDir)
	}

	node, ok := d.children[name]
	if !ok {
		node = &FakeDir{share: d.share, path: joinPath(d.path, name)}
		d.children[name] = node
	}

	return node
}

func (d *FakeDir) fileNode(name string) *FakeFile {
	if d.files == nil {
		d.files = make(map[string]*FakeFile)
	}

	node, ok := d.files[name]
	if !ok {
		node = &FakeFile{share: d.share, path: joinPath(d.path, name)}
		d.files[name] = node
	}

	return node
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}

	return parent + "/" + name
}

func (d *FakeDir) Exists(context.Context) (bool, error) {
	d.share.record("exists", d.path)

	if d.ExistsErr != nil {
		return false, d.ExistsErr
	}

	return d.Present, nil
}

func (d *FakeDir) Create(context.Context) error {
	d.share.record("create", d.path)

	if d.CreateErr != nil {
		return d.CreateErr
	}

	d.Present = true

	return nil
}

func (d *FakeDir) Subdirectory(name string) share.Directory {
	return d.child(name)
}

func (d *FakeDir) File(name string) share.File {
	return d.fileNode(name)
}

// FakeFile is one file node. Content accumulates through the write
// stream; WriteCalls counts individual Write invocations.
type FakeFile struct {
	share *FakeShare
	path  string

	Present       bool
	Content       []byte
	AllocatedSize int64
	WriteCalls    int
	StreamClosed  int

	ExistsErr error
	DeleteErr error
	CreateErr error
	OpenErr   error
	CloseErr  error

	// FailWriteAt fails the Nth Write call (1-based). Zero disables.
	FailWriteAt int
}

func (f *FakeFile) Exists(context.Context) (bool, error) {
	f.share.record("exists", f.path)

	if f.ExistsErr != nil {
		return false, f.ExistsErr
	}

	return f.Present, nil
}

func (f *FakeFile) Delete(context.Context) error {
	f.share.record("delete", f.path)

	if f.DeleteErr != nil {
		return f.DeleteErr
	}

	f.Present = false
	f.Content = nil
	f.AllocatedSize = 0

	return nil
}

func (f *FakeFile) Create(_ context.Context, size int64) error {
	f.share.record("allocate", f.path, size)

	if f.CreateErr != nil {
		return f.CreateErr
	}

	f.Present = true
	f.AllocatedSize = size
	f.Content = nil

	return nil
}

func (f *FakeFile) OpenWriteStream(context.Context) (io.WriteCloser, error) {
	f.share.record("open-write", f.path)

	if f.OpenErr != nil {
		return nil, f.OpenErr
	}

	return &fakeWriteStream{file: f}, nil
}

type fakeWriteStream struct {
	file *FakeFile
}

func (w *fakeWriteStream) Write(p []byte) (int, error) {
	w.file.WriteCalls++
	w.file.share.record("write", w.file.path, len(p))

	if w.file.FailWriteAt > 0 && w.file.WriteCalls >= w.file.FailWriteAt {
		return 0, fmt.Errorf("injected write failure at call %d", w.file.WriteCalls)
	}

	w.file.Content = append(w.file.Content, p...)

	return len(p), nil
}

func (w *fakeWriteStream) Close() error {
	w.file.StreamClosed++
	w.file.share.record("close-write", w.file.path)

	return w.file.CloseErr
}
