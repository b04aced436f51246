// Package share provides access to a remote Azure Files share. The
// uploader depends only on the Directory and File interfaces declared
// here; the Azure SDK implementation lives in azure.go so tests can
// substitute an in-memory share.
package share

import (
	"context"
	"io"
)

// Directory is a cursor into the share's directory tree. Subdirectory
// and File return handles without touching the network; existence is
// established separately so callers control when remote calls happen.
type Directory interface {
	// Exists reports whether the directory is present on the share.
	Exists(ctx context.Context) (bool, error)

	// Create creates the directory. The parent must already exist.
	Create(ctx context.Context) error

	// Subdirectory returns a handle to the named child directory.
	Subdirectory(name string) Directory

	// File returns a handle to the named file in this directory.
	File(name string) File
}

// File is a handle to a single file on the share.
type File interface {
	// Exists reports whether the file is present on the share.
	Exists(ctx context.Context) (bool, error)

	// Delete removes the file.
	Delete(ctx context.Context) error

	// Create allocates the file at its final size. The service
	// requires the total size before any range is written.
	Create(ctx context.Context, size int64) error

	// OpenWriteStream returns a writer that appends ordered ranges to
	// the file starting at offset zero. The writer must be closed on
	// every exit path.
	OpenWriteStream(ctx context.Context) (io.WriteCloser, error)
}

// Connector opens the root directory of the share at the given
// endpoint. Satisfied by NewAzureShare in production and by test
// fakes.
type Connector func(endpoint string) (Directory, error)

// BuildEndpoint assembles the share endpoint from its parts. The
// accountURL + "/" + shareName + "?" + token layout is a wire
// contract with existing deployments; do not change it.
func BuildEndpoint(accountURL, shareName, token string) string {
	return accountURL + "/" + shareName + "?" + token
}
