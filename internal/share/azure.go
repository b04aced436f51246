package share

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azfile/directory"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azfile/file"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azfile/fileerror"
	azshare "github.com/Azure/azure-sdk-for-go/sdk/storage/azfile/share"
)

// maxRangeSize is the service ceiling for a single Put Range request.
// Writes through the range writer are split so no request exceeds it.
const maxRangeSize = 4 * 1024 * 1024

// NewAzureShare connects to an Azure Files share. Authentication is a
// SAS token carried in the endpoint query string, so no separate
// credential object is needed.
func NewAzureShare(endpoint string) (Directory, error) {
	client, err := azshare.NewClientWithNoCredential(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("share: creating share client: %w", err)
	}

	return &azureDirectory{client: client.NewRootDirectoryClient()}, nil
}

type azureDirectory struct {
	client *directory.Client
}

func (d *azureDirectory) Exists(ctx context.Context) (bool, error) {
	_, err := d.client.GetProperties(ctx, nil)
	if fileerror.HasCode(err, fileerror.ResourceNotFound, fileerror.ParentNotFound, fileerror.ShareNotFound) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("share: checking directory: %w", err)
	}

	return true, nil
}

func (d *azureDirectory) Create(ctx context.Context) error {
	_, err := d.client.Create(ctx, nil)
	if fileerror.HasCode(err, fileerror.ResourceAlreadyExists) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("share: creating directory: %w", err)
	}

	return nil
}

func (d *azureDirectory) Subdirectory(name string) Directory {
	return &azureDirectory{client: d.client.NewSubdirectoryClient(name)}
}

func (d *azureDirectory) File(name string) File {
	return &azureFile{client: d.client.NewFileClient(name)}
}

type azureFile struct {
	client *file.Client
}

func (f *azureFile) Exists(ctx context.Context) (bool, error) {
	_, err := f.client.GetProperties(ctx, nil)
	if fileerror.HasCode(err, fileerror.ResourceNotFound, fileerror.ParentNotFound, fileerror.ShareNotFound) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("share: checking file: %w", err)
	}

	return true, nil
}

func (f *azureFile) Delete(ctx context.Context) error {
	if _, err := f.client.Delete(ctx, nil); err != nil {
		return fmt.Errorf("share: deleting file: %w", err)
	}

	return nil
}

func (f *azureFile) Create(ctx context.Context, size int64) error {
	if _, err := f.client.Create(ctx, size, nil); err != nil {
		return fmt.Errorf("share: allocating file (%d bytes): %w", size, err)
	}

	return nil
}

func (f *azureFile) OpenWriteStream(ctx context.Context) (io.WriteCloser, error) {
	return &rangeWriter{ctx: ctx, client: f.client}, nil
}

// rangeWriter adapts sequential Write calls onto Put Range requests.
// Each Write issues one request per maxRangeSize slice at the current
// offset, preserving byte order and count.
type rangeWriter struct {
	ctx    context.Context
	client *file.Client
	offset int64
}

func (w *rangeWriter) Write(p []byte) (int, error) {
	written := 0

	for len(p) > 0 {
		n := min(len(p), maxRangeSize)

		body := streaming.NopCloser(bytes.NewReader(p[:n]))
		if _, err := w.client.UploadRange(w.ctx, w.offset, body, nil); err != nil {
			return written, fmt.Errorf("share: writing range at offset %d: %w", w.offset, err)
		}

		w.offset += int64(n)
		written += n
		p = p[n:]
	}

	return written, nil
}

// Close finalizes the stream. Ranges are durable as soon as each Put
// Range returns, so there is nothing left to flush.
func (w *rangeWriter) Close() error {
	return nil
}
