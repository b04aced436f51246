package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tonimelisma/azshare-go/internal/share"
)

// ChunkSize is the fixed transfer chunk (4 MiB). It exists to respect
// the remote service's per-request payload ceiling; the protocol does
// not mandate this particular value.
const ChunkSize = 4 * 1024 * 1024

// transfer writes the source document to the named file under dir.
// An existing target is deleted first so a workflow retry converges to
// exactly one file holding the latest content. The remote file is
// allocated at the cataloged size before the first chunk because the
// service needs the final size up front, there is no zero-length
// trailer to finish with.
func (u *Uploader) transfer(ctx context.Context, logger *slog.Logger, dir share.Directory, req Request) error {
	target := dir.File(req.FileName)

	exists, err := target.Exists(ctx)
	if err != nil {
		return wrap(KindRemoteIO, err)
	}

	if exists {
		logger.Info("target exists, deleting before upload", slog.String("file_name", req.FileName))

		if err := target.Delete(ctx); err != nil {
			return wrap(KindRemoteIO, err)
		}
	}

	version, err := u.docs.ResolveCurrentVersion(ctx, req.DocumentID)
	if err != nil {
		return wrap(KindSourceRead, err)
	}

	src, err := u.docs.OpenReadStream(ctx, req.DocumentID)
	if err != nil {
		return wrap(KindSourceRead, err)
	}

	// The source stream is released exactly once on every exit path.
	// A close failure is recorded for diagnostics but never replaces
	// the primary outcome.
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			releaseErr := wrap(KindResourceRelease, closeErr)
			logger.Error("failed to close document read stream",
				slog.Int64("document_id", req.DocumentID),
				slog.String("error", releaseErr.Error()),
			)
		}
	}()

	if err := target.Create(ctx, version.Size); err != nil {
		return wrap(KindRemoteIO, err)
	}

	written, err := streamChunks(ctx, target, src)
	if err != nil {
		return err
	}

	// The allocated size and streamed byte count can diverge when the
	// cataloged size is stale. Surfaced as a warning only; the
	// transfer still counts as complete.
	if written != version.Size {
		logger.Warn("streamed byte count differs from cataloged size",
			slog.Int64("document_id", req.DocumentID),
			slog.Int64("cataloged_size", version.Size),
			slog.Int64("written", written),
		)
	}

	logger.Info("upload complete",
		slog.Int64("document_id", req.DocumentID),
		slog.String("file_name", req.FileName),
		slog.Int64("size", written),
	)

	return nil
}

// streamChunks copies the source stream to the remote file in
// ChunkSize pieces, in order, and finalizes the write stream on every
// path. For a source of N bytes it issues exactly ceil(N/ChunkSize)
// writes.
func streamChunks(ctx context.Context, target share.File, src io.Reader) (int64, error) {
	out, err := target.OpenWriteStream(ctx)
	if err != nil {
		return 0, wrap(KindRemoteIO, err)
	}

	buf := make([]byte, ChunkSize)

	var written int64
	var streamErr error

	for {
		n, readErr := io.ReadFull(src, buf)

		if n > 0 {
			wn, writeErr := out.Write(buf[:n])
			written += int64(wn)

			if writeErr != nil {
				streamErr = wrap(KindRemoteIO, writeErr)
				break
			}
		}

		if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
			break
		}

		if readErr != nil {
			streamErr = wrap(KindSourceRead, fmt.Errorf("uploader: reading document stream: %w", readErr))
			break
		}
	}

	// Finalize regardless of how the loop ended. A close failure on an
	// otherwise clean stream still fails the transfer.
	if closeErr := out.Close(); closeErr != nil && streamErr == nil {
		streamErr = wrap(KindRemoteIO, fmt.Errorf("uploader: finalizing remote stream: %w", closeErr))
	}

	return written, streamErr
}
