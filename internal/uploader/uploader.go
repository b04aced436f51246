// Package uploader implements the document upload pipeline: credential
// resolution through an ordered fallback chain, remote directory
// walking, idempotent overwrite, size allocation, and fixed-size
// chunked streaming. One request is processed start to finish on the
// calling goroutine; Run is the single failure boundary and always
// produces a definite outcome for the invoking workflow.
package uploader

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tonimelisma/azshare-go/internal/docrepo"
	"github.com/tonimelisma/azshare-go/internal/share"
	"github.com/tonimelisma/azshare-go/internal/vault"
)

// Request is the immutable input bundle for one upload. Exactly one
// effective access token must be resolvable from ManualToken or the
// (VaultKey, VaultField) pair, or the request is invalid.
type Request struct {
	AccountURL    string
	ShareName     string
	DirectoryPath string // optional; either separator style accepted
	FileName      string
	DocumentID    int64
	ManualToken   string // optional; wins over the vault when set
	VaultKey      string // optional; used with VaultField
	VaultField    string // optional; used with VaultKey
}

// Outcome is the workflow-facing result. ErrorMessage is a short
// "<kind>: <detail>" string, present exactly when IsSuccess is false.
type Outcome struct {
	IsSuccess    bool
	ErrorMessage string
}

// DocumentSource yields a document's current version metadata and a
// readable byte stream. Satisfied by *docrepo.Repository.
type DocumentSource interface {
	ResolveCurrentVersion(ctx context.Context, id int64) (*docrepo.Version, error)
	OpenReadStream(ctx context.Context, id int64) (io.ReadCloser, error)
}

// Uploader holds the pipeline's collaborators. One Uploader serves any
// number of requests; each request owns its own source stream,
// directory cursor, and file handle, so concurrent uploads of
// different requests need no coordination. Concurrent uploads to the
// same target path are not coordinated; callers serialize those.
type Uploader struct {
	docs    DocumentSource
	secrets vault.Store
	connect share.Connector
	logger  *slog.Logger
}

// New creates an Uploader. secrets may be nil when only manual tokens
// are used.
func New(docs DocumentSource, secrets vault.Store, connect share.Connector, logger *slog.Logger) *Uploader {
	return &Uploader{
		docs:    docs,
		secrets: secrets,
		connect: connect,
		logger:  logger,
	}
}

// Run executes one upload request start to finish and reports the
// outcome. No failure escapes as an error: the invoker always receives
// a definite (IsSuccess, ErrorMessage) pair, suitable for a workflow
// log. Run blocks until the transfer completes or fails; there is no
// internal timeout, and cancellation arrives through ctx.
func (u *Uploader) Run(ctx context.Context, req Request) Outcome {
	logger := u.logger.With(slog.String("run_id", uuid.NewString()))

	if err := u.run(ctx, logger, req); err != nil {
		logger.Error("upload failed",
			slog.Int64("document_id", req.DocumentID),
			slog.String("file_name", req.FileName),
			slog.String("error", err.Error()),
		)

		return Outcome{IsSuccess: false, ErrorMessage: formatOutcome(err)}
	}

	return Outcome{IsSuccess: true}
}

// run is the pipeline body. Every returned error carries a Kind by the
// time it reaches Run's boundary.
func (u *Uploader) run(ctx context.Context, logger *slog.Logger, req Request) error {
	if req.DocumentID == 0 {
		return wrap(KindConfiguration, errors.New("document ID is missing"))
	}

	token, err := resolveToken(ctx, []tokenSource{
		manualToken(req.ManualToken),
		vaultToken{store: u.secrets, key: req.VaultKey, field: req.VaultField},
	})
	if err != nil {
		return err
	}

	root, err := u.connect(share.BuildEndpoint(req.AccountURL, req.ShareName, token))
	if err != nil {
		return wrap(KindRemoteIO, err)
	}

	dir, err := walkDirectory(ctx, root, req.DirectoryPath)
	if err != nil {
		return err
	}

	return u.transfer(ctx, logger, dir, req)
}

// formatOutcome renders an error as the workflow-facing message.
// Errors that somehow arrive untagged are reported as remote I/O
// failures, the broadest category.
func formatOutcome(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return err.Error()
	}

	return (&Error{Kind: KindRemoteIO, Err: err}).Error()
}
