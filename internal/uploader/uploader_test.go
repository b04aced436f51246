package uploader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/azshare-go/internal/vault"
	"github.com/tonimelisma/azshare-go/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestUploader(docs *testutil.FakeDocs, secrets vault.Store, s *testutil.FakeShare) *Uploader {
	return New(docs, secrets, s.Connect, discardLogger())
}

func TestRun_ManualTokenToShareRoot(t *testing.T) {
	docs := testutil.NewFakeDocs()
	docs.AddDoc(42, []byte("pdf bytes"))

	s := testutil.NewFakeShare()
	u := newTestUploader(docs, nil, s)

	outcome := u.Run(context.Background(), Request{
		AccountURL:  "https://acct.file.core.windows.net",
		ShareName:   "docs",
		FileName:    "report.pdf",
		DocumentID:  42,
		ManualToken: "sv=...&sig=abc",
	})

	require.True(t, outcome.IsSuccess)
	assert.Empty(t, outcome.ErrorMessage)

	assert.Equal(t, "https://acct.file.core.windows.net/docs?sv=...&sig=abc", s.Endpoint)

	file := s.File("report.pdf")
	assert.True(t, file.Present)
	assert.Equal(t, int64(9), file.AllocatedSize)
	assert.Equal(t, []byte("pdf bytes"), file.Content)
	assert.Equal(t, 1, docs.Docs[42].Closed, "source stream released exactly once")
}

func TestRun_VaultFieldMissing(t *testing.T) {
	docs := testutil.NewFakeDocs()
	docs.AddDoc(42, []byte("x"))

	s := testutil.NewFakeShare()
	u := newTestUploader(docs, vault.Memory{"azure-creds": {"other": "y"}}, s)

	outcome := u.Run(context.Background(), Request{
		AccountURL: "https://acct.file.core.windows.net",
		ShareName:  "docs",
		FileName:   "report.pdf",
		DocumentID: 42,
		VaultKey:   "azure-creds",
		VaultField: "sasToken",
	})

	require.False(t, outcome.IsSuccess)
	assert.Equal(t, "ConfigurationError: No SAS Token provided via SCS or Manual Input.", outcome.ErrorMessage)
	assert.Empty(t, s.Calls, "no remote calls before credential resolution succeeds")
}

func TestRun_VaultToken(t *testing.T) {
	docs := testutil.NewFakeDocs()
	docs.AddDoc(7, []byte("content"))

	s := testutil.NewFakeShare()
	u := newTestUploader(docs, vault.Memory{"azure-creds": {"sasToken": "sv=v&sig=vault"}}, s)

	outcome := u.Run(context.Background(), Request{
		AccountURL: "https://acct.file.core.windows.net",
		ShareName:  "docs",
		FileName:   "notes.txt",
		DocumentID: 7,
		VaultKey:   "azure-creds",
		VaultField: "sasToken",
	})

	require.True(t, outcome.IsSuccess)
	assert.True(t, strings.HasSuffix(s.Endpoint, "?sv=v&sig=vault"))
}

func TestRun_UploadIntoCreatedDirectories(t *testing.T) {
	docs := testutil.NewFakeDocs()
	docs.AddDoc(42, []byte("q3 report"))

	s := testutil.NewFakeShare()
	u := newTestUploader(docs, nil, s)

	outcome := u.Run(context.Background(), Request{
		AccountURL:    "https://acct.file.core.windows.net",
		ShareName:     "docs",
		DirectoryPath: "reports/2024",
		FileName:      "report.pdf",
		DocumentID:    42,
		ManualToken:   "sv=1",
	})

	require.True(t, outcome.IsSuccess)

	// Both directories are created in order before any file operation.
	assert.Equal(t, []string{
		"exists reports",
		"create reports",
		"exists reports/2024",
		"create reports/2024",
	}, s.Calls[:4])

	assert.Equal(t, []byte("q3 report"), s.File("reports/2024/report.pdf").Content)
}

func TestRun_ExistingTargetDeletedFirst(t *testing.T) {
	docs := testutil.NewFakeDocs()
	docs.AddDoc(42, []byte("new content"))

	s := testutil.NewFakeShare()
	stale := s.File("report.pdf")
	stale.Present = true
	stale.Content = []byte("old content")

	u := newTestUploader(docs, nil, s)

	outcome := u.Run(context.Background(), Request{
		AccountURL:  "https://acct.file.core.windows.net",
		ShareName:   "docs",
		FileName:    "report.pdf",
		DocumentID:  42,
		ManualToken: "sv=1",
	})

	require.True(t, outcome.IsSuccess)
	assert.Equal(t, []byte("new content"), stale.Content)

	deleteIdx := indexOf(s.Calls, "delete report.pdf")
	allocateIdx := indexOf(s.Calls, "allocate report.pdf 11")
	require.GreaterOrEqual(t, deleteIdx, 0)
	require.GreaterOrEqual(t, allocateIdx, 0)
	assert.Less(t, deleteIdx, allocateIdx, "delete must precede allocation")
}

func TestRun_RepeatedUploadConverges(t *testing.T) {
	docs := testutil.NewFakeDocs()
	docs.AddDoc(1, []byte("first"))
	docs.AddDoc(2, []byte("second upload wins"))

	s := testutil.NewFakeShare()
	u := newTestUploader(docs, nil, s)

	req := Request{
		AccountURL:  "https://acct.file.core.windows.net",
		ShareName:   "docs",
		FileName:    "report.pdf",
		ManualToken: "sv=1",
	}

	req.DocumentID = 1
	require.True(t, u.Run(context.Background(), req).IsSuccess)

	req.DocumentID = 2
	require.True(t, u.Run(context.Background(), req).IsSuccess)

	file := s.File("report.pdf")
	assert.True(t, file.Present)
	assert.Equal(t, []byte("second upload wins"), file.Content)
}

func TestRun_SourceReadFailureMidStream(t *testing.T) {
	docs := testutil.NewFakeDocs()
	doc := &testutil.FakeDoc{
		Size: 5 * ChunkSize,
		Reader: io.MultiReader(
			bytes.NewReader(make([]byte, 2*ChunkSize)),
			errReader{errors.New("repository stream interrupted")},
		),
	}
	docs.Docs[42] = doc

	s := testutil.NewFakeShare()
	u := newTestUploader(docs, nil, s)

	outcome := u.Run(context.Background(), Request{
		AccountURL:  "https://acct.file.core.windows.net",
		ShareName:   "docs",
		FileName:    "big.bin",
		DocumentID:  42,
		ManualToken: "sv=1",
	})

	require.False(t, outcome.IsSuccess)
	assert.True(t, strings.HasPrefix(outcome.ErrorMessage, "SourceReadError: "), outcome.ErrorMessage)

	// The remote file stays allocated but incompletely written; no
	// cleanup is attempted. The source stream is still released.
	file := s.File("big.bin")
	assert.True(t, file.Present)
	assert.Equal(t, int64(5*ChunkSize), file.AllocatedSize)
	assert.Len(t, file.Content, 2*ChunkSize)
	assert.Equal(t, 1, doc.Closed)
}

func TestRun_MissingDocumentID(t *testing.T) {
	s := testutil.NewFakeShare()
	u := newTestUploader(testutil.NewFakeDocs(), nil, s)

	outcome := u.Run(context.Background(), Request{
		AccountURL:  "https://acct.file.core.windows.net",
		ShareName:   "docs",
		FileName:    "report.pdf",
		ManualToken: "sv=1",
	})

	require.False(t, outcome.IsSuccess)
	assert.Equal(t, "ConfigurationError: document ID is missing", outcome.ErrorMessage)
	assert.Empty(t, s.Calls)
}

func TestRun_UnknownDocument(t *testing.T) {
	s := testutil.NewFakeShare()
	u := newTestUploader(testutil.NewFakeDocs(), nil, s)

	outcome := u.Run(context.Background(), Request{
		AccountURL:  "https://acct.file.core.windows.net",
		ShareName:   "docs",
		FileName:    "report.pdf",
		DocumentID:  404,
		ManualToken: "sv=1",
	})

	require.False(t, outcome.IsSuccess)
	assert.True(t, strings.HasPrefix(outcome.ErrorMessage, "SourceReadError: "), outcome.ErrorMessage)
}

func TestRun_SourceCloseFailureDoesNotChangeOutcome(t *testing.T) {
	docs := testutil.NewFakeDocs()
	doc := docs.AddDoc(42, []byte("fine"))
	doc.CloseErr = errors.New("close failed")

	s := testutil.NewFakeShare()
	u := newTestUploader(docs, nil, s)

	outcome := u.Run(context.Background(), Request{
		AccountURL:  "https://acct.file.core.windows.net",
		ShareName:   "docs",
		FileName:    "report.pdf",
		DocumentID:  42,
		ManualToken: "sv=1",
	})

	require.True(t, outcome.IsSuccess)
	assert.Empty(t, outcome.ErrorMessage)
	assert.Equal(t, 1, doc.Closed)
}

func TestRun_RemoteDeleteFailure(t *testing.T) {
	docs := testutil.NewFakeDocs()
	docs.AddDoc(42, []byte("content"))

	s := testutil.NewFakeShare()
	target := s.File("report.pdf")
	target.Present = true
	target.DeleteErr = errors.New("locked by another client")

	u := newTestUploader(docs, nil, s)

	outcome := u.Run(context.Background(), Request{
		AccountURL:  "https://acct.file.core.windows.net",
		ShareName:   "docs",
		FileName:    "report.pdf",
		DocumentID:  42,
		ManualToken: "sv=1",
	})

	require.False(t, outcome.IsSuccess)
	assert.True(t, strings.HasPrefix(outcome.ErrorMessage, "RemoteIOError: "), outcome.ErrorMessage)
}

func indexOf(haystack []string, needle string) int {
	for i, s := range haystack {
		if s == needle {
			return i
		}
	}

	return -1
}
