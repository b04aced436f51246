// Package docrepo implements the local document repository: a SQLite
// catalog of document metadata with content stored as flat files under
// a blob directory. The uploader consumes documents through
// ResolveCurrentVersion and OpenReadStream; the CLI manages them
// through Add and List.
package docrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	// Pure-Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no document exists with the given ID.
var ErrNotFound = errors.New("docrepo: document not found")

const (
	sqlInsertDocument = `INSERT INTO documents (name, size, version, content_path, created_at)
		VALUES (?, ?, 1, ?, ?)`

	sqlSelectDocument = `SELECT name, size, version, content_path, created_at
		FROM documents WHERE id = ?`

	sqlListDocuments = `SELECT id, name, size, version, created_at
		FROM documents ORDER BY id`
)

// Document is one catalog row.
type Document struct {
	ID        int64
	Name      string
	Size      int64
	Version   int64
	CreatedAt time.Time
}

// Version describes the current stored version of a document. Size is
// zero when the catalog has no size metadata, which is legal: the
// uploader allocates a zero-length file and streams whatever the
// content holds.
type Version struct {
	Size int64
}

// Repository is the sole owner of the catalog database and blob
// directory. One connection writes at a time.
type Repository struct {
	db      *sql.DB
	blobDir string
	logger  *slog.Logger
	nowFunc func() time.Time // injectable for deterministic tests
}

// Open opens (or creates) the repository at dbPath with content under
// blobDir, running any pending schema migrations.
func Open(dbPath, blobDir string, logger *slog.Logger) (*Repository, error) {
	if err := os.MkdirAll(blobDir, 0o700); err != nil {
		return nil, fmt.Errorf("docrepo: creating blob dir %s: %w", blobDir, err)
	}

	// DSN parameters ensure pragmas apply to every connection from the pool.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)"+
			"&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)",
		dbPath,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("docrepo: opening database %s: %w", dbPath, err)
	}

	// Sole-writer pattern: only one connection writes at a time.
	db.SetMaxOpenConns(1)

	if err := runMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("document repository opened",
		slog.String("db_path", dbPath),
		slog.String("blob_dir", blobDir),
	)

	return &Repository{
		db:      db,
		blobDir: blobDir,
		logger:  logger,
		nowFunc: time.Now,
	}, nil
}

// Close releases the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Add copies src into the blob directory and catalogs it under name,
// returning the stored document with its assigned ID.
func (r *Repository) Add(ctx context.Context, name string, src io.Reader) (*Document, error) {
	contentPath := filepath.Join(r.blobDir, uuid.NewString())

	f, err := os.OpenFile(contentPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("docrepo: creating content file: %w", err)
	}

	size, err := io.Copy(f, src)
	if err != nil {
		f.Close()
		os.Remove(contentPath)
		return nil, fmt.Errorf("docrepo: writing content for %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(contentPath)
		return nil, fmt.Errorf("docrepo: closing content file for %s: %w", name, err)
	}

	createdAt := r.nowFunc().UTC()

	res, err := r.db.ExecContext(ctx, sqlInsertDocument, name, size, contentPath, createdAt.Format(time.RFC3339))
	if err != nil {
		os.Remove(contentPath)
		return nil, fmt.Errorf("docrepo: cataloging %s: %w", name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("docrepo: reading assigned ID for %s: %w", name, err)
	}

	r.logger.Info("document added",
		slog.Int64("document_id", id),
		slog.String("name", name),
		slog.Int64("size", size),
	)

	return &Document{ID: id, Name: name, Size: size, Version: 1, CreatedAt: createdAt}, nil
}

// Get returns the catalog row for a document.
func (r *Repository) Get(ctx context.Context, id int64) (*Document, error) {
	doc, _, err := r.lookup(ctx, id)
	return doc, err
}

// ResolveCurrentVersion returns the current version metadata for a
// document. A NULL catalog size resolves to zero, not an error.
func (r *Repository) ResolveCurrentVersion(ctx context.Context, id int64) (*Version, error) {
	doc, _, err := r.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Version{Size: doc.Size}, nil
}

// OpenReadStream opens the document's content for sequential reading.
// The caller owns the returned stream and must close it.
func (r *Repository) OpenReadStream(ctx context.Context, id int64) (io.ReadCloser, error) {
	_, contentPath, err := r.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(contentPath)
	if err != nil {
		return nil, fmt.Errorf("docrepo: opening content for document %d: %w", id, err)
	}

	return f, nil
}

// List returns all cataloged documents in ID order.
func (r *Repository) List(ctx context.Context) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx, sqlListDocuments)
	if err != nil {
		return nil, fmt.Errorf("docrepo: listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document

	for rows.Next() {
		var (
			doc       Document
			size      sql.NullInt64
			createdAt string
		)

		if err := rows.Scan(&doc.ID, &doc.Name, &size, &doc.Version, &createdAt); err != nil {
			return nil, fmt.Errorf("docrepo: scanning document row: %w", err)
		}

		doc.Size = size.Int64
		doc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // zero time for legacy rows

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("docrepo: iterating document rows: %w", err)
	}

	return docs, nil
}

// lookup fetches one catalog row plus its content path.
func (r *Repository) lookup(ctx context.Context, id int64) (*Document, string, error) {
	var (
		doc         Document
		size        sql.NullInt64
		contentPath string
		createdAt   string
	)

	err := r.db.QueryRowContext(ctx, sqlSelectDocument, id).
		Scan(&doc.Name, &size, &doc.Version, &contentPath, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	if err != nil {
		return nil, "", fmt.Errorf("docrepo: looking up document %d: %w", id, err)
	}

	doc.ID = id
	doc.Size = size.Int64
	doc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // zero time for legacy rows

	return &doc, contentPath, nil
}
