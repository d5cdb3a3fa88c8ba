// Package store implements the document store boundary: raw LIFT XML text
// in, raw LIFT XML text out, keyed by entry id. The core engine treats this
// layer as an external collaborator; nothing here interprets the XML beyond
// what Search needs to evaluate filter expressions.
//
// Two SQLite drivers are supported: the default pure Go modernc.org/sqlite,
// and mattn/go-sqlite3 when built with -tags cgo_sqlite.
package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"

	"github.com/openlexica/liftcurator/core/errors"
	"github.com/openlexica/liftcurator/core/lift"
	"github.com/openlexica/liftcurator/core/model"
	"github.com/openlexica/liftcurator/core/query"
	"github.com/openlexica/liftcurator/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	xml        BLOB NOT NULL,
	hash       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// DriverType identifies the underlying SQLite implementation:
// "purego" for modernc.org/sqlite, "cgo" for mattn/go-sqlite3.
func DriverType() string {
	return driverType
}

// Store is a SQLite-backed collection of LIFT documents.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// DocInfo describes one stored document.
type DocInfo struct {
	ID        string `json:"id"`
	Hash      string `json:"hash"`
	UpdatedAt string `json:"updated_at"`
	Size      int64  `json:"size"`
}

// Open opens (or creates) a store at the given path. Use ":memory:" for an
// in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.NewIO("initialize", path, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ContentHash returns the BLAKE3 hash of a document, hex encoded. Stored
// alongside each document for cheap change detection.
func ContentHash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Put upserts one document under the given id.
func (s *Store) Put(ctx context.Context, id string, doc []byte) error {
	if id == "" {
		return errors.NewValidation("id", "must not be empty")
	}
	hash := ContentHash(doc)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, xml, hash, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET xml=excluded.xml, hash=excluded.hash, updated_at=excluded.updated_at`,
		id, doc, hash, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return errors.Wrapf(err, "storing document %s", id)
	}
	logging.StoreEvent("put", id, "bytes", len(doc), "hash", hash)
	return nil
}

// Get returns the raw document stored under id.
func (s *Store) Get(ctx context.Context, id string) ([]byte, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT xml FROM documents WHERE id = ?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("document", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading document %s", id)
	}
	return doc, nil
}

// Delete removes the document stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "deleting document %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting document")
	}
	if n == 0 {
		return errors.NewNotFound("document", id)
	}
	logging.StoreEvent("delete", id)
	return nil
}

// List describes every stored document in id order.
func (s *Store) List(ctx context.Context) ([]DocInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, hash, updated_at, length(xml) FROM documents ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "listing documents")
	}
	defer rows.Close()

	var out []DocInfo
	for rows.Next() {
		var info DocInfo
		if err := rows.Scan(&info.ID, &info.Hash, &info.UpdatedAt, &info.Size); err != nil {
			return nil, errors.Wrap(err, "listing documents")
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// SearchResult pairs a matched entry with the document it came from.
type SearchResult struct {
	DocumentID string       `json:"document_id"`
	Entry      *model.Entry `json:"entry"`
}

// Search parses every stored document and returns the entries matching the
// filter expression. A document that fails to parse is skipped and logged;
// one bad document never aborts a search (fail-soft at the collection
// boundary, matching the parser's own per-entry policy).
func (s *Store) Search(ctx context.Context, q *query.Query) ([]SearchResult, error) {
	infos, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []SearchResult
	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := s.Get(ctx, info.ID)
		if err != nil {
			return nil, err
		}
		result, err := lift.ParseDocument(doc)
		if err != nil {
			logging.Warn("skipping unparseable document", "id", info.ID, "error", err.Error())
			continue
		}
		for _, e := range result.Entries {
			if q.Match(e) {
				out = append(out, SearchResult{DocumentID: info.ID, Entry: e})
			}
		}
	}
	return out, nil
}
