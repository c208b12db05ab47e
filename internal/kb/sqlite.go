package kb

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadscout/internal/model"
)

// DB is the SQLite-backed document and chunk store. Chunks carry their
// embedding as a little-endian float32 blob.
type DB struct {
	db *sql.DB
}

// OpenDB opens a SQLite database at the given path, configures WAL mode
// and applies the schema.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "kb: open db")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "kb: exec %s", pragma)
		}
	}
	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "kb: migrate")
	}
	return &DB{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS documents (
	id             TEXT PRIMARY KEY,
	filename       TEXT NOT NULL,
	size_bytes     INTEGER NOT NULL,
	uploaded_at    DATETIME NOT NULL,
	chunk_count    INTEGER NOT NULL,
	store_path     TEXT NOT NULL,
	embed_model    TEXT NOT NULL,
	char_count     INTEGER NOT NULL,
	token_count    INTEGER NOT NULL,
	avg_chunk_size REAL NOT NULL,
	summary        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS chunks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	seq         INTEGER NOT NULL,
	content     TEXT NOT NULL,
	embedding   BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id);
`

func (d *DB) Close() error {
	return d.db.Close()
}

// InsertDocument stores a document and all of its chunks in one
// transaction. A failure anywhere leaves nothing behind.
func (d *DB) InsertDocument(ctx context.Context, doc *model.Document, chunks []model.Chunk) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "kb: begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, filename, size_bytes, uploaded_at, chunk_count, store_path, embed_model, char_count, token_count, avg_chunk_size, summary)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.SizeBytes, doc.UploadedAt.UTC(), doc.ChunkCount,
		doc.StorePath, doc.EmbedModel, doc.CharCount, doc.TokenCount, doc.AvgChunkSize, doc.Summary,
	)
	if err != nil {
		return eris.Wrap(err, "kb: insert document")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (document_id, seq, content, embedding) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "kb: prepare chunk insert")
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, doc.ID, chunk.Seq, chunk.Content, serializeVector(chunk.Embedding)); err != nil {
			return eris.Wrapf(err, "kb: insert chunk %d", chunk.Seq)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "kb: commit")
	}
	return nil
}

// DeleteDocument removes a document; its chunks go with it via the
// cascade. Returns the stored file path so the caller can remove the
// original bytes too.
func (d *DB) DeleteDocument(ctx context.Context, id string) (string, error) {
	var storePath string
	err := d.db.QueryRowContext(ctx, `SELECT store_path FROM documents WHERE id = ?`, id).Scan(&storePath)
	if err == sql.ErrNoRows {
		return "", eris.Errorf("kb: document %s not found", id)
	}
	if err != nil {
		return "", eris.Wrap(err, "kb: lookup document")
	}

	if _, err := d.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return "", eris.Wrapf(err, "kb: delete document %s", id)
	}
	return storePath, nil
}

// ListDocuments returns all documents, newest first.
func (d *DB) ListDocuments(ctx context.Context) ([]model.Document, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, filename, size_bytes, uploaded_at, chunk_count, store_path, embed_model, char_count, token_count, avg_chunk_size, summary
		 FROM documents ORDER BY uploaded_at DESC, id`)
	if err != nil {
		return nil, eris.Wrap(err, "kb: list documents")
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var doc model.Document
		var uploadedAt time.Time
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.SizeBytes, &uploadedAt, &doc.ChunkCount,
			&doc.StorePath, &doc.EmbedModel, &doc.CharCount, &doc.TokenCount, &doc.AvgChunkSize, &doc.Summary); err != nil {
			return nil, eris.Wrap(err, "kb: scan document")
		}
		doc.UploadedAt = uploadedAt.UTC()
		docs = append(docs, doc)
	}
	return docs, eris.Wrap(rows.Err(), "kb: iterate documents")
}

// GetDocument returns a single document by id.
func (d *DB) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	var uploadedAt time.Time
	err := d.db.QueryRowContext(ctx,
		`SELECT id, filename, size_bytes, uploaded_at, chunk_count, store_path, embed_model, char_count, token_count, avg_chunk_size, summary
		 FROM documents WHERE id = ?`, id).
		Scan(&doc.ID, &doc.Filename, &doc.SizeBytes, &uploadedAt, &doc.ChunkCount,
			&doc.StorePath, &doc.EmbedModel, &doc.CharCount, &doc.TokenCount, &doc.AvgChunkSize, &doc.Summary)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "kb: get document")
	}
	doc.UploadedAt = uploadedAt.UTC()
	return &doc, nil
}

// storedChunk pairs a chunk with its document metadata for scoring.
type storedChunk struct {
	id         int64
	documentID string
	filename   string
	embedModel string
	content    string
	embedding  []float32
}

// allChunks loads every chunk with its embedding and owning document.
// Row order follows insertion (rowid), which search uses as the
// deterministic tie-break.
func (d *DB) allChunks(ctx context.Context) ([]storedChunk, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT c.id, c.document_id, d.filename, d.embed_model, c.content, c.embedding
		 FROM chunks c JOIN documents d ON d.id = c.document_id
		 ORDER BY c.id`)
	if err != nil {
		return nil, eris.Wrap(err, "kb: query chunks")
	}
	defer rows.Close()

	var chunks []storedChunk
	for rows.Next() {
		var c storedChunk
		var blob []byte
		if err := rows.Scan(&c.id, &c.documentID, &c.filename, &c.embedModel, &c.content, &blob); err != nil {
			return nil, eris.Wrap(err, "kb: scan chunk")
		}
		c.embedding = deserializeVector(blob)
		chunks = append(chunks, c)
	}
	return chunks, eris.Wrap(rows.Err(), "kb: iterate chunks")
}

// CountChunks returns the number of stored chunks for a document, or the
// total when id is empty.
func (d *DB) CountChunks(ctx context.Context, documentID string) (int, error) {
	var n int
	var err error
	if documentID == "" {
		err = d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	} else {
		err = d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE document_id = ?`, documentID).Scan(&n)
	}
	return n, eris.Wrap(err, "kb: count chunks")
}
