// Package kb is the retrieval engine behind lead analysis. Documents are
// chunked, embedded and stored in SQLite; search ranks chunks by cosine
// similarity against the query embedding.
package kb

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/atomicfile"
	"github.com/sells-group/leadscout/internal/embed"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/validate"
)

// minDocumentChars is the smallest extracted text worth indexing.
const minDocumentChars = 50

// Options tunes chunking and retrieval.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

// DefaultOptions returns the standard chunking and retrieval settings.
func DefaultOptions() Options {
	return Options{ChunkSize: 1000, ChunkOverlap: 200, TopK: 3}
}

// Engine ties the chunk store and the embedder together.
type Engine struct {
	db       *DB
	embedder embed.Embedder
	docsDir  string
	opts     Options
}

// NewEngine returns an engine backed by the given store and embedder.
// Original document bytes are kept under docsDir.
func NewEngine(db *DB, embedder embed.Embedder, docsDir string, opts Options) *Engine {
	if opts.ChunkSize <= 0 {
		opts = DefaultOptions()
	}
	return &Engine{db: db, embedder: embedder, docsDir: docsDir, opts: opts}
}

// Ingest indexes a document: extract text, chunk, embed, and store
// everything in one transaction. The original bytes are preserved on
// disk so the document can be re-indexed under a different model later.
func (e *Engine) Ingest(ctx context.Context, filename string, data []byte) (*model.Document, error) {
	if err := validate.DocumentFilename(filename); err != nil {
		return nil, err
	}

	text := extractText(filename, data)
	if len([]rune(text)) < minDocumentChars {
		return nil, eris.Errorf("kb: document %q too short to index (minimum %d characters)", filename, minDocumentChars)
	}

	pieces := ChunkText(text, e.opts.ChunkSize, e.opts.ChunkOverlap)
	vectors, err := e.embedder.Embed(ctx, pieces)
	if err != nil {
		return nil, eris.Wrap(err, "kb: embed chunks")
	}
	if len(vectors) != len(pieces) {
		return nil, eris.Errorf("kb: embedder returned %d vectors for %d chunks", len(vectors), len(pieces))
	}

	id := uuid.New().String()
	storePath := filepath.Join(e.docsDir, id+"_"+filename)
	if err := atomicfile.WriteFile(storePath, data, 0o644); err != nil {
		return nil, err
	}

	charCount := len([]rune(text))
	doc := &model.Document{
		ID:           id,
		Filename:     filename,
		SizeBytes:    int64(len(data)),
		UploadedAt:   time.Now().UTC(),
		ChunkCount:   len(pieces),
		StorePath:    storePath,
		EmbedModel:   e.embedder.Model(),
		CharCount:    charCount,
		TokenCount:   model.EstimateTokens(text),
		AvgChunkSize: float64(charCount) / float64(len(pieces)),
		Summary:      summarize(text),
	}

	chunks := make([]model.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = model.Chunk{DocumentID: id, Seq: i, Content: piece, Embedding: vectors[i]}
	}

	if err := e.db.InsertDocument(ctx, doc, chunks); err != nil {
		// The original bytes have no owning document row; do not leave
		// them orphaned on disk.
		if rmErr := removeStoredFile(storePath); rmErr != nil {
			zap.L().Warn("kb: could not remove stored document file",
				zap.String("path", storePath), zap.Error(rmErr))
		}
		return nil, err
	}

	zap.L().Info("kb: ingested document",
		zap.String("id", id),
		zap.String("filename", filename),
		zap.Int("chunks", len(pieces)),
		zap.String("model", doc.EmbedModel))
	return doc, nil
}

// Search returns the top chunks most similar to the query. Only chunks
// embedded under the engine's current model are scored; results are
// ordered by similarity, ties broken by insertion order.
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]model.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, eris.New("kb: empty query")
	}
	if topK <= 0 {
		topK = e.opts.TopK
	}

	vectors, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, eris.Wrap(err, "kb: embed query")
	}
	queryVec := vectors[0]

	chunks, err := e.db.allChunks(ctx)
	if err != nil {
		return nil, err
	}

	var hits []model.SearchHit
	skippedModels := map[string]int{}
	for _, chunk := range chunks {
		if chunk.embedModel != e.embedder.Model() {
			skippedModels[chunk.embedModel]++
			continue
		}
		hits = append(hits, model.SearchHit{
			Content:    chunk.content,
			DocumentID: chunk.documentID,
			Filename:   chunk.filename,
			Score:      cosineSimilarity(queryVec, chunk.embedding),
		})
	}
	for mdl, n := range skippedModels {
		zap.L().Warn("kb: skipping chunks embedded under a different model",
			zap.String("model", mdl), zap.Int("chunks", n))
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// ContextForPrompt retrieves the most relevant chunks for the query and
// formats them as a context block for the completion prompt. No indexed
// documents yields an empty string.
func (e *Engine) ContextForPrompt(ctx context.Context, query string) (string, error) {
	hits, err := e.Search(ctx, query, e.opts.TopK)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("Relevant context from your knowledge base:\n")
	for i, hit := range hits {
		fmt.Fprintf(&b, "\n[Source %d: %s]\n%s\n", i+1, hit.Filename, hit.Content)
	}
	return b.String(), nil
}

// Delete removes a document, its chunks, and the stored original bytes.
func (e *Engine) Delete(ctx context.Context, id string) error {
	storePath, err := e.db.DeleteDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := removeStoredFile(storePath); err != nil {
		zap.L().Warn("kb: could not remove stored document file",
			zap.String("path", storePath), zap.Error(err))
	}
	zap.L().Info("kb: deleted document", zap.String("id", id))
	return nil
}

// List returns all indexed documents, newest first.
func (e *Engine) List(ctx context.Context) ([]model.Document, error) {
	return e.db.ListDocuments(ctx)
}

// Get returns a single document, or nil when not indexed.
func (e *Engine) Get(ctx context.Context, id string) (*model.Document, error) {
	return e.db.GetDocument(ctx, id)
}

// summarize returns the opening of the document for list displays.
func summarize(text string) string {
	const maxSummary = 200
	runes := []rune(text)
	if len(runes) <= maxSummary {
		return text
	}
	return string(runes[:maxSummary]) + "..."
}
