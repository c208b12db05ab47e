package model

import "time"

// Document is one operator-uploaded reference file in the knowledge base.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
	ChunkCount int       `json:"chunk_count"`
	StorePath  string    `json:"store_path"`

	// Embedding provenance: vectors from different models are not
	// comparable, so the model used at ingestion travels with the document.
	EmbedModel string `json:"embed_model"`

	CharCount    int    `json:"char_count"`
	TokenCount   int    `json:"token_count"`
	AvgChunkSize float64 `json:"avg_chunk_size"`
	Summary      string `json:"summary"`
}

// Chunk is a bounded text fragment of a document together with its
// embedding vector. Chunks never outlive their document.
type Chunk struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	Seq        int       `json:"seq"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
}

// SearchHit is one scored chunk returned by a similarity search.
type SearchHit struct {
	Content    string  `json:"content"`
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Score      float64 `json:"score"`
}

// EstimateTokens approximates the token count of a text (1 token ~ 4 chars).
func EstimateTokens(text string) int {
	return len(text) / 4
}
