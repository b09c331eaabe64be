package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"doc-windows/internal/embeddings"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Advisory lock so several workers starting together do not race on DDL.
	const lockID = 724113001

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !acquired {
		time.Sleep(2 * time.Second)
		return nil
	}
	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	if _, err := s.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY,
			tenant TEXT NOT NULL,
			filename TEXT,
			source_path TEXT,
			status TEXT,
			failure_reason TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS chunks (
			chunk_id TEXT PRIMARY KEY,
			document_id UUID REFERENCES documents(id) ON DELETE CASCADE,
			ord INT NOT NULL,
			section_id TEXT NOT NULL,
			section_path TEXT[],
			section_index INT,
			window_index INT,
			title TEXT,
			source_uri TEXT,
			sentences TEXT[],
			prev_chunk_id TEXT NOT NULL DEFAULT '',
			next_chunk_id TEXT NOT NULL DEFAULT '',
			tags TEXT[],
			abbreviations JSONB
		);`,
		`CREATE INDEX IF NOT EXISTS chunks_document_ord_idx ON chunks (document_id, ord);`,
		`CREATE TABLE IF NOT EXISTS embeddings (
			chunk_id TEXT PRIMARY KEY REFERENCES chunks(chunk_id) ON DELETE CASCADE,
			vector vector(1536),
			model TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS embeddings_vector_idx
			ON embeddings USING ivfflat (vector vector_cosine_ops)
			WITH (lists = 100);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) CreateDocument(ctx context.Context, doc Document) (Document, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.Status = StatusProcessing
	doc.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents(id, tenant, filename, source_path, status, created_at)
		VALUES($1,$2,$3,$4,$5,$6)`,
		doc.ID, doc.Tenant, doc.Filename, doc.SourcePath, doc.Status, doc.CreatedAt)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, id uuid.UUID) (Document, error) {
	var d Document
	row := s.db.QueryRowContext(ctx, `
		SELECT id, tenant, COALESCE(filename, ''), COALESCE(source_path, ''), status, failure_reason, created_at
		FROM documents WHERE id=$1`, id)
	if err := row.Scan(&d.ID, &d.Tenant, &d.Filename, &d.SourcePath, &d.Status, &d.FailureReason, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return Document{}, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return d, nil
}

func (s *PostgresStore) UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET status=$1, failure_reason='' WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) MarkDocumentFailed(ctx context.Context, id uuid.UUID, reason string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET status=$1, failure_reason=$2 WHERE id=$3`, StatusFailed, reason, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteChunks(ctx context.Context, docID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id=$1`, docID)
	return err
}

func (s *PostgresStore) SaveChunk(ctx context.Context, c Chunk) error {
	abbrevs, err := marshalAbbreviations(c.Abbreviations)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chunks(chunk_id, document_id, ord, section_id, section_path, section_index, window_index,
			title, source_uri, sentences, prev_chunk_id, next_chunk_id, tags, abbreviations)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (chunk_id) DO UPDATE SET
			document_id=excluded.document_id, ord=excluded.ord, section_id=excluded.section_id,
			section_path=excluded.section_path, section_index=excluded.section_index,
			window_index=excluded.window_index, title=excluded.title, source_uri=excluded.source_uri,
			sentences=excluded.sentences, prev_chunk_id=excluded.prev_chunk_id,
			next_chunk_id=excluded.next_chunk_id, tags=excluded.tags, abbreviations=excluded.abbreviations`,
		c.ChunkID, c.DocumentID, c.Ord, c.SectionID, pq.Array(c.SectionPath), c.SectionIndex, c.WindowIndex,
		c.Title, c.SourceURI, pq.Array(c.Sentences), c.PrevChunkID, c.NextChunkID, pq.Array(c.Tags), abbrevs)
	return err
}

const chunkColumns = `chunk_id, document_id, ord, section_id, section_path, section_index, window_index,
	COALESCE(title, ''), COALESCE(source_uri, ''), sentences, prev_chunk_id, next_chunk_id, tags, abbreviations`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunk(row rowScanner, extra ...any) (Chunk, error) {
	var (
		c       Chunk
		abbrevs []byte
	)
	dest := []any{
		&c.ChunkID, &c.DocumentID, &c.Ord, &c.SectionID, pq.Array(&c.SectionPath), &c.SectionIndex, &c.WindowIndex,
		&c.Title, &c.SourceURI, pq.Array(&c.Sentences), &c.PrevChunkID, &c.NextChunkID, pq.Array(&c.Tags), &abbrevs,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return Chunk{}, err
	}
	if len(abbrevs) > 0 {
		if err := json.Unmarshal(abbrevs, &c.Abbreviations); err != nil {
			return Chunk{}, fmt.Errorf("decode abbreviations of %s: %w", c.ChunkID, err)
		}
	}
	return c, nil
}

func (s *PostgresStore) ListChunks(ctx context.Context, docID uuid.UUID) ([]Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE document_id=$1 ORDER BY ord`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetChunk(ctx context.Context, chunkID string) (Chunk, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE chunk_id=$1`, chunkID)
	c, err := scanChunk(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Chunk{}, fmt.Errorf("chunk %s: %w", chunkID, ErrNotFound)
		}
		return Chunk{}, fmt.Errorf("failed to get chunk %s: %w", chunkID, err)
	}
	return c, nil
}

func (s *PostgresStore) SaveEmbeddings(ctx context.Context, embs []Embedding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, e := range embs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO embeddings(chunk_id, vector, model)
			VALUES($1,$2,$3)
			ON CONFLICT (chunk_id) DO UPDATE SET vector=excluded.vector, model=excluded.model`,
			e.ChunkID, pgvector.NewVector(e.Vector), e.Model)
		if err != nil {
			return fmt.Errorf("save embedding for %s: %w", e.ChunkID, err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) TopK(ctx context.Context, docIDs []uuid.UUID, vector embeddings.Vector, k int) ([]SearchResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+chunkColumns+`, 1 - (e.vector <=> $1) AS similarity
		FROM embeddings e
		JOIN chunks c USING (chunk_id)
		WHERE c.document_id = ANY($2)
		ORDER BY e.vector <=> $1
		LIMIT $3`, pgvector.NewVector(vector), pq.Array(uuidStrings(docIDs)), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var score float32
		c, err := scanChunk(rows, &score)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{Chunk: c, Score: score})
	}
	return results, rows.Err()
}

func marshalAbbreviations(m map[string]string) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode abbreviations: %w", err)
	}
	return string(b), nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
