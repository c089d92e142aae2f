package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nuclom/search/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/nuclom/search/internal/core/domain"
	"github.com/nuclom/search/internal/core/ports/driven"
)

// Store is the SQLite-backed content store. It implements both the read
// surface used by the search engine and the write surface used by the
// importer.
type Store struct {
	db   *sql.DB
	path string

	// now is the clock used for facet date bucketing.
	now func() time.Time
}

var (
	_ driven.ContentStore  = (*Store)(nil)
	_ driven.ContentWriter = (*Store)(nil)
)

// NewStore creates a SQLite store under the given data directory.
// If dataDir is empty, defaults to ~/.nuclom/data/search.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".nuclom", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "search.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Content Writer ====================

// SaveVideo stores or updates a video.
func (s *Store) SaveVideo(ctx context.Context, v *domain.Video) error {
	if v.ID == "" || v.OrganizationID == "" {
		return domain.ErrInvalidInput
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now().UTC()
	}

	// Fold in Go rather than with SQLite's lower(), which is ASCII-only.
	searchText := strings.ToLower(v.Title + " " + v.Description + " " + v.Transcript)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO videos (id, organization_id, title, description, transcript, search_text, author_id, author_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			organization_id = excluded.organization_id,
			title = excluded.title,
			description = excluded.description,
			transcript = excluded.transcript,
			search_text = excluded.search_text,
			author_id = excluded.author_id,
			author_name = excluded.author_name,
			created_at = excluded.created_at
	`, v.ID, v.OrganizationID, v.Title, v.Description, v.Transcript, searchText,
		v.AuthorID, v.AuthorName, v.CreatedAt.UTC())

	if err != nil {
		return fmt.Errorf("saving video: %w", err)
	}
	return nil
}

// SaveTranscriptChunks stores transcript chunks for a video.
func (s *Store) SaveTranscriptChunks(ctx context.Context, chunks []domain.TranscriptChunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transcript_chunks (id, video_id, position, content, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			video_id = excluded.video_id,
			position = excluded.position,
			content = excluded.content,
			embedding = excluded.embedding,
			created_at = excluded.created_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		createdAt := chunk.CreatedAt
		if createdAt.IsZero() {
			createdAt = s.now().UTC()
		}
		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.VideoID, chunk.Position,
			chunk.Content, embeddingBlob, createdAt.UTC()); err != nil {
			return fmt.Errorf("saving transcript chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SaveSource stores or updates a source instance.
func (s *Store) SaveSource(ctx context.Context, src domain.Source) error {
	if src.ID == "" || src.OrganizationID == "" || !src.Type.Valid() {
		return domain.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (id, organization_id, type, name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			organization_id = excluded.organization_id,
			type = excluded.type,
			name = excluded.name
	`, src.ID, src.OrganizationID, string(src.Type), src.Name)

	if err != nil {
		return fmt.Errorf("saving source: %w", err)
	}
	return nil
}

// SaveContentItem stores or updates a content item. The keyword search
// text is derived from title, body, and author name at write time.
func (s *Store) SaveContentItem(ctx context.Context, item *domain.ContentItem) error {
	if item.ID == "" || item.OrganizationID == "" {
		return domain.ErrInvalidInput
	}
	if !item.SourceType.Valid() || !item.ContentType.Valid() {
		return domain.ErrInvalidInput
	}
	if item.SearchText == "" {
		item.SearchText = strings.ToLower(strings.TrimSpace(
			item.Title + " " + item.Body + " " + item.AuthorName))
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now().UTC()
	}

	embeddingBlob := float32SliceToBytes(item.Embedding)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_items
			(id, organization_id, source_id, source_type, content_type,
			 title, body, search_text, author_id, author_name, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			organization_id = excluded.organization_id,
			source_id = excluded.source_id,
			source_type = excluded.source_type,
			content_type = excluded.content_type,
			title = excluded.title,
			body = excluded.body,
			search_text = excluded.search_text,
			author_id = excluded.author_id,
			author_name = excluded.author_name,
			embedding = excluded.embedding,
			created_at = excluded.created_at
	`, item.ID, item.OrganizationID, item.SourceID, string(item.SourceType),
		string(item.ContentType), item.Title, item.Body, item.SearchText,
		item.AuthorID, item.AuthorName, embeddingBlob, item.CreatedAt.UTC())

	if err != nil {
		return fmt.Errorf("saving content item: %w", err)
	}
	return nil
}

// SaveTopicCluster stores or updates a topic cluster.
func (s *Store) SaveTopicCluster(ctx context.Context, c domain.TopicCluster) error {
	if c.ID == "" || c.OrganizationID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO topic_clusters (id, organization_id, name)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			organization_id = excluded.organization_id,
			name = excluded.name
	`, c.ID, c.OrganizationID, c.Name)

	if err != nil {
		return fmt.Errorf("saving topic cluster: %w", err)
	}
	return nil
}

// AssignTopic links a content item to a topic cluster, replacing any
// previous assignment.
func (s *Store) AssignTopic(ctx context.Context, itemID, clusterID string) error {
	if itemID == "" || clusterID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_item_topics (item_id, cluster_id)
		VALUES (?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			cluster_id = excluded.cluster_id
	`, itemID, clusterID)

	if err != nil {
		return fmt.Errorf("assigning topic: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// cosineSimilarity computes the cosine similarity of two vectors.
// Mismatched or zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// escapeLike escapes LIKE metacharacters so caller input matches
// literally. Queries using the result must carry ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// containsPattern builds a case-folded substring LIKE pattern.
func containsPattern(s string) string {
	return "%" + escapeLike(strings.ToLower(s)) + "%"
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
