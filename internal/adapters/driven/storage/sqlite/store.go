package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/loreweave/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// DatabaseFileName is the database file inside the data directory.
const DatabaseFileName = "collections.db"

// Store is a SQLite-based storage that provides the driven store
// interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.loreweave/data/collections.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".loreweave", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFileName)

	// WAL for concurrent readers; foreign keys per connection so chunk rows
	// cascade with their collection.
	db, err := sql.Open("sqlite", dbPath+
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
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

// CollectionStore returns a CollectionStore interface backed by this store.
func (s *Store) CollectionStore() driven.CollectionStore {
	return &collectionStore{store: s}
}

// migrate runs all pending migrations. Each migration and its version row
// are applied in one transaction.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
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

		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// ==================== Collection Store ====================

// collectionStore implements driven.CollectionStore.
type collectionStore struct {
	store *Store
}

var _ driven.CollectionStore = (*collectionStore)(nil)

// chunkMetadata holds the chunk fields that are only ever read whole.
type chunkMetadata struct {
	Tags                []string              `json:"tags,omitempty"`
	SystemKeywords      []string              `json:"systemKeywords,omitempty"`
	CustomKeywords      []string              `json:"customKeywords,omitempty"`
	DisabledKeywords    []string              `json:"disabledKeywords,omitempty"`
	CustomWeights       map[string]int        `json:"customWeights,omitempty"`
	KeywordRegex        []domain.KeywordRegex `json:"keywordRegex,omitempty"`
	CustomRegex         []domain.KeywordRegex `json:"customRegex,omitempty"`
	ChunkLinks          []domain.ChunkLink    `json:"chunkLinks,omitempty"`
	InclusionGroup      string                `json:"inclusionGroup,omitempty"`
	InclusionPrioritize bool                  `json:"inclusionPrioritize,omitempty"`
	ChunkGroup          *domain.ChunkGroup    `json:"chunkGroup,omitempty"`
	SectionMentions     map[string]int        `json:"sectionMentions,omitempty"`
}

// SaveCollection stores or updates collection metadata.
func (s *collectionStore) SaveCollection(ctx context.Context, coll *domain.Collection) error {
	triggers := coll.ActivationTriggers
	if triggers == nil {
		triggers = []string{}
	}
	triggersJSON, err := json.Marshal(triggers)
	if err != nil {
		return fmt.Errorf("marshalling triggers: %w", err)
	}
	conditionsJSON, err := json.Marshal(coll.Conditions)
	if err != nil {
		return fmt.Errorf("marshalling conditions: %w", err)
	}

	kind := coll.Scope.Kind
	if kind == "" {
		kind = domain.ScopeGlobal
	}

	now := time.Now()
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO collections (id, name, description, scope_kind, scope_owner, library,
			activation_triggers, always_active, conditions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			scope_kind = excluded.scope_kind,
			scope_owner = excluded.scope_owner,
			library = excluded.library,
			activation_triggers = excluded.activation_triggers,
			always_active = excluded.always_active,
			conditions = excluded.conditions,
			updated_at = excluded.updated_at
	`, coll.ID, coll.Name, coll.Description, string(kind), coll.Scope.Owner, coll.Library,
		string(triggersJSON), coll.AlwaysActive, string(conditionsJSON), now, now)

	if err != nil {
		return fmt.Errorf("saving collection: %w", err)
	}
	return nil
}

// GetCollection retrieves collection metadata by ID.
func (s *collectionStore) GetCollection(ctx context.Context, id string) (*domain.Collection, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, description, scope_kind, scope_owner, library,
			activation_triggers, always_active, conditions
		FROM collections WHERE id = ?
	`, id)

	return scanCollection(row)
}

// ListCollections returns metadata for every collection, ordered by ID.
func (s *collectionStore) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, description, scope_kind, scope_owner, library,
			activation_triggers, always_active, conditions
		FROM collections ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var colls []domain.Collection //nolint:prealloc // size unknown from query
	for rows.Next() {
		coll, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		colls = append(colls, *coll)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}

	return colls, nil
}

// DeleteCollection removes a collection and its chunks.
func (s *collectionStore) DeleteCollection(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM collections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SaveChunks upserts chunks into a collection by hash.
func (s *collectionStore) SaveChunks(ctx context.Context, collectionID string, chunks []domain.Chunk) error {
	if err := s.requireCollection(ctx, collectionID); err != nil {
		return err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (collection_id, hash, text, section, topic, disabled, importance, batch_id, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection_id, hash) DO UPDATE SET
			text = excluded.text,
			section = excluded.section,
			topic = excluded.topic,
			disabled = excluded.disabled,
			importance = excluded.importance,
			batch_id = excluded.batch_id,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		chunk := &chunks[i]
		metadataJSON, err := json.Marshal(metadataOf(chunk))
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		var importance sql.NullInt64
		if chunk.Importance != nil {
			importance = sql.NullInt64{Int64: int64(*chunk.Importance), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, collectionID, chunk.Hash, chunk.Text, chunk.Section,
			chunk.Topic, chunk.Disabled, importance, chunk.BatchID, string(metadataJSON)); err != nil {
			return fmt.Errorf("saving chunk %d: %w", chunk.Hash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetChunks returns the full hash to chunk map of a collection.
func (s *collectionStore) GetChunks(ctx context.Context, collectionID string) (map[int64]*domain.Chunk, error) {
	if err := s.requireCollection(ctx, collectionID); err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT hash, text, section, topic, disabled, importance, batch_id, metadata
		FROM chunks WHERE collection_id = ?
	`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	chunks := make(map[int64]*domain.Chunk)
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks[chunk.Hash] = chunk
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// GetChunk retrieves one chunk.
func (s *collectionStore) GetChunk(ctx context.Context, collectionID string, hash int64) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT hash, text, section, topic, disabled, importance, batch_id, metadata
		FROM chunks WHERE collection_id = ? AND hash = ?
	`, collectionID, hash)

	return scanChunk(row)
}

// DeleteChunks removes chunks by hash.
func (s *collectionStore) DeleteChunks(ctx context.Context, collectionID string, hashes []int64) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, h := range hashes {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM chunks WHERE collection_id = ? AND hash = ?", collectionID, h); err != nil {
			return fmt.Errorf("deleting chunk %d: %w", h, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// requireCollection returns ErrNotFound for an unknown collection.
func (s *collectionStore) requireCollection(ctx context.Context, id string) error {
	var one int
	err := s.store.db.QueryRowContext(ctx, "SELECT 1 FROM collections WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking collection: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(row rowScanner) (*domain.Collection, error) {
	var coll domain.Collection
	var kind, triggersJSON, conditionsJSON string

	if err := row.Scan(&coll.ID, &coll.Name, &coll.Description, &kind, &coll.Scope.Owner,
		&coll.Library, &triggersJSON, &coll.AlwaysActive, &conditionsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning collection: %w", err)
	}
	coll.Scope.Kind = domain.ScopeKind(kind)

	if triggersJSON != "" {
		if err := json.Unmarshal([]byte(triggersJSON), &coll.ActivationTriggers); err != nil {
			return nil, fmt.Errorf("unmarshaling triggers: %w", err)
		}
	}
	if len(coll.ActivationTriggers) == 0 {
		coll.ActivationTriggers = nil
	}

	if conditionsJSON != "" && conditionsJSON != jsonNull {
		var cond domain.Conditions
		if err := json.Unmarshal([]byte(conditionsJSON), &cond); err != nil {
			return nil, fmt.Errorf("unmarshaling conditions: %w", err)
		}
		coll.Conditions = &cond
	}

	return &coll, nil
}

func scanChunk(row rowScanner) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var importance sql.NullInt64
	var metadataJSON string

	if err := row.Scan(&chunk.Hash, &chunk.Text, &chunk.Section, &chunk.Topic,
		&chunk.Disabled, &importance, &chunk.BatchID, &metadataJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	if importance.Valid {
		v := int(importance.Int64)
		chunk.Importance = &v
	}

	if metadataJSON != "" && metadataJSON != jsonNull {
		var md chunkMetadata
		if err := json.Unmarshal([]byte(metadataJSON), &md); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
		md.applyTo(&chunk)
	}

	return &chunk, nil
}

func metadataOf(c *domain.Chunk) chunkMetadata {
	return chunkMetadata{
		Tags:                c.Tags,
		SystemKeywords:      c.SystemKeywords,
		CustomKeywords:      c.CustomKeywords,
		DisabledKeywords:    c.DisabledKeywords,
		CustomWeights:       c.CustomWeights,
		KeywordRegex:        c.KeywordRegex,
		CustomRegex:         c.CustomRegex,
		ChunkLinks:          c.ChunkLinks,
		InclusionGroup:      c.InclusionGroup,
		InclusionPrioritize: c.InclusionPrioritize,
		ChunkGroup:          c.ChunkGroup,
		SectionMentions:     c.SectionMentions,
	}
}

func (md chunkMetadata) applyTo(c *domain.Chunk) {
	c.Tags = md.Tags
	c.SystemKeywords = md.SystemKeywords
	c.CustomKeywords = md.CustomKeywords
	c.DisabledKeywords = md.DisabledKeywords
	c.CustomWeights = md.CustomWeights
	c.KeywordRegex = md.KeywordRegex
	c.CustomRegex = md.CustomRegex
	c.ChunkLinks = md.ChunkLinks
	c.InclusionGroup = md.InclusionGroup
	c.InclusionPrioritize = md.InclusionPrioritize
	c.ChunkGroup = md.ChunkGroup
	c.SectionMentions = md.SectionMentions
}
