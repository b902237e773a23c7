// Package sqlite provides a durable artifact store backed by an embedded
// SQLite database (modernc.org/sqlite, no cgo). WAL mode is enabled for
// concurrent reads; read-modify-write operations run inside transactions so
// state transitions stay atomic per artifact id.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/crewmesh/core"
	"github.com/hupe1980/crewmesh/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS contents (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	cover TEXT,
	description TEXT,
	body TEXT,
	category TEXT,
	platform TEXT NOT NULL,
	account_id TEXT NOT NULL,
	tags TEXT,
	stats TEXT,
	status TEXT NOT NULL,
	scheduled_at TEXT,
	published_at TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contents_account_created ON contents(account_id, created_at);

CREATE TABLE IF NOT EXISTS product_documents (
	id TEXT PRIMARY KEY,
	product_name TEXT NOT NULL,
	document_content TEXT,
	brand_name TEXT,
	product_category TEXT,
	price_range TEXT,
	target_audience TEXT,
	tags TEXT,
	summary TEXT,
	user_id TEXT NOT NULL,
	status TEXT NOT NULL,
	failure_reason TEXT,
	completed_at TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_user_created ON product_documents(user_id, created_at);
`

// Compile-time checks.
var (
	_ core.ContentStore         = (*ContentStore)(nil)
	_ core.ProductDocumentStore = (*DocumentStore)(nil)
)

// DB wraps an SQLite connection shared by the content and document stores.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (or creates) the database at path, enabling WAL mode and
// applying the schema. Parent directories are created as needed.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	// Write transactions must take the write lock up front (_txlock=immediate):
	// with deferred transactions two concurrent read-modify-write transitions
	// on the same id would both start as readers and race on lock upgrade,
	// surfacing SQLITE_BUSY instead of a clean state error.
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=busy_timeout(5000)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &DB{conn: conn, path: path}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error { return db.conn.Close() }

// Contents returns the content store view.
func (db *DB) Contents() *ContentStore { return &ContentStore{db: db} }

// Documents returns the product document store view.
func (db *DB) Documents() *DocumentStore { return &DocumentStore{db: db} }

// ContentStore implements core.ContentStore over the shared connection.
type ContentStore struct {
	db *DB
}

// Create inserts a new content row.
func (s *ContentStore) Create(ctx context.Context, c *core.Content) error {
	tags, stats, err := encodeContentJSON(c)
	if err != nil {
		return err
	}
	_, err = s.db.conn.ExecContext(ctx, `
		INSERT INTO contents (id, title, cover, description, body, category, platform, account_id,
			tags, stats, status, scheduled_at, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Cover, c.Description, c.Body, c.Category, c.Platform, c.AccountID,
		tags, stats, string(c.Status), encodeTime(c.ScheduledAt), encodeTime(c.PublishedAt),
		c.CreatedAt.Format(time.RFC3339Nano), c.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert content: %w", err)
	}
	return nil
}

// Get loads a content row or core.ErrNotFound.
func (s *ContentStore) Get(ctx context.Context, id string) (*core.Content, error) {
	return scanContent(s.db.conn.QueryRowContext(ctx, selectContent+" WHERE id = ?", id))
}

// Update applies a partial mutation inside a transaction.
func (s *ContentStore) Update(ctx context.Context, id string, u core.ContentUpdate) (*core.Content, error) {
	var out *core.Content
	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		c, err := scanContent(tx.QueryRowContext(ctx, selectContent+" WHERE id = ?", id))
		if err != nil {
			return err
		}
		if err := c.ApplyUpdate(u); err != nil {
			return err
		}
		if err := writeContent(ctx, tx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

// Transition drives the content state machine inside a transaction.
func (s *ContentStore) Transition(ctx context.Context, id string, t core.ContentTransition) (*core.Content, error) {
	var out *core.Content
	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		c, err := scanContent(tx.QueryRowContext(ctx, selectContent+" WHERE id = ?", id))
		if err != nil {
			return err
		}
		if err := store.ApplyContentTransition(c, t); err != nil {
			return err
		}
		if err := writeContent(ctx, tx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

// ListByAccount returns content for an account, newest first.
func (s *ContentStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]*core.Content, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.conn.QueryContext(ctx,
		selectContent+" WHERE account_id = ? ORDER BY created_at DESC LIMIT ?", accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("query contents: %w", err)
	}
	defer rows.Close()

	var out []*core.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DocumentStore implements core.ProductDocumentStore over the shared connection.
type DocumentStore struct {
	db *DB
}

// Create inserts a new document row.
func (s *DocumentStore) Create(ctx context.Context, d *core.ProductDocument) error {
	tags, err := encodeTags(d.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.conn.ExecContext(ctx, `
		INSERT INTO product_documents (id, product_name, document_content, brand_name, product_category,
			price_range, target_audience, tags, summary, user_id, status, failure_reason,
			completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.ProductName, d.DocumentContent, d.BrandName, d.ProductCategory,
		d.PriceRange, d.TargetAudience, tags, d.Summary, d.UserID, string(d.Status), d.FailureReason,
		encodeTime(d.CompletedAt), d.CreatedAt.Format(time.RFC3339Nano), d.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert product document: %w", err)
	}
	return nil
}

// Get loads a document row or core.ErrNotFound.
func (s *DocumentStore) Get(ctx context.Context, id string) (*core.ProductDocument, error) {
	return scanDocument(s.db.conn.QueryRowContext(ctx, selectDocument+" WHERE id = ?", id))
}

// Update applies a partial mutation inside a transaction.
func (s *DocumentStore) Update(ctx context.Context, id string, u core.ProductDocumentUpdate) (*core.ProductDocument, error) {
	var out *core.ProductDocument
	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		d, err := scanDocument(tx.QueryRowContext(ctx, selectDocument+" WHERE id = ?", id))
		if err != nil {
			return err
		}
		if err := d.ApplyUpdate(u); err != nil {
			return err
		}
		if err := writeDocument(ctx, tx, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	return out, err
}

// Transition drives the document state machine inside a transaction.
func (s *DocumentStore) Transition(ctx context.Context, id string, t core.ProductDocumentTransition) (*core.ProductDocument, error) {
	var out *core.ProductDocument
	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		d, err := scanDocument(tx.QueryRowContext(ctx, selectDocument+" WHERE id = ?", id))
		if err != nil {
			return err
		}
		if err := store.ApplyDocumentTransition(d, t); err != nil {
			return err
		}
		if err := writeDocument(ctx, tx, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	return out, err
}

// ListByUser returns documents for a user, newest first.
func (s *DocumentStore) ListByUser(ctx context.Context, userID string, limit int) ([]*core.ProductDocument, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.conn.QueryContext(ctx,
		selectDocument+" WHERE user_id = ? ORDER BY created_at DESC LIMIT ?", userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query product documents: %w", err)
	}
	defer rows.Close()

	var out []*core.ProductDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const selectContent = `SELECT id, title, cover, description, body, category, platform, account_id,
	tags, stats, status, scheduled_at, published_at, created_at, updated_at FROM contents`

const selectDocument = `SELECT id, product_name, document_content, brand_name, product_category,
	price_range, target_audience, tags, summary, user_id, status, failure_reason,
	completed_at, created_at, updated_at FROM product_documents`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (*core.Content, error) {
	var (
		c                        core.Content
		status                   string
		tags, stats              sql.NullString
		scheduledAt, publishedAt sql.NullString
		createdAt, updatedAt     string
	)
	err := row.Scan(&c.ID, &c.Title, &c.Cover, &c.Description, &c.Body, &c.Category, &c.Platform,
		&c.AccountID, &tags, &stats, &status, &scheduledAt, &publishedAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan content: %w", err)
	}
	c.Status = core.ContentStatus(status)
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &c.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	if stats.Valid && stats.String != "" {
		if err := json.Unmarshal([]byte(stats.String), &c.Stats); err != nil {
			return nil, fmt.Errorf("decode stats: %w", err)
		}
	}
	if c.ScheduledAt, err = decodeTime(scheduledAt); err != nil {
		return nil, err
	}
	if c.PublishedAt, err = decodeTime(publishedAt); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	if c.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("decode updated_at: %w", err)
	}
	return &c, nil
}

func scanDocument(row rowScanner) (*core.ProductDocument, error) {
	var (
		d                    core.ProductDocument
		status               string
		tags, completedAt    sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&d.ID, &d.ProductName, &d.DocumentContent, &d.BrandName, &d.ProductCategory,
		&d.PriceRange, &d.TargetAudience, &tags, &d.Summary, &d.UserID, &status, &d.FailureReason,
		&completedAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan product document: %w", err)
	}
	d.Status = core.ProductDocumentStatus(status)
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &d.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	if d.CompletedAt, err = decodeTime(completedAt); err != nil {
		return nil, err
	}
	if d.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	if d.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("decode updated_at: %w", err)
	}
	return &d, nil
}

func writeContent(ctx context.Context, tx *sql.Tx, c *core.Content) error {
	tags, stats, err := encodeContentJSON(c)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE contents SET title = ?, cover = ?, description = ?, body = ?, category = ?,
			platform = ?, account_id = ?, tags = ?, stats = ?, status = ?,
			scheduled_at = ?, published_at = ?, updated_at = ?
		WHERE id = ?`,
		c.Title, c.Cover, c.Description, c.Body, c.Category,
		c.Platform, c.AccountID, tags, stats, string(c.Status),
		encodeTime(c.ScheduledAt), encodeTime(c.PublishedAt), c.UpdatedAt.Format(time.RFC3339Nano),
		c.ID)
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	return nil
}

func writeDocument(ctx context.Context, tx *sql.Tx, d *core.ProductDocument) error {
	tags, err := encodeTags(d.Tags)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE product_documents SET product_name = ?, document_content = ?, brand_name = ?,
			product_category = ?, price_range = ?, target_audience = ?, tags = ?, summary = ?,
			user_id = ?, status = ?, failure_reason = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		d.ProductName, d.DocumentContent, d.BrandName,
		d.ProductCategory, d.PriceRange, d.TargetAudience, tags, d.Summary,
		d.UserID, string(d.Status), d.FailureReason, encodeTime(d.CompletedAt),
		d.UpdatedAt.Format(time.RFC3339Nano), d.ID)
	if err != nil {
		return fmt.Errorf("update product document: %w", err)
	}
	return nil
}

func encodeContentJSON(c *core.Content) (tags, stats any, err error) {
	tags, err = encodeTags(c.Tags)
	if err != nil {
		return nil, nil, err
	}
	if c.Stats == nil {
		return tags, nil, nil
	}
	b, err := json.Marshal(c.Stats)
	if err != nil {
		return nil, nil, fmt.Errorf("encode stats: %w", err)
	}
	return tags, string(b), nil
}

func encodeTags(tags []string) (any, error) {
	if tags == nil {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func encodeTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func decodeTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, fmt.Errorf("decode timestamp: %w", err)
	}
	return &t, nil
}
