package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/fleapit/fleapit/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements Database backed by SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) an SQLite database at dsn and runs migrations.
// For in-memory use pass "file::memory:?cache=shared".
func NewSQLiteDB(dsn string) (*SQLiteDB, error) {
	// The driver only honours pragmas in _pragma=name(value) form; the busy
	// timeout must reach every pooled connection or concurrent writers fail
	// with SQLITE_BUSY.
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	} else if !strings.Contains(dsn, "_pragma") {
		dsn += "&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// nullable maps an empty string to NULL so required TEXT columns raise
// NOT NULL violations instead of silently storing "".
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *SQLiteDB) CreateUser(ctx context.Context, u *model.User) error {
	ts := now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, first_name, last_name, password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		nullable(u.Username), nullable(u.FirstName), nullable(u.LastName),
		nullable(u.Password), ts, ts,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	u.ID, _ = res.LastInsertId()
	u.CreatedAt = parseTime(ts)
	u.UpdatedAt = u.CreatedAt
	return nil
}

func (s *SQLiteDB) GetUser(ctx context.Context, id int64) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, first_name, last_name, password, created_at, updated_at
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *SQLiteDB) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, first_name, last_name, password, created_at, updated_at
		FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteDB) UpdateUser(ctx context.Context, u *model.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET username = ?, first_name = ?, last_name = ?, password = ?, updated_at = ?
		WHERE id = ?`,
		nullable(u.Username), nullable(u.FirstName), nullable(u.LastName),
		nullable(u.Password), now(), u.ID,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteDB) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return checkRowsAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*model.User, error) {
	u := &model.User{}
	var created, updated string
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Password, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = parseTime(created)
	u.UpdatedAt = parseTime(updated)
	return u, nil
}

// ---------------------------------------------------------------------------
// Media
// ---------------------------------------------------------------------------

func (s *SQLiteDB) CreateMedia(ctx context.Context, m *model.Media) error {
	ts := now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO media (name, url, checksum, collection, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		nullable(m.Name), nullable(m.URL), nullable(m.Checksum),
		nullableID(m.CollectionID), ts, ts,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	m.ID, _ = res.LastInsertId()
	m.CreatedAt = parseTime(ts)
	m.UpdatedAt = m.CreatedAt
	return nil
}

func (s *SQLiteDB) GetMedia(ctx context.Context, id int64) (*model.Media, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, url, checksum, collection, created_at, updated_at
		FROM media WHERE id = ?`, id)
	return scanMedia(row)
}

func (s *SQLiteDB) ListMedia(ctx context.Context, limit, offset int) ([]*model.Media, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, url, checksum, collection, created_at, updated_at
		FROM media ORDER BY id ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()
	return scanMediaRows(rows)
}

func (s *SQLiteDB) ListMediaByCollection(ctx context.Context, collectionID int64) ([]*model.Media, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, url, checksum, collection, created_at, updated_at
		FROM media WHERE collection = ? ORDER BY id ASC`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list media by collection: %w", err)
	}
	defer rows.Close()
	return scanMediaRows(rows)
}

func (s *SQLiteDB) DeleteMedia(ctx context.Context, id int64) error {
	// Dependent rows first; media metadata and artwork reference media(id).
	if _, err := s.db.ExecContext(ctx, `DELETE FROM media_metadata WHERE media_id = ?`, id); err != nil {
		return fmt.Errorf("delete media metadata: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM media_artwork WHERE media_id = ?`, id); err != nil {
		return fmt.Errorf("delete media artwork: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	return checkRowsAffected(res)
}

func scanMedia(row scanner) (*model.Media, error) {
	m := &model.Media{}
	var name sql.NullString
	var created, updated string
	err := row.Scan(&m.ID, &name, &m.URL, &m.Checksum, &m.CollectionID, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan media: %w", err)
	}
	m.Name = name.String
	m.CreatedAt = parseTime(created)
	m.UpdatedAt = parseTime(updated)
	return m, nil
}

func scanMediaRows(rows *sql.Rows) ([]*model.Media, error) {
	var media []*model.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

// ---------------------------------------------------------------------------
// Collections
// ---------------------------------------------------------------------------

func (s *SQLiteDB) CreateCollection(ctx context.Context, c *model.Collection) error {
	ts := now()
	var parent any
	if c.ParentID != nil {
		parent = *c.ParentID
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (name, parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		nullable(c.Name), parent, ts, ts,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	c.ID, _ = res.LastInsertId()
	c.CreatedAt = parseTime(ts)
	c.UpdatedAt = c.CreatedAt
	return nil
}

func (s *SQLiteDB) GetCollection(ctx context.Context, id int64) (*model.Collection, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, parent_id, created_at, updated_at
		FROM collections WHERE id = ?`, id)
	return scanCollection(row)
}

func (s *SQLiteDB) ListCollections(ctx context.Context) ([]*model.Collection, error) {
	return s.queryCollections(ctx, `
		SELECT id, name, parent_id, created_at, updated_at
		FROM collections ORDER BY id ASC`)
}

func (s *SQLiteDB) ListTopLevelCollections(ctx context.Context) ([]*model.Collection, error) {
	return s.queryCollections(ctx, `
		SELECT id, name, parent_id, created_at, updated_at
		FROM collections WHERE parent_id IS NULL ORDER BY id ASC`)
}

// ListChildCollections returns collections reachable from parentID through
// either the parent_id column or a collection_links row.
func (s *SQLiteDB) ListChildCollections(ctx context.Context, parentID int64) ([]*model.Collection, error) {
	return s.queryCollections(ctx, `
		SELECT id, name, parent_id, created_at, updated_at
		FROM collections
		WHERE parent_id = ?
		   OR id IN (SELECT child_id FROM collection_links WHERE parent_id = ?)
		ORDER BY id ASC`, parentID, parentID)
}

func (s *SQLiteDB) LinkCollections(ctx context.Context, parentID, childID int64) error {
	if parentID == childID {
		return &ValidationError{Errors: []FieldError{{
			Field:   "childId",
			Message: "child collection must differ from parent collection",
		}}}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collection_links (parent_id, child_id) VALUES (?, ?)`,
		parentID, childID,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	return nil
}

func (s *SQLiteDB) queryCollections(ctx context.Context, query string, args ...any) ([]*model.Collection, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var collections []*model.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

func scanCollection(row scanner) (*model.Collection, error) {
	c := &model.Collection{}
	var parent sql.NullInt64
	var created, updated string
	err := row.Scan(&c.ID, &c.Name, &parent, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan collection: %w", err)
	}
	if parent.Valid {
		c.ParentID = &parent.Int64
	}
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return c, nil
}

// ---------------------------------------------------------------------------
// Artwork
// ---------------------------------------------------------------------------

func (s *SQLiteDB) CreateArtwork(ctx context.Context, a *model.Artwork) error {
	ts := now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO media_artwork (media_id, format, url, tag, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		nullableID(a.MediaID), nullable(a.Format), nullable(a.URL),
		nullable(a.Tag), ts, ts,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	a.ID, _ = res.LastInsertId()
	a.CreatedAt = parseTime(ts)
	a.UpdatedAt = a.CreatedAt
	return nil
}

func (s *SQLiteDB) GetArtwork(ctx context.Context, id int64) (*model.Artwork, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, media_id, format, url, tag, created_at, updated_at
		FROM media_artwork WHERE id = ?`, id)
	return scanArtwork(row)
}

func (s *SQLiteDB) ListArtwork(ctx context.Context) ([]*model.Artwork, error) {
	return s.queryArtwork(ctx, `
		SELECT id, media_id, format, url, tag, created_at, updated_at
		FROM media_artwork ORDER BY id ASC`)
}

func (s *SQLiteDB) ListArtworkByMedia(ctx context.Context, mediaID int64) ([]*model.Artwork, error) {
	return s.queryArtwork(ctx, `
		SELECT id, media_id, format, url, tag, created_at, updated_at
		FROM media_artwork WHERE media_id = ? ORDER BY id ASC`, mediaID)
}

func (s *SQLiteDB) DeleteArtwork(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM media_artwork WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete artwork: %w", err)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteDB) queryArtwork(ctx context.Context, query string, args ...any) ([]*model.Artwork, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list artwork: %w", err)
	}
	defer rows.Close()

	var artwork []*model.Artwork
	for rows.Next() {
		a, err := scanArtwork(rows)
		if err != nil {
			return nil, err
		}
		artwork = append(artwork, a)
	}
	return artwork, rows.Err()
}

func scanArtwork(row scanner) (*model.Artwork, error) {
	a := &model.Artwork{}
	var tag sql.NullString
	var created, updated string
	err := row.Scan(&a.ID, &a.MediaID, &a.Format, &a.URL, &tag, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan artwork: %w", err)
	}
	a.Tag = tag.String
	a.CreatedAt = parseTime(created)
	a.UpdatedAt = parseTime(updated)
	return a, nil
}

// ---------------------------------------------------------------------------
// Sparse media metadata
// ---------------------------------------------------------------------------

func (s *SQLiteDB) ListMediaMetadata(ctx context.Context, mediaID int64) ([]*model.MetadataRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, media_id, key, value
		FROM media_metadata WHERE media_id = ? ORDER BY id ASC`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("list media metadata: %w", err)
	}
	defer rows.Close()

	var entries []*model.MetadataRow
	for rows.Next() {
		e := &model.MetadataRow{}
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("scan media metadata: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteDB) UpsertMediaMetadata(ctx context.Context, mediaID int64, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media_metadata (media_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT (media_id, key) DO UPDATE SET value = excluded.value`,
		nullableID(mediaID), nullable(key), value,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	return nil
}

func (s *SQLiteDB) CreateMediaMetadata(ctx context.Context, mediaID int64, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media_metadata (media_id, key, value) VALUES (?, ?, ?)`,
		nullableID(mediaID), nullable(key), value,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	return nil
}

// DeleteMediaMetadata removes one (media, key) row. Deleting a key that does
// not exist is not an error.
func (s *SQLiteDB) DeleteMediaMetadata(ctx context.Context, mediaID int64, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM media_metadata WHERE media_id = ? AND key = ?`, mediaID, key)
	if err != nil {
		return fmt.Errorf("delete media metadata: %w", err)
	}
	return nil
}

func (s *SQLiteDB) DeleteAllMediaMetadata(ctx context.Context, mediaID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM media_metadata WHERE media_id = ?`, mediaID)
	if err != nil {
		return fmt.Errorf("delete media metadata: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Blob collection metadata
// ---------------------------------------------------------------------------

func (s *SQLiteDB) GetCollectionMetadata(ctx context.Context, collectionID int64) (map[string]any, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, `
		SELECT meta FROM collection_metadata WHERE collection_id = ?`, collectionID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get collection metadata: %w", err)
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(blob), &meta); err != nil {
		return nil, fmt.Errorf("unmarshal collection metadata: %w", err)
	}
	return meta, nil
}

func (s *SQLiteDB) SetCollectionMetadata(ctx context.Context, collectionID int64, meta map[string]any) error {
	blob, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal collection metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO collection_metadata (collection_id, meta) VALUES (?, ?)
		ON CONFLICT (collection_id) DO UPDATE SET meta = excluded.meta`,
		collectionID, string(blob),
	)
	if err != nil {
		return mapConstraintError(err)
	}
	return nil
}

func (s *SQLiteDB) CountCollectionMetadata(ctx context.Context, collectionID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM collection_metadata WHERE collection_id = ?`, collectionID).Scan(&count)
	return count, err
}
