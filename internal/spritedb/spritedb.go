// Package spritedb maintains a SQLite search database derived from the JSON
// atlas indexes. The JSON files stay the source of truth; the database is a
// cache that can be dropped and rebuilt at any time. Full-text search runs
// on an FTS5 table kept in sync by triggers.
package spritedb

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"atlastag/internal/catalog"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS atlases (
    id INTEGER PRIMARY KEY,
    name TEXT UNIQUE NOT NULL,
    index_path TEXT NOT NULL,
    atlas_image TEXT
);

CREATE TABLE IF NOT EXISTS tile_types (
    id INTEGER PRIMARY KEY,
    name TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS sprites (
    id INTEGER PRIMARY KEY,
    atlas_id INTEGER NOT NULL REFERENCES atlases(id),
    key TEXT NOT NULL,
    row INTEGER NOT NULL,
    col INTEGER NOT NULL,
    tiles_x INTEGER NOT NULL DEFAULT 1,
    tiles_y INTEGER NOT NULL DEFAULT 1,
    description TEXT,
    tile_type_id INTEGER REFERENCES tile_types(id),
    UNIQUE(atlas_id, key)
);

CREATE TABLE IF NOT EXISTS tags (
    sprite_id INTEGER NOT NULL REFERENCES sprites(id),
    tag TEXT NOT NULL,
    PRIMARY KEY (sprite_id, tag)
);

CREATE VIRTUAL TABLE IF NOT EXISTS sprites_fts USING fts5(
    key,
    description,
    content='sprites',
    content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS sprites_ai AFTER INSERT ON sprites BEGIN
    INSERT INTO sprites_fts(rowid, key, description) VALUES (new.id, new.key, new.description);
END;

CREATE TRIGGER IF NOT EXISTS sprites_ad AFTER DELETE ON sprites BEGIN
    INSERT INTO sprites_fts(sprites_fts, rowid, key, description) VALUES ('delete', old.id, old.key, old.description);
END;

CREATE TRIGGER IF NOT EXISTS sprites_au AFTER UPDATE ON sprites BEGIN
    INSERT INTO sprites_fts(sprites_fts, rowid, key, description) VALUES ('delete', old.id, old.key, old.description);
    INSERT INTO sprites_fts(rowid, key, description) VALUES (new.id, new.key, new.description);
END;

CREATE VIEW IF NOT EXISTS sprite_search AS
SELECT s.id, a.name AS atlas, s.key, tt.name AS tile_type,
       s.description, GROUP_CONCAT(t.tag) AS tags
FROM sprites s
JOIN atlases a ON a.id = s.atlas_id
LEFT JOIN tile_types tt ON tt.id = s.tile_type_id
LEFT JOIN tags t ON t.sprite_id = s.id
GROUP BY s.id;

CREATE INDEX IF NOT EXISTS idx_sprites_tile_type ON sprites(tile_type_id);
CREATE INDEX IF NOT EXISTS idx_sprites_key ON sprites(key);
CREATE INDEX IF NOT EXISTS idx_tags_tag ON tags(tag);
`

// DB wraps the sprite search database.
type DB struct {
	conn *sql.DB
}

// Open creates or opens the database at path and ensures the schema exists.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sprite db %s: %w", path, err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close releases the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// ImportCatalog replaces the named atlas's rows with the catalog's sprites.
// Returns the number of sprites imported.
func (db *DB) ImportCatalog(name, indexPath, atlasImage string, cat *catalog.Catalog) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	atlasID, err := upsertAtlas(tx, name, indexPath, atlasImage)
	if err != nil {
		return 0, err
	}
	if err := clearAtlasSprites(tx, atlasID); err != nil {
		return 0, err
	}

	tileTypes := map[string]int64{}
	count := 0
	for _, key := range cat.Keys() {
		sprite := cat.Get(key)

		var tileTypeID any
		if sprite.TileType != "" {
			id, ok := tileTypes[sprite.TileType]
			if !ok {
				id, err = getOrCreateTileType(tx, sprite.TileType)
				if err != nil {
					return 0, err
				}
				tileTypes[sprite.TileType] = id
			}
			tileTypeID = id
		}

		res, err := tx.Exec(
			`INSERT INTO sprites (atlas_id, key, row, col, tiles_x, tiles_y, description, tile_type_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			atlasID, key, sprite.Row, sprite.Col, sprite.TilesX, sprite.TilesY,
			nullable(sprite.Description), tileTypeID)
		if err != nil {
			return 0, fmt.Errorf("insert sprite %q: %w", key, err)
		}
		spriteID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("sprite id for %q: %w", key, err)
		}
		for _, tag := range sprite.Tags {
			if _, err := tx.Exec(
				"INSERT OR IGNORE INTO tags (sprite_id, tag) VALUES (?, ?)", spriteID, tag); err != nil {
				return 0, fmt.Errorf("insert tag %q for %q: %w", tag, key, err)
			}
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return count, nil
}

// Clear drops all rows and resets the FTS index. Used before a full rebuild.
func (db *DB) Clear() error {
	stmts := []string{
		"DELETE FROM tags",
		"DELETE FROM sprites",
		"DELETE FROM atlases",
		"DELETE FROM tile_types",
		"INSERT INTO sprites_fts(sprites_fts) VALUES('rebuild')",
	}
	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("clear sprite db: %w", err)
		}
	}
	return nil
}

func upsertAtlas(tx *sql.Tx, name, indexPath, atlasImage string) (int64, error) {
	var id int64
	err := tx.QueryRow("SELECT id FROM atlases WHERE name = ?", name).Scan(&id)
	switch {
	case err == nil:
		if _, err := tx.Exec(
			"UPDATE atlases SET index_path = ?, atlas_image = ? WHERE id = ?",
			indexPath, nullable(atlasImage), id); err != nil {
			return 0, fmt.Errorf("update atlas %q: %w", name, err)
		}
		return id, nil
	case err == sql.ErrNoRows:
		res, err := tx.Exec(
			"INSERT INTO atlases (name, index_path, atlas_image) VALUES (?, ?, ?)",
			name, indexPath, nullable(atlasImage))
		if err != nil {
			return 0, fmt.Errorf("insert atlas %q: %w", name, err)
		}
		return res.LastInsertId()
	default:
		return 0, fmt.Errorf("lookup atlas %q: %w", name, err)
	}
}

func getOrCreateTileType(tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow("SELECT id FROM tile_types WHERE name = ?", name).Scan(&id)
	switch {
	case err == nil:
		return id, nil
	case err == sql.ErrNoRows:
		res, err := tx.Exec("INSERT INTO tile_types (name) VALUES (?)", name)
		if err != nil {
			return 0, fmt.Errorf("insert tile type %q: %w", name, err)
		}
		return res.LastInsertId()
	default:
		return 0, fmt.Errorf("lookup tile type %q: %w", name, err)
	}
}

func clearAtlasSprites(tx *sql.Tx, atlasID int64) error {
	if _, err := tx.Exec(
		"DELETE FROM tags WHERE sprite_id IN (SELECT id FROM sprites WHERE atlas_id = ?)", atlasID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM sprites WHERE atlas_id = ?", atlasID); err != nil {
		return fmt.Errorf("clear sprites: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// AtlasStats is one row of the stats report.
type AtlasStats struct {
	Atlas     string
	Sprites   int
	TileTypes int
	Tags      int
}

// Stats returns per-atlas sprite, tile-type, and distinct-tag counts.
func (db *DB) Stats() ([]AtlasStats, error) {
	rows, err := db.conn.Query(`
		SELECT a.name,
		       COUNT(DISTINCT s.id) AS sprite_count,
		       COUNT(DISTINCT tt.name) AS type_count,
		       (SELECT COUNT(DISTINCT t.tag) FROM tags t
		        JOIN sprites s2 ON s2.id = t.sprite_id
		        WHERE s2.atlas_id = a.id) AS tag_count
		FROM atlases a
		LEFT JOIN sprites s ON s.atlas_id = a.id
		LEFT JOIN tile_types tt ON tt.id = s.tile_type_id
		GROUP BY a.id
		ORDER BY a.name`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats []AtlasStats
	for rows.Next() {
		var s AtlasStats
		if err := rows.Scan(&s.Atlas, &s.Sprites, &s.TileTypes, &s.Tags); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// FindOptions filter a search. All set filters must match; Tags requires
// every listed tag.
type FindOptions struct {
	Tags     []string
	TileType string
	Atlas    string
	Limit    int
}

// SearchResult is one search hit.
type SearchResult struct {
	Atlas       string
	Key         string
	TileType    string
	Description string
	Tags        []string
}

// Find combines FTS5 text search with structured filters. An empty query
// applies the filters alone, ordered by key instead of rank.
func (db *DB) Find(query string, opts FindOptions) ([]SearchResult, error) {
	var conditions []string
	var params []any

	useFTS := strings.TrimSpace(query) != ""
	if useFTS {
		conditions = append(conditions, "sprites_fts MATCH ?")
		params = append(params, query)
	}
	for _, tag := range opts.Tags {
		conditions = append(conditions, "s.id IN (SELECT sprite_id FROM tags WHERE tag = ?)")
		params = append(params, tag)
	}
	if opts.TileType != "" {
		conditions = append(conditions, "tt.name = ?")
		params = append(params, opts.TileType)
	}
	if opts.Atlas != "" {
		conditions = append(conditions, "a.name = ?")
		params = append(params, opts.Atlas)
	}

	where := "1=1"
	if len(conditions) > 0 {
		where = strings.Join(conditions, " AND ")
	}
	ftsJoin := ""
	order := "ORDER BY s.key"
	if useFTS {
		ftsJoin = "JOIN sprites_fts f ON f.rowid = s.id"
		order = "ORDER BY rank"
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	sqlText := fmt.Sprintf(`
		SELECT a.name, s.key, COALESCE(tt.name, ''), COALESCE(s.description, ''), COALESCE(GROUP_CONCAT(t.tag), '')
		FROM sprites s
		%s
		JOIN atlases a ON a.id = s.atlas_id
		LEFT JOIN tile_types tt ON tt.id = s.tile_type_id
		LEFT JOIN tags t ON t.sprite_id = s.id
		WHERE %s
		GROUP BY s.id
		%s
		LIMIT ?`, ftsJoin, where, order)
	params = append(params, limit)

	rows, err := db.conn.Query(sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("query find: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var tags string
		if err := rows.Scan(&r.Atlas, &r.Key, &r.TileType, &r.Description, &tags); err != nil {
			return nil, fmt.Errorf("scan find: %w", err)
		}
		if tags != "" {
			r.Tags = strings.Split(tags, ",")
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
