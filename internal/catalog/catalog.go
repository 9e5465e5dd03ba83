// Package catalog loads and saves atlas index documents: ordered mappings
// from sprite key to positioned region, plus atlas-wide metadata. The JSON
// files are the source of truth for every other subsystem; saves are atomic
// so an interrupted run never tears an index.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"atlastag/internal/fileutil"
)

var (
	// ErrNotFound reports a missing index file; callers decide the fallback.
	ErrNotFound = errors.New("catalog not found")
	// ErrDecode reports a present but malformed index file.
	ErrDecode = errors.New("catalog decode error")
)

// Sprite is one indexed atlas region awaiting or holding enrichment.
type Sprite struct {
	Row         int
	Col         int
	TilesX      int
	TilesY      int
	Description string
	Tags        []string
	TileType    string

	// Extra preserves fields this tool does not understand so they survive
	// load/save round trips.
	Extra map[string]json.RawMessage
}

// Enriched reports whether the sprite carries a description, at least one
// tag, and a tile type.
func (s *Sprite) Enriched() bool {
	if s == nil {
		return false
	}
	return s.Description != "" && len(s.Tags) > 0 && s.TileType != ""
}

// HasTag reports whether tag is present in the sprite's tag list.
func (s *Sprite) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// RemoveTag deletes tag from the sprite's tag list, reporting whether it
// was present.
func (s *Sprite) RemoveTag(tag string) bool {
	for i, t := range s.Tags {
		if t == tag {
			s.Tags = append(s.Tags[:i], s.Tags[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Sprite) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.TilesX = 1
	s.TilesY = 1
	take := func(key string, target any) error {
		value, ok := raw[key]
		if !ok {
			return nil
		}
		delete(raw, key)
		return json.Unmarshal(value, target)
	}
	if err := take("row", &s.Row); err != nil {
		return fmt.Errorf("sprite row: %w", err)
	}
	if err := take("col", &s.Col); err != nil {
		return fmt.Errorf("sprite col: %w", err)
	}
	if err := take("tiles_x", &s.TilesX); err != nil {
		return fmt.Errorf("sprite tiles_x: %w", err)
	}
	if err := take("tiles_y", &s.TilesY); err != nil {
		return fmt.Errorf("sprite tiles_y: %w", err)
	}
	if err := take("description", &s.Description); err != nil {
		return fmt.Errorf("sprite description: %w", err)
	}
	if err := take("tags", &s.Tags); err != nil {
		return fmt.Errorf("sprite tags: %w", err)
	}
	if err := take("tile_type", &s.TileType); err != nil {
		return fmt.Errorf("sprite tile_type: %w", err)
	}
	if len(raw) > 0 {
		s.Extra = raw
	}
	return nil
}

func (s *Sprite) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeField := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		encoded, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(encoded)
		return nil
	}
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	fields := []struct {
		key   string
		value any
	}{
		{"row", s.Row},
		{"col", s.Col},
		{"tiles_x", s.TilesX},
		{"tiles_y", s.TilesY},
		{"description", s.Description},
		{"tags", tags},
		{"tile_type", s.TileType},
	}
	for _, field := range fields {
		if err := writeField(field.key, field.value); err != nil {
			return nil, err
		}
	}
	extraKeys := make([]string, 0, len(s.Extra))
	for key := range s.Extra {
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)
	for _, key := range extraKeys {
		if err := writeField(key, s.Extra[key]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Catalog is the persistent collection of sprites for one atlas image.
// Sprite iteration order matches the order keys appeared in the file.
type Catalog struct {
	TileSize [2]int
	Columns  int

	order   []string
	sprites map[string]*Sprite

	// Extra preserves unrecognized top-level fields.
	Extra map[string]json.RawMessage
}

// New returns an empty catalog with the given tile geometry.
func New(tileW, tileH, columns int) *Catalog {
	return &Catalog{
		TileSize: [2]int{tileW, tileH},
		Columns:  columns,
		sprites:  map[string]*Sprite{},
	}
}

// Keys returns sprite keys in catalog order. The slice is a copy.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

// Get returns the sprite for key, or nil.
func (c *Catalog) Get(key string) *Sprite {
	return c.sprites[key]
}

// Put inserts or replaces a sprite. New keys append to catalog order.
func (c *Catalog) Put(key string, sprite *Sprite) {
	if c.sprites == nil {
		c.sprites = map[string]*Sprite{}
	}
	if _, exists := c.sprites[key]; !exists {
		c.order = append(c.order, key)
	}
	c.sprites[key] = sprite
}

// Len returns the number of sprites.
func (c *Catalog) Len() int {
	return len(c.order)
}

// EnrichedKeys returns, in catalog order, the keys of sprites that satisfy
// the completeness predicate.
func (c *Catalog) EnrichedKeys() []string {
	keys := make([]string, 0, len(c.order))
	for _, key := range c.order {
		if c.sprites[key].Enriched() {
			keys = append(keys, key)
		}
	}
	return keys
}

// UnenrichedKeys returns, in catalog order, the keys of sprites still
// missing description, tags, or tile type.
func (c *Catalog) UnenrichedKeys() []string {
	keys := make([]string, 0, len(c.order))
	for _, key := range c.order {
		if !c.sprites[key].Enriched() {
			keys = append(keys, key)
		}
	}
	return keys
}

// VerifiableKeys returns keys of sprites with at least a description and a
// tile type. Tags may be empty here: a fix pass can legitimately strip a
// sprite down to zero tags, and verify should still re-inspect it.
func (c *Catalog) VerifiableKeys() []string {
	keys := make([]string, 0, len(c.order))
	for _, key := range c.order {
		s := c.sprites[key]
		if s.Description != "" && s.TileType != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func (c *Catalog) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	take := func(key string, target any) error {
		value, ok := raw[key]
		if !ok {
			return nil
		}
		delete(raw, key)
		return json.Unmarshal(value, target)
	}
	c.TileSize = [2]int{32, 32}
	if err := take("tile_size", &c.TileSize); err != nil {
		return fmt.Errorf("tile_size: %w", err)
	}
	if err := take("columns", &c.Columns); err != nil {
		return fmt.Errorf("columns: %w", err)
	}

	c.order = nil
	c.sprites = map[string]*Sprite{}
	if spritesRaw, ok := raw["sprites"]; ok {
		delete(raw, "sprites")
		if err := c.decodeSprites(spritesRaw); err != nil {
			return err
		}
	}
	if len(raw) > 0 {
		c.Extra = raw
	}
	return nil
}

// decodeSprites walks the sprites object token by token so the original key
// order survives the round trip.
func (c *Catalog) decodeSprites(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("sprites: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("sprites: expected object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("sprites: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return errors.New("sprites: expected string key")
		}
		var sprite Sprite
		if err := dec.Decode(&sprite); err != nil {
			return fmt.Errorf("sprite %q: %w", key, err)
		}
		if _, dup := c.sprites[key]; dup {
			return fmt.Errorf("sprites: duplicate key %q", key)
		}
		c.order = append(c.order, key)
		c.sprites[key] = &sprite
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("sprites: %w", err)
	}
	return nil
}

func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeRaw := func(key string, raw []byte) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(raw)
		return nil
	}
	writeField := func(key string, value any) error {
		encoded, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return writeRaw(key, encoded)
	}

	if err := writeField("tile_size", c.TileSize); err != nil {
		return nil, err
	}
	if err := writeField("columns", c.Columns); err != nil {
		return nil, err
	}

	var sprites bytes.Buffer
	sprites.WriteByte('{')
	for i, key := range c.order {
		if i > 0 {
			sprites.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		sprites.Write(encodedKey)
		sprites.WriteByte(':')
		encoded, err := json.Marshal(c.sprites[key])
		if err != nil {
			return nil, err
		}
		sprites.Write(encoded)
	}
	sprites.WriteByte('}')
	if err := writeRaw("sprites", sprites.Bytes()); err != nil {
		return nil, err
	}

	extraKeys := make([]string, 0, len(c.Extra))
	for key := range c.Extra {
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)
	for _, key := range extraKeys {
		if err := writeRaw(key, c.Extra[key]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Load reads and decodes an index file. A missing file maps to ErrNotFound,
// malformed content to ErrDecode.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	return &cat, nil
}

// Save encodes the catalog with stable formatting and writes it atomically:
// the file on disk is either the previous version or the complete new one.
func Save(cat *Catalog, path string) error {
	data, err := Encode(cat)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("save catalog %s: %w", path, err)
	}
	return nil
}

// Encode renders the catalog exactly as Save would write it.
func Encode(cat *Catalog) ([]byte, error) {
	compact, err := json.Marshal(cat)
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	var indented bytes.Buffer
	if err := json.Indent(&indented, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indent catalog: %w", err)
	}
	indented.WriteByte('\n')
	return indented.Bytes(), nil
}

// Backup copies the index at path to a sibling file named
// <stem>.<timestamp>.bak.json and returns the backup path. Fix passes call
// this before the first write so the pre-fix state stays recoverable.
func Backup(path string) (string, error) {
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	backup := fmt.Sprintf("%s.%s.bak.json", stem, time.Now().Format("20060102-150405"))
	if err := fileutil.CopyFile(path, backup); err != nil {
		return "", fmt.Errorf("backup catalog %s: %w", path, err)
	}
	return backup, nil
}

// SpellKey normalizes a key to forward slashes for prefix comparisons.
func SpellKey(key string) string {
	return strings.ReplaceAll(key, "\\", "/")
}

// BaseName returns the final key segment without extension or a trailing
// variant counter (_0, _12), used to decide whether two sprites are siblings.
func BaseName(key string) string {
	norm := SpellKey(key)
	name := norm
	if idx := strings.LastIndex(norm, "/"); idx >= 0 {
		name = norm[idx+1:]
	}
	name = strings.TrimSuffix(name, ".png")
	if idx := strings.LastIndex(name, "_"); idx >= 0 && idx < len(name)-1 && isDigits(name[idx+1:]) {
		name = name[:idx]
	}
	return name
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
