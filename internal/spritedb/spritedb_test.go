package spritedb_test

import (
	"path/filepath"
	"testing"

	"atlastag/internal/catalog"
	"atlastag/internal/spritedb"
)

func testCatalog() *catalog.Catalog {
	cat := catalog.New(32, 32, 64)
	cat.Put("item/shield_wooden.png", &catalog.Sprite{
		Row: 0, Col: 0, TilesX: 1, TilesY: 1,
		Description: "A round wooden shield with an iron boss.",
		Tags:        []string{"shield", "wood"},
		TileType:    "equipment",
	})
	cat.Put("item/shield_kite.png", &catalog.Sprite{
		Row: 0, Col: 1, TilesX: 1, TilesY: 1,
		Description: "A tall kite shield painted blue.",
		Tags:        []string{"shield", "metal"},
		TileType:    "equipment",
	})
	cat.Put("monster/wolf.png", &catalog.Sprite{
		Row: 1, Col: 0, TilesX: 1, TilesY: 1,
		Description: "A grey wolf baring its fangs.",
		Tags:        []string{"beast", "creature"},
		TileType:    "creature",
	})
	return cat
}

func openTestDB(t *testing.T) *spritedb.DB {
	t.Helper()
	db, err := spritedb.Open(filepath.Join(t.TempDir(), "sprites.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestImportAndStats(t *testing.T) {
	db := openTestDB(t)
	count, err := db.ImportCatalog("test", "assets/test_index.json", "test.png", testCatalog())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 sprites imported, got %d", count)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 1 || stats[0].Atlas != "test" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats[0].Sprites != 3 || stats[0].TileTypes != 2 || stats[0].Tags != 5 {
		t.Fatalf("unexpected counts: %+v", stats[0])
	}
}

func TestReimportReplacesAtlasRows(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.ImportCatalog("test", "a.json", "", testCatalog()); err != nil {
		t.Fatalf("first import: %v", err)
	}

	smaller := catalog.New(32, 32, 64)
	smaller.Put("item/shield_wooden.png", &catalog.Sprite{
		Row: 0, Col: 0, TilesX: 1, TilesY: 1,
		Description: "A battered round shield.",
		Tags:        []string{"shield"},
		TileType:    "equipment",
	})
	if _, err := db.ImportCatalog("test", "a.json", "", smaller); err != nil {
		t.Fatalf("second import: %v", err)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats[0].Sprites != 1 {
		t.Fatalf("reimport must replace rows, got %d sprites", stats[0].Sprites)
	}
}

func TestFindFullText(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.ImportCatalog("test", "a.json", "", testCatalog()); err != nil {
		t.Fatalf("import: %v", err)
	}

	results, err := db.Find("wooden shield", spritedb.FindOptions{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one hit for full-text query")
	}
	if results[0].Key != "item/shield_wooden.png" {
		t.Fatalf("expected wooden shield ranked first, got %q", results[0].Key)
	}
}

func TestFindStructuredFilters(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.ImportCatalog("test", "a.json", "", testCatalog()); err != nil {
		t.Fatalf("import: %v", err)
	}

	results, err := db.Find("", spritedb.FindOptions{Tags: []string{"shield", "metal"}})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(results) != 1 || results[0].Key != "item/shield_kite.png" {
		t.Fatalf("expected only the kite shield, got %+v", results)
	}

	results, err = db.Find("", spritedb.FindOptions{TileType: "creature"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(results) != 1 || results[0].Key != "monster/wolf.png" {
		t.Fatalf("expected only the wolf, got %+v", results)
	}
}

func TestClearEmptiesDatabase(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.ImportCatalog("test", "a.json", "", testCatalog()); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := db.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 0 {
		t.Fatalf("expected empty database, got %+v", stats)
	}
}
