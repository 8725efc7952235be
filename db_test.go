// db_test.go -- cache identity, eviction and soft-bound properties
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package densedb

import "testing"

func TestDatabaseCacheIdentity(t *testing.T) {
	assert := newAsserter(t)

	db := tempDB(t, 1)
	defer db.Close()

	t1, err := db.Create("t1", []Field{{Name: "a", Size: 4}}, 1)
	assert(err == nil, "Create failed: %v", err)
	t1.Close()

	t2, err := db.Open("t1")
	assert(err == nil, "Open failed: %v", err)
	defer t2.Close()

	t3, err := db.Open("t1")
	assert(err == nil, "second Open failed: %v", err)
	defer t3.Close()

	assert(t2 == t3, "expected the same cached *Table, got distinct handles")
}

func TestDatabaseCacheEvictionAtMaxOpen(t *testing.T) {
	assert := newAsserter(t)

	db := tempDB(t, 1)
	defer db.Close()

	c1, err := db.Create("t1", []Field{{Name: "a", Size: 4}}, 1)
	assert(err == nil, "Create t1 failed: %v", err)
	c1.Close()
	c2, err := db.Create("t2", []Field{{Name: "a", Size: 4}}, 1)
	assert(err == nil, "Create t2 failed: %v", err)
	c2.Close()

	h1, err := db.Open("t1")
	assert(err == nil, "Open t1 failed: %v", err)
	h1.Close() // drop to refcount 0, but stays cached

	assert(len(db.tables) == 1, "expected one cached table after Create+Open+Close, got %d", len(db.tables))

	h2, err := db.Open("t2")
	assert(err == nil, "Open t2 failed: %v", err)
	defer h2.Close()

	_, stillCached := db.tables["t1"]
	assert(!stillCached, "t1 should have been evicted when t2 was opened under max_open=1")

	h1again, err := db.Open("t1")
	assert(err == nil, "re-opening t1 after eviction failed: %v", err)
	defer h1again.Close()
}

func TestDatabaseCacheDoesNotEvictReferencedEntry(t *testing.T) {
	assert := newAsserter(t)

	db := tempDB(t, 1)
	defer db.Close()

	_, err := db.Create("t1", []Field{{Name: "a", Size: 4}}, 1)
	assert(err == nil, "Create t1 failed: %v", err)
	_, err = db.Create("t2", []Field{{Name: "a", Size: 4}}, 1)
	assert(err == nil, "Create t2 failed: %v", err)

	h1, err := db.Open("t1")
	assert(err == nil, "Open t1 failed: %v", err)
	defer h1.Close()

	h2, err := db.Open("t2")
	assert(err == nil, "Open t2 failed: %v", err)
	defer h2.Close()

	// Both t1 and t2 are now referenced: the soft bound is exceeded
	// rather than evicting a still-referenced table.
	assert(len(db.tables) == 2, "expected both tables cached (soft bound exceeded), got %d", len(db.tables))
	_, ok := db.tables["t1"]
	assert(ok, "t1 should not have been evicted while still referenced")
}

func TestDatabaseCloseRejectsOutstandingReferences(t *testing.T) {
	assert := newAsserter(t)

	db := tempDB(t, 4)
	tbl, err := db.Create("t1", []Field{{Name: "a", Size: 4}}, 1)
	assert(err == nil, "Create failed: %v", err)

	err = db.Close()
	assert(err != nil, "Close should fail while a table is still referenced")

	tbl.Close()
	assert(db.Close() == nil, "Close should succeed once every handle is released")
}
