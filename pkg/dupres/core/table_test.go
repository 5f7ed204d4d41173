package core

import (
	"testing"

	"github.com/aerospike-community/dupres/pkg/dupres/types"
)

func testKey(n byte) types.Key {
	var d types.Digest
	d[0] = n
	return types.Key{Namespace: 1, Digest: d}
}

func TestShardedTableInsertLookupRemove(t *testing.T) {
	table := NewShardedTable(4)
	e := &Entry{NamespaceID: 1, Digest: testKey(1).Digest}

	if !table.Insert(e) {
		t.Fatal("first insert should succeed")
	}
	if table.Insert(e) {
		t.Fatal("second insert of the same key should fail")
	}

	got, release := table.Lookup(e.Key())
	if got != e {
		t.Fatalf("Lookup returned %v, want %v", got, e)
	}
	release()

	table.Remove(e.Key())
	got, release = table.Lookup(e.Key())
	if got != nil {
		t.Fatalf("Lookup after Remove returned %v, want nil", got)
	}
}

func TestShardedTableLookupMiss(t *testing.T) {
	table := NewShardedTable(4)
	got, release := table.Lookup(testKey(9))
	if got != nil || release != nil {
		t.Fatalf("Lookup for absent key = (%v, %v), want (nil, nil)", got, release)
	}
}

func TestShardedTableSnapshot(t *testing.T) {
	table := NewShardedTable(4)
	for i := byte(0); i < 5; i++ {
		e := &Entry{NamespaceID: 1, Digest: testKey(i).Digest}
		if !table.Insert(e) {
			t.Fatalf("insert %d failed", i)
		}
	}

	refs := table.Snapshot()
	if len(refs) != 5 {
		t.Fatalf("Snapshot returned %d entries, want 5", len(refs))
	}
	for _, ref := range refs {
		ref.Release()
	}
}

func TestShardedTableReleaseIsIdempotent(t *testing.T) {
	table := NewShardedTable(4)
	e := &Entry{NamespaceID: 1, Digest: testKey(1).Digest}
	table.Insert(e)

	_, release := table.Lookup(e.Key())
	release()
	release() // must not panic or double-decrement visibly
}
