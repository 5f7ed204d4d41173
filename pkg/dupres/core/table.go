package core

import (
	"sync"
	"sync/atomic"

	"github.com/aerospike-community/dupres/pkg/dupres/types"
)

// InFlightTable is the in-memory table of in-flight transactions keyed
// by namespace+digest. It is treated as an external collaborator with
// its own internal locking (§1, §9 "avoid hidden singletons" — it is
// always passed in explicitly, never reached through a global), but
// this package ships one concrete, sharded implementation so the
// coordinator and responder are exercisable end to end.
type InFlightTable interface {
	// Insert adds e under its Key. Returns false if an entry already
	// exists for that key (the pipeline is expected to replace it
	// itself via Remove+Insert, not rely on Insert to do so).
	Insert(e *Entry) bool

	// Lookup returns the entry for key with its reference count
	// incremented, plus a release func the caller must invoke exactly
	// once when done. Returns (nil, nil) if no entry is present.
	Lookup(key types.Key) (entry *Entry, release func())

	// Remove drops key from the table. It does not itself release any
	// outstanding references; those still drain through their release
	// funcs.
	Remove(key types.Key)

	// Snapshot returns every currently-live entry, for the sweeper to
	// scan. Each returned entry's reference count is incremented; the
	// sweeper must call the paired release func when done with it.
	Snapshot() []EntryRef
}

// EntryRef pairs an entry with the release func for the reference the
// table handed out.
type EntryRef struct {
	Entry   *Entry
	Release func()
}

type refEntry struct {
	entry *Entry
	refs  int32
}

type shard struct {
	mu sync.Mutex
	m  map[types.Key]*refEntry
}

// ShardedTable is a lock-per-shard InFlightTable. Sharding by digest
// keeps a single hot key's lock from serializing unrelated
// transactions, the same motivation a production KV-store's in-flight
// table has for sharding its own lock.
type ShardedTable struct {
	shards []shard
}

// NewShardedTable returns a table with shardCount shards. shardCount
// is rounded up to the next power of two.
func NewShardedTable(shardCount int) *ShardedTable {
	n := 1
	for n < shardCount {
		n <<= 1
	}
	t := &ShardedTable{shards: make([]shard, n)}
	for i := range t.shards {
		t.shards[i].m = make(map[types.Key]*refEntry)
	}
	return t
}

func (t *ShardedTable) shardFor(key types.Key) *shard {
	var h uint32
	for _, b := range key.Digest {
		h = h*31 + uint32(b)
	}
	h = h*31 + uint32(key.Namespace)
	return &t.shards[h&uint32(len(t.shards)-1)]
}

func (t *ShardedTable) Insert(e *Entry) bool {
	s := t.shardFor(e.Key())
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.m[e.Key()]; exists {
		return false
	}
	s.m[e.Key()] = &refEntry{entry: e, refs: 1}
	return true
}

func (t *ShardedTable) Lookup(key types.Key) (*Entry, func()) {
	s := t.shardFor(key)
	s.mu.Lock()
	re, ok := s.m[key]
	if !ok {
		s.mu.Unlock()
		return nil, nil
	}
	atomic.AddInt32(&re.refs, 1)
	s.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			atomic.AddInt32(&re.refs, -1)
		})
	}
	return re.entry, release
}

func (t *ShardedTable) Remove(key types.Key) {
	s := t.shardFor(key)
	s.mu.Lock()
	re, ok := s.m[key]
	if ok {
		delete(s.m, key)
	}
	s.mu.Unlock()
	if ok {
		atomic.AddInt32(&re.refs, -1)
	}
}

func (t *ShardedTable) Snapshot() []EntryRef {
	var out []EntryRef
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		for _, re := range s.m {
			atomic.AddInt32(&re.refs, 1)
			re := re
			var once sync.Once
			out = append(out, EntryRef{
				Entry: re.entry,
				Release: func() {
					once.Do(func() {
						atomic.AddInt32(&re.refs, -1)
					})
				},
			})
		}
		s.mu.Unlock()
	}
	return out
}
