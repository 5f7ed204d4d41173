package core

import (
	"sync"
	"time"

	"github.com/aerospike-community/dupres/pkg/dupres/types"
	"github.com/aerospike-community/dupres/pkg/dupres/wire"
)

// CompleteFunc is invoked exactly once, with the entry's lock still
// held by HandleAck, when a transaction reaches a terminal outcome via
// acks.
// Its return value says whether the entry should be removed from the
// table (true for terminal outcomes; false when the entry has moved
// into a follow-on phase, e.g. a replica write, that must stay
// discoverable under the same key).
type CompleteFunc func(e *Entry) (removeFromTable bool)

// TimeoutFunc is invoked exactly once by the sweeper when an entry's
// deadline passes before every peer has acked.
type TimeoutFunc func(e *Entry)

// Origin records which kind of client handle From holds, so a
// follow-on phase knows how to interpret it without a type switch at
// every call site.
type Origin uint8

const (
	OriginClient Origin = iota
	OriginInternal
)

// Entry is the per-transaction record in the in-flight table (the
// spec's "rw-request"). All of its mutable fields below the embedded
// mutex are guarded by that mutex and are only to be touched while
// holding it; HandleAck and the sweeper hold it across whole
// multi-step transitions to preserve the entry's invariants.
type Entry struct {
	// Identity. Immutable after construction.
	NamespaceID types.NamespaceID
	Digest      types.Digest
	TID         types.TID
	Policy      types.Policy

	mu sync.Mutex

	// Origin/From: where the final result is delivered. From is
	// cleared (set to nil) by the sweeper when it times the entry out
	// and by HandleAck when it restarts the transaction. HandleAck
	// re-checks it after winner application and skips the callback if
	// it is nil; the sweeper skips entries already marked Complete.
	Origin Origin
	From   interface{}

	// Reservation is released exactly once, on destroy.
	Reservation types.Reservation
	released    bool

	// DestNodes/DestComplete: the peers to hear from and a per-peer
	// completion flag. DestComplete[i] transitions false->true exactly
	// once.
	DestNodes    []types.PeerID
	DestComplete []bool

	// RequestMsg is the template the sweeper re-sends to outstanding
	// peers on each retransmit.
	RequestMsg *wire.Message

	// BestAck is non-nil iff at least one successful ack has been
	// accepted; it owns exactly one (Clone'd) message buffer.
	BestAck  *wire.Message
	haveBest bool

	// ResultCode is set once completion decides the terminal outcome.
	ResultCode types.ResultCode

	// Complete is the terminal flag. Once true, no further state
	// transitions occur.
	Complete bool
	IsSetUp  bool

	OnComplete CompleteFunc
	OnTimeout  TimeoutFunc

	XmitAt        time.Time
	RetryInterval time.Duration
	EndTime       time.Time
}

// NewEntry builds a bare entry from a transaction descriptor's
// identity fields. It owns nothing transferable yet; SetupEntry does
// that move.
func NewEntry(tx *TxDescriptor) *Entry {
	return &Entry{
		NamespaceID: tx.NamespaceID,
		Digest:      tx.Digest,
		TID:         tx.TID,
		Policy:      tx.Policy,
	}
}

// Key returns the table key this entry is stored under.
func (e *Entry) Key() types.Key {
	return types.Key{Namespace: e.NamespaceID, Digest: e.Digest}
}

// Lock acquires the entry's mutex. The coordinator and the sweeper
// hold it across the
// multi-step transitions the spec requires (e.g. incorporate-candidate
// + completion-check in HandleAck).
func (e *Entry) Lock()   { e.mu.Lock() }
func (e *Entry) Unlock() { e.mu.Unlock() }

// indexOfDest returns the index of peer in DestNodes, or -1.
func (e *Entry) indexOfDest(peer types.PeerID) int {
	for i, p := range e.DestNodes {
		if p == peer {
			return i
		}
	}
	return -1
}

// allComplete reports whether every destination has acked.
func (e *Entry) allComplete() bool {
	for _, done := range e.DestComplete {
		if !done {
			return false
		}
	}
	return true
}

// release gives back the partition reservation exactly once. Safe to
// call multiple times; only the first call does anything.
func (e *Entry) release() {
	if e.released {
		return
	}
	e.released = true
	if e.Reservation != nil {
		e.Reservation.Release()
	}
}
