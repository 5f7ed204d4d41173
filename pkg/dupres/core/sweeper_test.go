package core

import (
	"testing"
	"time"

	"github.com/aerospike-community/dupres/pkg/dupres/definition"
	"github.com/aerospike-community/dupres/pkg/dupres/types"
)

func TestSweeperRetransmitsOutstandingPeers(t *testing.T) {
	table := NewShardedTable(4)
	fabric := &fakeFabric{}
	sweeper := NewSweeper(table, fabric, time.Hour, syncInvoker{}, definition.NewDefaultLogger(), nil)

	digest := types.Digest{1}
	entry := &Entry{NamespaceID: 1, Digest: digest, TID: 1, DestNodes: []types.PeerID{"a", "b"}, DestComplete: []bool{false, true}}
	entry.RequestMsg = reqMessage(1, digest, 1)
	entry.IsSetUp = true
	entry.XmitAt = time.Now().Add(-time.Minute)
	entry.EndTime = time.Now().Add(time.Hour)
	entry.RetryInterval = time.Minute
	table.Insert(entry)

	sweeper.sweep()

	fabric.mu.Lock()
	defer fabric.mu.Unlock()
	if len(fabric.sent) != 1 || fabric.sent[0].peer != "a" {
		t.Fatalf("sent = %+v, want one retransmit to peer a", fabric.sent)
	}
}

func TestSweeperTimesOutAndInvokesCallback(t *testing.T) {
	table := NewShardedTable(4)
	fabric := &fakeFabric{}
	sweeper := NewSweeper(table, fabric, time.Hour, syncInvoker{}, definition.NewDefaultLogger(), nil)

	digest := types.Digest{2}
	entry := &Entry{NamespaceID: 1, Digest: digest, TID: 1, DestNodes: []types.PeerID{"a"}, DestComplete: []bool{false}}
	entry.RequestMsg = reqMessage(1, digest, 1)
	entry.IsSetUp = true
	entry.From = make(chan struct{})
	entry.EndTime = time.Now().Add(-time.Minute)

	fired := make(chan struct{}, 1)
	entry.OnTimeout = func(*Entry) { fired <- struct{}{} }
	table.Insert(entry)

	sweeper.sweep()

	select {
	case <-fired:
	default:
		t.Fatal("OnTimeout was not invoked")
	}
	if !entry.Complete {
		t.Error("entry should be marked complete after timeout")
	}
	if _, release := table.Lookup(entry.Key()); release != nil {
		t.Error("entry should be removed from the table after timeout")
	}
}

func TestSweeperSkipsCompletedAndUnpublishedEntries(t *testing.T) {
	table := NewShardedTable(4)
	fabric := &fakeFabric{}
	sweeper := NewSweeper(table, fabric, time.Hour, syncInvoker{}, definition.NewDefaultLogger(), nil)

	digest := types.Digest{3}
	entry := &Entry{NamespaceID: 1, Digest: digest, IsSetUp: false}
	entry.EndTime = time.Now().Add(-time.Minute)
	table.Insert(entry)

	sweeper.sweep()

	fabric.mu.Lock()
	defer fabric.mu.Unlock()
	if len(fabric.sent) != 0 {
		t.Error("an entry that was never published (IsSetUp false) must not be touched")
	}
	if entry.Complete {
		t.Error("an unpublished entry must not be marked complete")
	}
}
