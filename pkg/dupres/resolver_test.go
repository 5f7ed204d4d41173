package dupres

import (
	"testing"
	"time"

	"github.com/aerospike-community/dupres/pkg/dupres/core"
	"github.com/aerospike-community/dupres/pkg/dupres/definition"
	"github.com/aerospike-community/dupres/pkg/dupres/types"
	"github.com/aerospike-community/dupres/pkg/dupres/wire"
)

type loopbackFabric struct {
	resolver *Resolver
	self     types.PeerID
}

func (f *loopbackFabric) SendRequest(peer types.PeerID, msg *wire.Message) error {
	go func() {
		ack := f.resolver.HandleRequest(f.self, msg)
		if ack != nil {
			f.resolver.HandleAck(peer, ack)
		}
	}()
	return nil
}

func (f *loopbackFabric) SendAck(types.PeerID, *wire.Message) error { return nil }

type staticReservation struct{ peers []types.PeerID }

func (staticReservation) Release()                          {}
func (r staticReservation) Duplicates() []types.PeerID       { return r.peers }

type staticReservationManager struct{ peers []types.PeerID }

func (m staticReservationManager) Reserve(types.Digest) (types.Reservation, error) {
	return staticReservation{m.peers}, nil
}

type fakeEnqueuerFacade struct{}

func (fakeEnqueuerFacade) Enqueue(*core.TxDescriptor) {}

func TestResolverEndToEndSinglePeerWins(t *testing.T) {
	storage := definition.NewDefaultStorage()
	digest := types.Digest{42}
	storage.Put(digest, types.RecordDescriptor{Meta: types.RecordMeta{Generation: 9, LastUpdateTime: 500}, Pickle: []byte("winner")})

	cfg := types.DefaultConfiguration("test-ns", 1, definition.NewDefaultLogger())
	cfg.RetryInterval = time.Hour
	cfg.Deadline = time.Hour

	r := NewResolver(cfg, Dependencies{
		Storage:      storage,
		Installer:    storage,
		Reservations: staticReservationManager{peers: []types.PeerID{"peer-a"}},
		Enqueuer:     fakeEnqueuerFacade{},
	})
	defer r.Shutdown()
	r.fabric = &loopbackFabric{resolver: r, self: "peer-a"}
	r.coordinator.Fabric = r.fabric

	tx := &core.TxDescriptor{
		NamespaceID:     1,
		NamespaceName:   "test-ns",
		Digest:          digest,
		TID:             1,
		Policy:          types.PolicyGenerationThenLUT,
		ProtocolVersion: types.LatestProtocolVersion,
		Reservation:     staticReservation{peers: []types.PeerID{"peer-a"}},
		ClientHandle:    make(chan types.ResultCode, 1),
	}
	done := tx.ClientHandle.(chan types.ResultCode)

	if err := r.Start(tx, func(e *core.Entry) bool { done <- e.ResultCode; return true }, func(*core.Entry) {}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case result := <-done:
		if result != types.OK {
			t.Errorf("result = %v, want OK", result)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("resolution never completed")
	}
}
