package fabric

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aerospike-community/dupres/pkg/dupres/definition"
	"github.com/aerospike-community/dupres/pkg/dupres/types"
	"github.com/aerospike-community/dupres/pkg/dupres/wire"
	"go.uber.org/goleak"
)

type fakeHandler struct {
	mu       sync.Mutex
	requests []types.PeerID
	acks     []types.PeerID
	ackReply *wire.Message
}

func (h *fakeHandler) HandleRequest(peer types.PeerID, _ *wire.Message) *wire.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, peer)
	return h.ackReply
}

func (h *fakeHandler) HandleAck(peer types.PeerID, _ *wire.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.acks = append(h.acks, peer)
}

func newBareFabric(handler Handler) *ReltFabric {
	ctx, cancel := context.WithCancel(context.Background())
	return &ReltFabric{
		log:     definition.NewDefaultLogger(),
		context: ctx,
		finish:  cancel,
		handler: handler,
	}
}

func TestConsumeDispatchesRequestToHandler(t *testing.T) {
	defer goleak.VerifyNone(t)

	handler := &fakeHandler{}
	f := newBareFabric(handler)
	defer f.finish()

	req := wire.New(wire.OpDupReq)
	req.SetNSID(1)
	req.SetDigest(types.Digest{1})
	req.SetTID(1)
	data, err := wire.Encode(req)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	f.consume("peer-a", data, nil)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.requests) != 1 || handler.requests[0] != "peer-a" {
		t.Errorf("requests = %v, want one from peer-a", handler.requests)
	}
}

func TestConsumeDispatchesAckToHandler(t *testing.T) {
	defer goleak.VerifyNone(t)

	handler := &fakeHandler{}
	f := newBareFabric(handler)
	defer f.finish()

	ack := wire.Ack(1, types.Digest{2}, 5, types.OK)
	data, err := wire.Encode(ack)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	f.consume("peer-b", data, nil)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.acks) != 1 || handler.acks[0] != "peer-b" {
		t.Errorf("acks = %v, want one from peer-b", handler.acks)
	}
}

func TestConsumeIgnoresEmptyAndErroredDeliveries(t *testing.T) {
	defer goleak.VerifyNone(t)

	handler := &fakeHandler{}
	f := newBareFabric(handler)
	defer f.finish()

	f.consume("peer-c", nil, nil)
	f.consume("peer-c", []byte("short"), context.DeadlineExceeded)

	// Give any accidentally-spawned dispatch goroutine a moment, then
	// verify nothing reached the handler.
	time.Sleep(10 * time.Millisecond)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.requests) != 0 || len(handler.acks) != 0 {
		t.Error("malformed or errored deliveries must not reach the handler")
	}
}
