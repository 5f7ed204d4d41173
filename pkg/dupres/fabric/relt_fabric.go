// Package fabric provides the concrete cross-node transport used
// outside of tests. It is grounded on the teacher's
// core.ReliableTransport, swapping the teacher's generic JSON-encoded
// types.Message for this module's binary wire.Message and routing
// DUP_REQ/DUP_ACK by peer instead of broadcasting to a partition group.
package fabric

import (
	"context"
	"time"

	"github.com/aerospike-community/dupres/pkg/dupres/core"
	"github.com/aerospike-community/dupres/pkg/dupres/types"
	"github.com/aerospike-community/dupres/pkg/dupres/wire"
	"github.com/jabolina/relt/pkg/relt"
	promlog "github.com/prometheus/common/log"
)

// Handler receives the inbound messages the ReltFabric decodes. The
// fabric inspects each message's Op and calls HandleRequest for a
// DUP_REQ (sending back any returned ack) or HandleAck for a DUP_ACK.
type Handler interface {
	HandleRequest(peer types.PeerID, msg *wire.Message) *wire.Message
	HandleAck(peer types.PeerID, msg *wire.Message)
}

// ReltFabric implements core.Fabric on top of relt's reliable group
// transport, the same library the teacher depends on directly.
type ReltFabric struct {
	log types.Logger

	relt *relt.Relt

	context context.Context
	finish  context.CancelFunc

	handler Handler
}

// NewReltFabric starts a relt instance named name, joining the group
// identified by partition. Inbound messages are decoded and
// dispatched to handler as they arrive.
func NewReltFabric(name, partition string, handler Handler, logger types.Logger) (*ReltFabric, error) {
	conf := relt.DefaultReltConfiguration()
	conf.Name = name
	conf.Exchange = relt.GroupAddress(partition)
	r, err := relt.NewRelt(*conf)
	if err != nil {
		return nil, err
	}

	ctx, done := context.WithCancel(context.Background())
	f := &ReltFabric{
		log:     logger,
		relt:    r,
		context: ctx,
		finish:  done,
		handler: handler,
	}
	core.InvokerInstance().Spawn(f.poll)
	return f, nil
}

func (f *ReltFabric) send(peer types.PeerID, msg *wire.Message) error {
	data, err := wire.Encode(msg)
	if err != nil {
		return err
	}
	return f.relt.Broadcast(f.context, relt.Send{
		Address: relt.GroupAddress(peer),
		Data:    data,
	})
}

// SendRequest implements core.Fabric.
func (f *ReltFabric) SendRequest(peer types.PeerID, msg *wire.Message) error {
	return f.send(peer, msg)
}

// SendAck implements core.Fabric.
func (f *ReltFabric) SendAck(peer types.PeerID, msg *wire.Message) error {
	return f.send(peer, msg)
}

// Close stops the fabric for sending and receiving.
func (f *ReltFabric) Close() {
	f.finish()
	if err := f.relt.Close(); err != nil {
		f.log.Errorf("failed stopping fabric: %v", err)
	}
}

func (f *ReltFabric) poll() {
	listener, err := f.relt.Consume()
	if err != nil {
		promlog.Errorf("fabric consume failed: %v", err)
		return
	}
	for {
		select {
		case <-f.context.Done():
			return
		case recv, ok := <-listener:
			if !ok {
				return
			}
			f.consume(types.PeerID(recv.Origin), recv.Data, recv.Error)
		}
	}
}

func (f *ReltFabric) consume(origin types.PeerID, data []byte, recvErr error) {
	if recvErr != nil {
		f.log.Errorf("failed consuming message from %s: %v", origin, recvErr)
		return
	}
	if len(data) == 0 {
		f.log.Warnf("received empty message from %s", origin)
		return
	}

	msg, err := wire.Decode(data)
	if err != nil {
		f.log.Errorf("failed decoding message from %s: %v", origin, err)
		return
	}

	timeout, cancel := context.WithTimeout(f.context, 250*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	core.InvokerInstance().Spawn(func() {
		defer close(done)
		switch msg.Op() {
		case wire.OpDupReq:
			if ack := f.handler.HandleRequest(origin, msg); ack != nil {
				if err := f.SendAck(origin, ack); err != nil {
					f.log.Errorf("failed sending ack to %s: %v", origin, err)
				}
			}
		case wire.OpDupAck:
			f.handler.HandleAck(origin, msg)
		default:
			f.log.Warnf("unknown op %v from %s", msg.Op(), origin)
		}
	})

	select {
	case <-timeout.Done():
		f.log.Warnf("dispatching message from %s timed out", origin)
	case <-done:
	}
}
