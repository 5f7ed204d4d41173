package core

import (
	"github.com/aerospike-community/dupres/pkg/dupres/types"
	"github.com/aerospike-community/dupres/pkg/dupres/wire"
)

// Fabric is the cross-node message transport. It is an external
// collaborator (§1, Out of scope); the core only needs to send a
// message to a peer and get told about inbound ones. The concrete
// implementation in pkg/dupres/fabric backs this with relt.
type Fabric interface {
	// SendRequest ships a DUP_REQ to peer. Fire-and-forget: the
	// fabric owns retry/backoff for the send itself, the sweeper (see
	// sweeper.go) owns retrying at the duplicate-resolution level.
	SendRequest(peer types.PeerID, msg *wire.Message) error

	// SendAck ships a DUP_ACK back to peer.
	SendAck(peer types.PeerID, msg *wire.Message) error
}
