package core

import (
	"github.com/aerospike-community/dupres/pkg/dupres/types"
)

// TxDescriptor is what the surrounding transaction pipeline hands the
// coordinator to start a resolution. Its resources are moved into the
// Entry by SetupEntry; afterward the descriptor owns nothing
// transferable, enforced here by nilling every transferable field so a
// second use panics instead of silently aliasing already-owned state.
type TxDescriptor struct {
	NamespaceID   types.NamespaceID
	NamespaceName string
	Digest        types.Digest
	TID           types.TID
	Policy        types.Policy

	// Origin/ClientHandle: where the eventual result goes.
	Origin       Origin
	ClientHandle interface{}

	// Reservation is moved into the Entry.
	Reservation types.Reservation

	// Local is the coordinator's own copy, if any, attached to the
	// outbound DUP_REQ so peers can skip work they can't win.
	Local     types.RecordMeta
	HaveLocal bool

	// ClusterKey is attached only when this node's own advertised
	// version is old enough to still need it (see
	// types.SelfRequiresClusterKey).
	ClusterKey uint64

	// ProtocolVersion is the coordinator's own advertised version.
	ProtocolVersion string

	// Restart marks a descriptor re-enqueued by the pipeline after a
	// retryable ack; the core never reads it, but carries it for the
	// pipeline's benefit.
	Restart bool
}

// take moves every transferable field out of tx and zeroes them,
// returning the values for the caller to install elsewhere. A second
// call (or any further use of tx's transferable fields) will now
// observe the zero value instead of a stale alias.
func (tx *TxDescriptor) take() (clientHandle interface{}, reservation types.Reservation) {
	clientHandle, reservation = tx.ClientHandle, tx.Reservation
	tx.ClientHandle = nil
	tx.Reservation = nil
	return
}
