package core

import (
	"github.com/aerospike-community/dupres/pkg/dupres/types"
	"github.com/aerospike-community/dupres/pkg/dupres/wire"
)

// reqMessage builds a bare DUP_REQ carrying only identity fields, the
// shape the responder and sweeper tests start from.
func reqMessage(nsID types.NamespaceID, digest types.Digest, tid types.TID) *wire.Message {
	m := wire.New(wire.OpDupReq)
	m.SetNSID(nsID)
	m.SetDigest(digest)
	m.SetTID(tid)
	return m
}
