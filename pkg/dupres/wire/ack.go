package wire

import "github.com/aerospike-community/dupres/pkg/dupres/types"

// BadRequestAck builds the best-effort ack sent back when a DUP_REQ
// could not even be parsed far enough to act on. It preserves whatever
// identity fields were recoverable; callers pass zero values for
// anything they never managed to extract.
//
// UNKNOWN_FAIL is what the original implementation used here too,
// despite its own author's uncertainty about the choice. Wire
// compatibility with older peers is more valuable than a more
// descriptive code would be.
func BadRequestAck(nsID types.NamespaceID, digest types.Digest, tid types.TID) *Message {
	m := New(OpDupAck)
	m.SetNSID(nsID)
	m.SetDigest(digest)
	m.SetTID(tid)
	m.SetResult(types.UnknownFail)
	return m
}

// Ack builds a DUP_ACK preserving the request's identity fields and
// carrying result as the outcome.
func Ack(nsID types.NamespaceID, digest types.Digest, tid types.TID, result types.ResultCode) *Message {
	m := New(OpDupAck)
	m.SetNSID(nsID)
	m.SetDigest(digest)
	m.SetTID(tid)
	m.SetResult(result)
	return m
}
