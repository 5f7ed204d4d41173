package types

import "fmt"

// Digest is a fixed-width content-addressable key identifier.
type Digest [20]byte

func (d Digest) String() string {
	return fmt.Sprintf("%x", [20]byte(d))
}

// PeerID names a node that may hold a duplicate candidate for a key.
type PeerID string

// NamespaceID is the coordinator's local index for a namespace name.
type NamespaceID uint32

// TID disambiguates successive transactions issued on the same key by
// the same coordinator. It is echoed back on every ack.
type TID uint32

// Key identifies an in-flight entry in the table.
type Key struct {
	Namespace NamespaceID
	Digest    Digest
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%s", k.Namespace, k.Digest)
}
