package types

// RecordDescriptor is what the responder reads out of the local
// partition tree before pickling it for the wire. The on-disk record
// store itself is an external collaborator; the core only needs this
// shape back from it.
type RecordDescriptor struct {
	Meta     RecordMeta
	Pickle   Pickle
	SetName  []byte
	Key      []byte
	VoidTime uint32
	Info     uint32
}

// Storage is the on-disk record store. It is out of scope for this
// module (§1, Out of scope) but is modeled as an interface so the
// responder and winner-application components compile and can be
// exercised against a fake in tests.
type Storage interface {
	// Get reads the record for digest out of the partition tree.
	// found is false when the peer holds no candidate at all for digest.
	Get(digest Digest) (rec RecordDescriptor, found bool, err error)
}

// Installer is the "replace if better" collaborator winner application
// hands the resolved remote record to. It owns the actual compare and
// write against local storage; the core only interprets its ResultCode.
type Installer interface {
	ReplaceIfBetter(digest Digest, policy Policy, remote RemoteRecord) (ResultCode, error)
}

// RemoteRecord is the assembled descriptor passed to Installer once a
// winning ack has been selected.
type RemoteRecord struct {
	Meta     RecordMeta
	Pickle   Pickle
	SetName  []byte
	Key      []byte
	VoidTime uint32
	Info     uint32
}
