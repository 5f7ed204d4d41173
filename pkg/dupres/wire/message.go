package wire

import (
	"sync/atomic"

	"github.com/aerospike-community/dupres/pkg/dupres/types"
)

// Message is a fabric message of type RW carrying DUP_REQ/DUP_ACK
// fields. It is a reference-counted handle owning its backing byte
// storage; field accessors that return []byte are direct views into
// that storage unless the field was populated through a Take* setter,
// in which case the message owns the buffer outright.
//
// Ownership rules, matching §5 of the spec:
//   - Decode produces a message whose []byte fields alias the decoded
//     buffer (Receive: handler borrows).
//   - Set* setters copy their argument into fresh storage (Copy).
//   - Take* setters adopt the caller's slice without copying; the
//     caller must not touch it again (Hand-off).
//   - Clone deep-copies every set field into fresh storage, used when
//     an ack is retained as the running best candidate so it survives
//     the sender's buffer being reused (Preserve).
type Message struct {
	refs int32

	op        Op
	opSet     bool
	result    types.ResultCode
	resultSet bool

	namespace    []byte
	namespaceSet bool

	nsID    uint32
	nsIDSet bool

	digest    types.Digest
	digestSet bool

	tid    uint32
	tidSet bool

	clusterKey    uint64
	clusterKeySet bool

	generation    uint32
	generationSet bool

	lut    uint64
	lutSet bool

	voidTime    uint32
	voidTimeSet bool

	record    []byte
	recordSet bool

	setName    []byte
	setNameSet bool

	key    []byte
	keySet bool

	info    uint32
	infoSet bool
}

// New returns a fresh message with a single reference, ready to be
// populated and either sent or released.
func New(op Op) *Message {
	return &Message{refs: 1, op: op, opSet: true}
}

// Retain increments the reference count. Callers that hand a message
// to more than one goroutine-visible owner (e.g. storing it as the
// best candidate while the fabric may still be flushing it) must
// Retain before the second owner is published.
func (m *Message) Retain() {
	atomic.AddInt32(&m.refs, 1)
}

// Release decrements the reference count. The zero-crossing caller is
// responsible for actually dropping the backing buffers; in this
// implementation that's a no-op left to the garbage collector, but the
// refcount itself still enforces the release-exactly-once discipline
// the spec requires of reservations and best-ack buffers.
func (m *Message) Release() int32 {
	return atomic.AddInt32(&m.refs, -1)
}

func (m *Message) Op() Op { return m.op }

func (m *Message) Result() (types.ResultCode, bool) { return m.result, m.resultSet }
func (m *Message) SetResult(r types.ResultCode) {
	m.result = r
	m.resultSet = true
}

func (m *Message) Namespace() ([]byte, bool) { return m.namespace, m.namespaceSet }
func (m *Message) SetNamespace(name []byte) {
	m.namespace = append([]byte(nil), name...)
	m.namespaceSet = true
}

func (m *Message) NSID() (types.NamespaceID, bool) { return types.NamespaceID(m.nsID), m.nsIDSet }
func (m *Message) SetNSID(id types.NamespaceID) {
	m.nsID = uint32(id)
	m.nsIDSet = true
}

func (m *Message) Digest() (types.Digest, bool) { return m.digest, m.digestSet }
func (m *Message) SetDigest(d types.Digest) {
	m.digest = d
	m.digestSet = true
}

func (m *Message) TID() (types.TID, bool) { return types.TID(m.tid), m.tidSet }
func (m *Message) SetTID(tid types.TID) {
	m.tid = uint32(tid)
	m.tidSet = true
}

func (m *Message) ClusterKey() (uint64, bool) { return m.clusterKey, m.clusterKeySet }
func (m *Message) SetClusterKey(ck uint64) {
	m.clusterKey = ck
	m.clusterKeySet = true
}

func (m *Message) Generation() (uint16, bool) {
	return uint16(m.generation), m.generationSet
}
func (m *Message) SetGeneration(gen uint16) {
	m.generation = uint32(gen)
	m.generationSet = true
}

// Meta returns the (generation, last-update-time) pair if both fields
// were set, the shape the arbiter compares.
func (m *Message) Meta() (types.RecordMeta, bool) {
	if !m.generationSet || !m.lutSet {
		return types.RecordMeta{}, false
	}
	return types.RecordMeta{Generation: uint16(m.generation), LastUpdateTime: m.lut}, true
}

func (m *Message) LastUpdateTime() (uint64, bool) { return m.lut, m.lutSet }
func (m *Message) SetLastUpdateTime(lut uint64) {
	m.lut = lut
	m.lutSet = true
}

func (m *Message) VoidTime() (uint32, bool) { return m.voidTime, m.voidTimeSet }
func (m *Message) SetVoidTime(vt uint32) {
	if vt == 0 {
		// Omitted when zero, per the wire table.
		return
	}
	m.voidTime = vt
	m.voidTimeSet = true
}

// Record returns the pickle, whether directly decoded from the wire
// buffer or handed off by TakeRecord.
func (m *Message) Record() (types.Pickle, bool) { return m.record, m.recordSet }

// SetRecord copies pickle into fresh storage. Prefer TakeRecord when
// the caller freshly allocated the buffer and has no further use for it.
func (m *Message) SetRecord(pickle []byte) {
	m.record = append([]byte(nil), pickle...)
	m.recordSet = true
}

// TakeRecord hands ownership of pickle to the message without
// copying. The caller must not read or write pickle again.
func (m *Message) TakeRecord(pickle []byte) {
	m.record = pickle
	m.recordSet = true
}

func (m *Message) SetName() ([]byte, bool) { return m.setName, m.setNameSet }
func (m *Message) SetSetName(name []byte) {
	m.setName = append([]byte(nil), name...)
	m.setNameSet = true
}

func (m *Message) Key() ([]byte, bool) { return m.key, m.keySet }
func (m *Message) SetKey(key []byte) {
	m.key = append([]byte(nil), key...)
	m.keySet = true
}

func (m *Message) Info() (uint32, bool) { return m.info, m.infoSet }
func (m *Message) SetInfo(info uint32) {
	if info == 0 {
		return
	}
	m.info = info
	m.infoSet = true
}

// Clone deep-copies every populated field into fresh storage and
// returns a new message with a single reference. This is the
// "Preserve" operation from §5: it lets an ack outlive the sender's
// buffer being reused once the coordinator decides to keep it as the
// running best candidate.
func (m *Message) Clone() *Message {
	c := &Message{
		refs: 1,

		op: m.op, opSet: m.opSet,
		result: m.result, resultSet: m.resultSet,
		nsID: m.nsID, nsIDSet: m.nsIDSet,
		digest: m.digest, digestSet: m.digestSet,
		tid: m.tid, tidSet: m.tidSet,
		clusterKey: m.clusterKey, clusterKeySet: m.clusterKeySet,
		generation: m.generation, generationSet: m.generationSet,
		lut: m.lut, lutSet: m.lutSet,
		voidTime: m.voidTime, voidTimeSet: m.voidTimeSet,
		info: m.info, infoSet: m.infoSet,
	}
	if m.namespaceSet {
		c.namespace = append([]byte(nil), m.namespace...)
		c.namespaceSet = true
	}
	if m.recordSet {
		c.record = append([]byte(nil), m.record...)
		c.recordSet = true
	}
	if m.setNameSet {
		c.setName = append([]byte(nil), m.setName...)
		c.setNameSet = true
	}
	if m.keySet {
		c.key = append([]byte(nil), m.key...)
		c.keySet = true
	}
	return c
}
