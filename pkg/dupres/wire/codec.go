package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/aerospike-community/dupres/pkg/dupres/types"
)

// ErrTruncated is returned when a buffer ends before a field's declared
// length is satisfied.
var ErrTruncated = errors.New("wire: truncated message")

// ErrBadTag is returned when decode encounters a tag it doesn't know.
var ErrBadTag = errors.New("wire: unknown field tag")

// encoder accumulates bytes the way sarama's packetEncoder does,
// growing a single backing slice instead of many small allocations.
type encoder struct {
	buf []byte
}

func (e *encoder) putUint8(v uint8)   { e.buf = append(e.buf, v) }
func (e *encoder) putUint32(v uint32) { e.buf = binary.BigEndian.AppendUint32(e.buf, v) }
func (e *encoder) putUint64(v uint64) { e.buf = binary.BigEndian.AppendUint64(e.buf, v) }
func (e *encoder) putBytes(v []byte) {
	e.putUint32(uint32(len(v)))
	e.buf = append(e.buf, v...)
}
func (e *encoder) putFixedTag(tag fieldTag) { e.putUint8(uint8(tag)) }

// decoder reads sequentially from a borrowed buffer. Every []byte it
// returns is a sub-slice of that buffer, never a copy: the caller owns
// the buffer's lifetime (Decode's contract), and Message.Clone is the
// escape hatch when a field must outlive it.
type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) remaining() int { return len(d.buf) - d.pos }

func (d *decoder) getUint8() (uint8, error) {
	if d.remaining() < 1 {
		return 0, ErrTruncated
	}
	v := d.buf[d.pos]
	d.pos++
	return v, nil
}

func (d *decoder) getUint32() (uint32, error) {
	if d.remaining() < 4 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *decoder) getUint64() (uint64, error) {
	if d.remaining() < 8 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint64(d.buf[d.pos:])
	d.pos += 8
	return v, nil
}

func (d *decoder) getBytes() ([]byte, error) {
	n, err := d.getUint32()
	if err != nil {
		return nil, err
	}
	if d.remaining() < int(n) {
		return nil, ErrTruncated
	}
	v := d.buf[d.pos : d.pos+int(n) : d.pos+int(n)]
	d.pos += int(n)
	return v, nil
}

func (d *decoder) getDigest() (types.Digest, error) {
	var dg types.Digest
	if d.remaining() < len(dg) {
		return dg, ErrTruncated
	}
	copy(dg[:], d.buf[d.pos:])
	d.pos += len(dg)
	return dg, nil
}

// Encode serializes m into a freshly allocated buffer in tag order.
// Only fields that were actually set are written.
func Encode(m *Message) ([]byte, error) {
	e := &encoder{buf: make([]byte, 0, 64)}

	e.putFixedTag(tagOp)
	e.putUint32(uint32(m.op))

	if r, ok := m.Result(); ok {
		e.putFixedTag(tagResult)
		e.putUint32(uint32(r))
	}
	if ns, ok := m.Namespace(); ok {
		e.putFixedTag(tagNamespace)
		e.putBytes(ns)
	}
	if id, ok := m.NSID(); ok {
		e.putFixedTag(tagNSID)
		e.putUint32(uint32(id))
	}
	if dg, ok := m.Digest(); ok {
		e.putFixedTag(tagDigest)
		e.buf = append(e.buf, dg[:]...)
	}
	if tid, ok := m.TID(); ok {
		e.putFixedTag(tagTID)
		e.putUint32(uint32(tid))
	}
	if ck, ok := m.ClusterKey(); ok {
		e.putFixedTag(tagClusterKey)
		e.putUint64(ck)
	}
	if gen, ok := m.Generation(); ok {
		e.putFixedTag(tagGeneration)
		e.putUint32(uint32(gen))
	}
	if lut, ok := m.LastUpdateTime(); ok {
		e.putFixedTag(tagLastUpdateTime)
		e.putUint64(lut)
	}
	if vt, ok := m.VoidTime(); ok {
		e.putFixedTag(tagVoidTime)
		e.putUint32(vt)
	}
	if rec, ok := m.Record(); ok {
		e.putFixedTag(tagRecord)
		e.putBytes(rec)
	}
	if sn, ok := m.SetName(); ok {
		e.putFixedTag(tagSetName)
		e.putBytes(sn)
	}
	if k, ok := m.Key(); ok {
		e.putFixedTag(tagKey)
		e.putBytes(k)
	}
	if info, ok := m.Info(); ok {
		e.putFixedTag(tagInfo)
		e.putUint32(info)
	}

	return e.buf, nil
}

// Decode parses buf into a new Message. Variable-length fields alias
// buf directly; the caller must keep buf alive for as long as the
// message is in use, or Clone the message first.
func Decode(buf []byte) (*Message, error) {
	d := &decoder{buf: buf}
	m := &Message{refs: 1}

	for d.remaining() > 0 {
		tagByte, err := d.getUint8()
		if err != nil {
			return nil, err
		}
		tag := fieldTag(tagByte)

		switch tag {
		case tagOp:
			v, err := d.getUint32()
			if err != nil {
				return nil, err
			}
			m.op = Op(v)
			m.opSet = true
		case tagResult:
			v, err := d.getUint32()
			if err != nil {
				return nil, err
			}
			m.result = types.ResultCode(v)
			m.resultSet = true
		case tagNamespace:
			v, err := d.getBytes()
			if err != nil {
				return nil, err
			}
			m.namespace = v
			m.namespaceSet = true
		case tagNSID:
			v, err := d.getUint32()
			if err != nil {
				return nil, err
			}
			m.nsID = v
			m.nsIDSet = true
		case tagDigest:
			v, err := d.getDigest()
			if err != nil {
				return nil, err
			}
			m.digest = v
			m.digestSet = true
		case tagTID:
			v, err := d.getUint32()
			if err != nil {
				return nil, err
			}
			m.tid = v
			m.tidSet = true
		case tagClusterKey:
			v, err := d.getUint64()
			if err != nil {
				return nil, err
			}
			m.clusterKey = v
			m.clusterKeySet = true
		case tagGeneration:
			v, err := d.getUint32()
			if err != nil {
				return nil, err
			}
			m.generation = v
			m.generationSet = true
		case tagLastUpdateTime:
			v, err := d.getUint64()
			if err != nil {
				return nil, err
			}
			m.lut = v
			m.lutSet = true
		case tagVoidTime:
			v, err := d.getUint32()
			if err != nil {
				return nil, err
			}
			m.voidTime = v
			m.voidTimeSet = true
		case tagRecord:
			v, err := d.getBytes()
			if err != nil {
				return nil, err
			}
			m.record = v
			m.recordSet = true
		case tagSetName:
			v, err := d.getBytes()
			if err != nil {
				return nil, err
			}
			m.setName = v
			m.setNameSet = true
		case tagKey:
			v, err := d.getBytes()
			if err != nil {
				return nil, err
			}
			m.key = v
			m.keySet = true
		case tagInfo:
			v, err := d.getUint32()
			if err != nil {
				return nil, err
			}
			m.info = v
			m.infoSet = true
		default:
			return nil, fmt.Errorf("%w: tag %d", ErrBadTag, tag)
		}
	}

	return m, nil
}
