package types

// ResultCode travels on the wire in the RESULT field. It is intentionally
// a distinct type from error: the wire boundary speaks in codes, the Go
// boundary speaks in errors, and the two are only translated at the edges.
type ResultCode uint32

const (
	// OK is success, wire value 0. An ack whose RESULT field is absent
	// is not read as OK: the coordinator treats it as Unknown.
	OK ResultCode = 0

	// NotFound means the peer has no record for this digest.
	NotFound ResultCode = 2

	// RecordExists means the peer's copy is equal to the coordinator's
	// under the namespace policy; no data is returned.
	RecordExists ResultCode = 5

	// Generation means the peer's copy is strictly worse than the
	// coordinator's; no data is returned.
	Generation ResultCode = 3

	// UnknownFail is returned for malformed messages or missing
	// required fields. Preserved verbatim from the source despite the
	// author's own uncertainty about the code ("???" in the original
	// comment) because wire compatibility with older peers depends on it.
	UnknownFail ResultCode = 1

	// Unknown marks a peer outcome the coordinator could not classify,
	// e.g. an OK ack missing required generation/LUT fields. Shares
	// UnknownFail's wire value; the two names exist for readability at
	// the two call sites (bad request vs. unparseable ack), not because
	// peers need to tell them apart.
	Unknown ResultCode = UnknownFail
)

func (r ResultCode) String() string {
	switch r {
	case OK:
		return "OK"
	case NotFound:
		return "NOT_FOUND"
	case RecordExists:
		return "RECORD_EXISTS"
	case Generation:
		return "GENERATION"
	case UnknownFail:
		return "UNKNOWN_FAIL"
	default:
		return "ERROR"
	}
}

// Benign reports whether a non-OK result still represents a successful
// no-op from the coordinator's point of view, whether it comes from
// winner application or from a peer's pre-check: the local copy was
// already as good as or better than the candidate.
func (r ResultCode) Benign() bool {
	return r == RecordExists || r == Generation
}
