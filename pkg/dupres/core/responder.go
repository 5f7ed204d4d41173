package core

import (
	"github.com/aerospike-community/dupres/pkg/dupres/types"
	"github.com/aerospike-community/dupres/pkg/dupres/wire"
)

// Responder is the request-side half of duplicate resolution (§4.3).
// It holds no per-request state beyond the scoped reservations it
// acquires while handling a single request; every exit path releases
// them before returning.
type Responder struct {
	NamespaceID types.NamespaceID
	Policy      types.Policy
	Reservations types.ReservationManager
	Storage      types.Storage
	Logger       types.Logger
}

// NewResponder builds a Responder for one namespace.
func NewResponder(nsID types.NamespaceID, policy types.Policy, reservations types.ReservationManager, storage types.Storage, logger types.Logger) *Responder {
	return &Responder{
		NamespaceID:  nsID,
		Policy:       policy,
		Reservations: reservations,
		Storage:      storage,
		Logger:       logger,
	}
}

// HandleRequest answers an incoming DUP_REQ, implementing §4.3 step by
// step. It never panics on a malformed message; the worst case is a
// best-effort UNKNOWN_FAIL ack.
func (r *Responder) HandleRequest(peer types.PeerID, msg *wire.Message) *wire.Message {
	digest, hasDigest := msg.Digest()
	nsID, hasNS := msg.NSID()
	tid, hasTID := msg.TID()

	if !hasDigest || !hasNS || !hasTID || nsID != r.NamespaceID {
		var d types.Digest
		if hasDigest {
			d = digest
		}
		var t types.TID
		if hasTID {
			t = tid
		}
		r.Logger.Warnf("bad dup-req from %s: digest=%v ns=%v tid=%v", peer, hasDigest, hasNS, hasTID)
		return wire.BadRequestAck(nsID, d, t)
	}

	var local types.RecordMeta
	localGen, hasGen := msg.Generation()
	localLUT, hasLUT := msg.LastUpdateTime()
	preCheck := hasGen && hasLUT
	if preCheck {
		local = types.RecordMeta{Generation: localGen, LastUpdateTime: localLUT}
	}

	log := types.ForEntry(r.Logger, types.Key{Namespace: nsID, Digest: digest}, tid)

	reservation, err := r.Reservations.Reserve(digest)
	if err != nil {
		log.Errorf("reserving partition: %v", err)
		return wire.Ack(nsID, digest, tid, types.Unknown)
	}
	defer reservation.Release()

	rec, found, err := r.Storage.Get(digest)
	if err != nil {
		log.Errorf("reading record: %v", err)
		return wire.Ack(nsID, digest, tid, resultFromStorageError(err))
	}
	if !found {
		return wire.Ack(nsID, digest, tid, types.NotFound)
	}

	if preCheck {
		switch Resolve(r.Policy, rec.Meta, local) {
		case types.OutcomeEqual:
			return wire.Ack(nsID, digest, tid, types.RecordExists)
		case types.OutcomeRight:
			return wire.Ack(nsID, digest, tid, types.Generation)
		}
	}

	ack := wire.Ack(nsID, digest, tid, types.OK)
	ack.SetGeneration(rec.Meta.Generation)
	ack.SetLastUpdateTime(rec.Meta.LastUpdateTime)
	ack.TakeRecord(rec.Pickle)
	if len(rec.SetName) > 0 {
		ack.SetSetName(rec.SetName)
	}
	if len(rec.Key) > 0 {
		ack.SetKey(rec.Key)
	}
	ack.SetVoidTime(rec.VoidTime)
	ack.SetInfo(rec.Info)
	return ack
}

// resultFromStorageError converts a storage-layer error into its
// positive result-code equivalent, per §4.3 step 6. This module's
// Storage collaborator only ever returns generic errors (it doesn't
// carry its own negative-error-code convention), so every storage
// error maps to Unknown; a real on-disk store that does carry typed
// error codes would extend this switch.
func resultFromStorageError(_ error) types.ResultCode {
	return types.Unknown
}
