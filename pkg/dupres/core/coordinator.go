package core

import (
	"fmt"
	"time"

	"github.com/aerospike-community/dupres/pkg/dupres/metrics"
	"github.com/aerospike-community/dupres/pkg/dupres/types"
	"github.com/aerospike-community/dupres/pkg/dupres/wire"
)

// RestartEnqueuer is the surrounding transaction pipeline's intake for
// a transaction the coordinator has decided to restart from the top.
// External collaborator (§1).
type RestartEnqueuer interface {
	Enqueue(tx *TxDescriptor)
}

// ShouldRetry decides whether a peer's result code should cause the
// whole transaction to restart from the top, typically true for codes
// indicating the peer's view of cluster state is stale. External to
// the core (§4.4.3 step 6).
type ShouldRetry func(types.ResultCode) bool

// ToClientStatus translates a core result code into whatever the
// client protocol expects. External to the core (§4.4.3 step 11).
type ToClientStatus func(types.ResultCode) types.ResultCode

// Coordinator is the fan-out/fan-in state machine described in §4.4.
// All per-transaction state lives on the Entry the table hands back;
// the Coordinator itself is stateless and safe to share across
// goroutines.
type Coordinator struct {
	Table      InFlightTable
	Fabric     Fabric
	Installer  types.Installer
	Enqueuer   RestartEnqueuer
	ShouldRetry ShouldRetry
	ToStatus   ToClientStatus
	Invoker    Invoker
	Logger     types.Logger
	Metrics    *metrics.Registry
}

// NewCoordinator wires a Coordinator from its collaborators. invoker
// may be nil to use the process-wide InvokerInstance().
func NewCoordinator(table InFlightTable, fabric Fabric, installer types.Installer, enqueuer RestartEnqueuer, shouldRetry ShouldRetry, toStatus ToClientStatus, invoker Invoker, logger types.Logger, m *metrics.Registry) *Coordinator {
	if invoker == nil {
		invoker = InvokerInstance()
	}
	return &Coordinator{
		Table:       table,
		Fabric:      fabric,
		Installer:   installer,
		Enqueuer:    enqueuer,
		ShouldRetry: shouldRetry,
		ToStatus:    toStatus,
		Invoker:     invoker,
		Logger:      logger,
		Metrics:     m,
	}
}

// MakeRequestMessage composes the outbound DUP_REQ and attaches it to
// entry.RequestMsg, implementing §4.4.1.
func (c *Coordinator) MakeRequestMessage(entry *Entry, tx *TxDescriptor) error {
	if tx.NamespaceName == "" {
		return fmt.Errorf("dupres: empty namespace name for tx %v", tx.Digest)
	}

	msg := wire.New(wire.OpDupReq)
	msg.SetNamespace([]byte(tx.NamespaceName))
	msg.SetNSID(tx.NamespaceID)
	msg.SetDigest(tx.Digest)
	msg.SetTID(tx.TID)

	if types.SelfRequiresClusterKey(tx.ProtocolVersion) {
		msg.SetClusterKey(tx.ClusterKey)
	}

	if tx.HaveLocal {
		msg.SetGeneration(tx.Local.Generation)
		msg.SetLastUpdateTime(tx.Local.LastUpdateTime)
	}

	entry.RequestMsg = msg
	return nil
}

// SetupEntry moves tx's transferable resources into entry and arms it
// for retransmit/timeout, implementing §4.4.2. It inserts entry into
// the table and fires the initial broadcast to every duplicate peer.
// Publishing entry.IsSetUp is the last change made to the entry, done
// only once it is fully constructed and safe for the sweeper to
// observe; the initial broadcast follows it.
func (c *Coordinator) SetupEntry(entry *Entry, tx *TxDescriptor, onDone CompleteFunc, onTimeout TimeoutFunc, retryInterval, deadline time.Duration) error {
	if entry.RequestMsg == nil {
		return fmt.Errorf("dupres: SetupEntry called before MakeRequestMessage for tx %v", tx.Digest)
	}

	clientHandle, reservation := tx.take()

	entry.Origin = tx.Origin
	entry.From = clientHandle
	entry.Reservation = reservation

	dups := reservation.Duplicates()
	entry.DestNodes = append([]types.PeerID(nil), dups...)
	entry.DestComplete = make([]bool, len(dups))

	entry.OnComplete = onDone
	entry.OnTimeout = onTimeout
	entry.RetryInterval = retryInterval

	now := time.Now()
	entry.XmitAt = now.Add(retryInterval)
	entry.EndTime = now.Add(deadline)

	if !c.Table.Insert(entry) {
		entry.release()
		return fmt.Errorf("dupres: entry already in flight for %v", entry.Key())
	}

	// Publish IsSetUp last, and under the entry lock, so the sweeper
	// (which also locks before reading it) never observes a
	// partially-constructed entry it just found in the table.
	entry.Lock()
	entry.IsSetUp = true
	entry.Unlock()

	log := types.ForEntry(c.Logger, entry.Key(), entry.TID)
	for _, peer := range entry.DestNodes {
		peer := peer
		c.Invoker.Spawn(func() {
			if err := c.Fabric.SendRequest(peer, entry.RequestMsg); err != nil {
				log.Errorf("dup-req to %s: %v", peer, err)
			}
		})
	}

	return nil
}

// HandleAck is the coordinator's entry point for an inbound DUP_ACK,
// implementing §4.4.3.
func (c *Coordinator) HandleAck(peer types.PeerID, msg *wire.Message) {
	digest, hasDigest := msg.Digest()
	nsID, hasNS := msg.NSID()
	tid, hasTID := msg.TID()
	if !hasDigest || !hasNS || !hasTID {
		c.Logger.Warnf("dropping ack from %s: missing identity fields", peer)
		return
	}

	key := types.Key{Namespace: nsID, Digest: digest}
	entry, release := c.Table.Lookup(key)
	if entry == nil {
		// Extra or late ack for an entry that's already gone.
		return
	}
	defer release()

	entry.Lock()
	defer entry.Unlock()

	if entry.TID != tid || entry.Complete {
		return
	}

	i := entry.indexOfDest(peer)
	if i == -1 {
		types.ForEntry(c.Logger, key, tid).Warnf("ack from unrecognized peer %s", peer)
		return
	}
	if entry.DestComplete[i] {
		if c.Metrics != nil {
			c.Metrics.AckDuplicate()
		}
		return
	}
	entry.DestComplete[i] = true
	if c.Metrics != nil {
		c.Metrics.AckReceived()
	}

	peerResult, meta, ok := parseAckMeta(msg)
	if !ok {
		peerResult = types.Unknown
	}

	if c.ShouldRetry != nil && c.ShouldRetry(peerResult) {
		c.restart(entry)
		return
	}

	c.incorporateCandidate(entry, msg, peerResult, meta)

	if !entry.allComplete() {
		return
	}

	c.complete(entry)
}

// parseAckMeta extracts the peer outcome from an ack. When result is
// absent or non-OK, that code alone is the outcome. When result is OK,
// generation and last-update-time are both required; their absence (or
// a zero generation) downgrades the outcome to Unknown without
// blocking completion, per §7's propagation policy.
func parseAckMeta(msg *wire.Message) (types.ResultCode, types.RecordMeta, bool) {
	result, hasResult := msg.Result()
	if !hasResult || result != types.OK {
		if !hasResult {
			result = types.Unknown
		}
		return result, types.RecordMeta{}, true
	}

	gen, hasGen := msg.Generation()
	lut, hasLUT := msg.LastUpdateTime()
	if !hasGen || gen == 0 || !hasLUT {
		return types.Unknown, types.RecordMeta{}, true
	}
	return types.OK, types.RecordMeta{Generation: gen, LastUpdateTime: lut}, true
}

// restart implements §4.4.3 step 6: transfer the client payload into a
// fresh descriptor, mark it for restart, and hand it to the pipeline.
// Must be called with entry already locked.
func (c *Coordinator) restart(entry *Entry) {
	if entry.From == nil {
		// The sweeper already took ownership of completion.
		return
	}

	tx := &TxDescriptor{
		NamespaceID: entry.NamespaceID,
		Digest:      entry.Digest,
		TID:         entry.TID,
		Policy:      entry.Policy,
		Origin:      entry.Origin,
		ClientHandle: entry.From,
		Restart:     true,
	}
	entry.From = nil
	entry.Complete = true

	c.Table.Remove(entry.Key())
	entry.release()

	if c.Metrics != nil {
		c.Metrics.RestartEnqueued()
	}
	c.Enqueuer.Enqueue(tx)
}

// incorporateCandidate implements §4.4.3 step 7: compare the new ack
// against the running best and keep whichever wins. Must be called
// with entry already locked.
func (c *Coordinator) incorporateCandidate(entry *Entry, msg *wire.Message, peerResult types.ResultCode, meta types.RecordMeta) {
	if peerResult != types.OK {
		if !entry.haveBest {
			entry.ResultCode = peerResult
		}
		return
	}

	if entry.haveBest {
		current, _ := entry.BestAck.Meta()
		if Resolve(entry.Policy, current, meta) != types.OutcomeRight {
			// Current best is still at least as good; drop the
			// candidate we just received.
			return
		}
	}

	entry.BestAck = msg.Clone()
	entry.haveBest = true
	entry.ResultCode = types.OK
}

// complete implements §4.4.3 steps 9-13: apply the winner (if any),
// race the sweeper for completion ownership, translate the result and
// invoke the callback. Must be called with entry already locked.
func (c *Coordinator) complete(entry *Entry) {
	var result types.ResultCode
	if entry.haveBest {
		result = applyWinner(c.Installer, entry.Digest, entry.Policy, entry.BestAck, c.Metrics)
	} else {
		result = entry.ResultCode
		if result.Benign() {
			// The peer's pre-check found our local copy already as good
			// or better: a successful no-op, same as after apply.
			result = types.OK
		}
	}
	entry.ResultCode = result

	if entry.From == nil {
		// The sweeper raced us to completion; apply already ran as a
		// best-effort side effect, but no callback fires.
		return
	}

	if c.ToStatus != nil {
		entry.ResultCode = c.ToStatus(result)
	}

	remove := true
	if entry.OnComplete != nil {
		remove = entry.OnComplete(entry)
	}

	entry.Complete = true
	if remove {
		c.Table.Remove(entry.Key())
		entry.release()
	}
}
