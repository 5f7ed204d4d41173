package core

import (
	"context"
	"time"

	"github.com/aerospike-community/dupres/pkg/dupres/metrics"
	"github.com/aerospike-community/dupres/pkg/dupres/types"
)

// Sweeper is the retransmit/timeout goroutine described in §4.4.4. It
// periodically scans the table; entries past their XmitAt get the
// request re-sent to every outstanding peer, and entries past their
// EndTime are timed out.
type Sweeper struct {
	Table    InFlightTable
	Fabric   Fabric
	Interval time.Duration
	Invoker  Invoker
	Logger   types.Logger
	Metrics  *metrics.Registry
}

// NewSweeper builds a Sweeper that scans the table every interval.
func NewSweeper(table InFlightTable, fabric Fabric, interval time.Duration, invoker Invoker, logger types.Logger, m *metrics.Registry) *Sweeper {
	if invoker == nil {
		invoker = InvokerInstance()
	}
	return &Sweeper{
		Table:    table,
		Fabric:   fabric,
		Interval: interval,
		Invoker:  invoker,
		Logger:   logger,
		Metrics:  m,
	}
}

// Run blocks, scanning the table every s.Interval, until ctx is
// cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	now := time.Now()
	for _, ref := range s.Table.Snapshot() {
		entry := ref.Entry
		s.sweepOne(entry, now)
		ref.Release()
	}
}

func (s *Sweeper) sweepOne(entry *Entry, now time.Time) {
	entry.Lock()

	if entry.Complete || !entry.IsSetUp {
		entry.Unlock()
		return
	}

	if now.After(entry.EndTime) {
		// Atomically clear From so a racing HandleAck observes nil and
		// bails; whichever of us gets here first owns completion.
		from := entry.From
		entry.From = nil
		entry.Complete = true
		entry.Unlock()

		if from == nil {
			// No client handle is left to notify, so no timeout
			// callback fires.
			return
		}

		if s.Metrics != nil {
			s.Metrics.Timeout()
		}
		if entry.OnTimeout != nil {
			entry.OnTimeout(entry)
		}
		s.Table.Remove(entry.Key())
		entry.release()
		return
	}

	if now.Before(entry.XmitAt) {
		entry.Unlock()
		return
	}

	outstanding := make([]types.PeerID, 0, len(entry.DestNodes))
	for i, done := range entry.DestComplete {
		if !done {
			outstanding = append(outstanding, entry.DestNodes[i])
		}
	}
	entry.XmitAt = entry.XmitAt.Add(entry.RetryInterval)
	msg := entry.RequestMsg
	key := entry.Key()
	tid := entry.TID
	entry.Unlock()

	log := types.ForEntry(s.Logger, key, tid)
	for _, peer := range outstanding {
		peer := peer
		s.Invoker.Spawn(func() {
			if err := s.Fabric.SendRequest(peer, msg); err != nil {
				log.Errorf("retransmit dup-req to %s: %v", peer, err)
			}
		})
		if s.Metrics != nil {
			s.Metrics.Retransmit()
		}
	}
}
