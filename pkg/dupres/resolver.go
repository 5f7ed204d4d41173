// Package dupres wires the duplicate-resolution components together
// into a single facade, the way the teacher's top-level mcast package
// wires Unity around core.Peer.
package dupres

import (
	"context"
	"sync"
	"time"

	"github.com/aerospike-community/dupres/pkg/dupres/core"
	"github.com/aerospike-community/dupres/pkg/dupres/metrics"
	"github.com/aerospike-community/dupres/pkg/dupres/types"
	"github.com/aerospike-community/dupres/pkg/dupres/wire"
)

// Resolver bundles the responder and coordinator for one namespace
// along with the shared in-flight table and sweeper. It is the unit a
// surrounding transaction pipeline would hold one of per namespace.
type Resolver struct {
	Configuration *types.Configuration

	table       core.InFlightTable
	fabric      core.Fabric
	responder   *core.Responder
	coordinator *core.Coordinator
	sweeper     *core.Sweeper

	shutdownOnce sync.Once
	cancel       context.CancelFunc
}

// Dependencies groups the external collaborators a Resolver needs.
// Everything here is out of this module's scope (§1) and is supplied
// by the surrounding system.
type Dependencies struct {
	Fabric       core.Fabric
	Storage      types.Storage
	Installer    types.Installer
	Reservations types.ReservationManager
	Enqueuer     core.RestartEnqueuer
	ShouldRetry  core.ShouldRetry
	ToStatus     core.ToClientStatus
	Metrics      *metrics.Registry
}

// NewResolver builds a Resolver for one namespace, starting its
// sweeper goroutine immediately.
func NewResolver(cfg *types.Configuration, deps Dependencies) *Resolver {
	if cfg.RetryInterval < retryIntervalFloor {
		cfg.RetryInterval = retryIntervalFloor
	}

	table := core.NewShardedTable(64)
	coordinator := core.NewCoordinator(table, deps.Fabric, deps.Installer, deps.Enqueuer, deps.ShouldRetry, deps.ToStatus, nil, cfg.Logger, deps.Metrics)
	responder := core.NewResponder(cfg.NamespaceID, cfg.Policy, deps.Reservations, deps.Storage, cfg.Logger)
	sweeper := core.NewSweeper(table, deps.Fabric, cfg.RetryInterval, nil, cfg.Logger, deps.Metrics)

	ctx, cancel := context.WithCancel(context.Background())
	r := &Resolver{
		Configuration: cfg,
		table:         table,
		fabric:        deps.Fabric,
		responder:     responder,
		coordinator:   coordinator,
		sweeper:       sweeper,
		cancel:        cancel,
	}
	go sweeper.Run(ctx)
	return r
}

// HandleRequest implements fabric.Handler, dispatching to the
// namespace's responder.
func (r *Resolver) HandleRequest(peer types.PeerID, msg *wire.Message) *wire.Message {
	return r.responder.HandleRequest(peer, msg)
}

// HandleAck implements fabric.Handler, dispatching to the namespace's
// coordinator.
func (r *Resolver) HandleAck(peer types.PeerID, msg *wire.Message) {
	r.coordinator.HandleAck(peer, msg)
}

// Start begins resolving duplicates for the key described by tx,
// returning once the initial broadcast has been fired. The terminal
// outcome arrives later through onDone/onTimeout.
func (r *Resolver) Start(tx *core.TxDescriptor, onDone core.CompleteFunc, onTimeout core.TimeoutFunc) error {
	entry := core.NewEntry(tx)
	if err := r.coordinator.MakeRequestMessage(entry, tx); err != nil {
		return err
	}
	return r.coordinator.SetupEntry(entry, tx, onDone, onTimeout, r.Configuration.RetryInterval, r.Configuration.Deadline)
}

// Shutdown stops the sweeper goroutine. Safe to call more than once.
func (r *Resolver) Shutdown() {
	r.shutdownOnce.Do(r.cancel)
}

// retryIntervalFloor keeps callers from configuring a sweep interval
// so small it starves the invoker's goroutine pool under load.
const retryIntervalFloor = time.Millisecond
