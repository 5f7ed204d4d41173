// Package metrics exposes the coordinator's Prometheus counters. The
// teacher module depends directly on github.com/prometheus/common; the
// rest of the retrieval pack (rodaine-franz-go's bench example, wired
// through the kprom plugin) pulls in github.com/prometheus/client_golang
// for the same family of concerns. We use client_golang directly here
// since it's the library that actually defines counters/gauges —
// prometheus/common/log is reserved for the logging shim the fabric
// package uses, matching the teacher's own usage of it.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry holds every counter the duplicate-resolution core reports.
// A nil *Registry is valid everywhere it's accepted; every method is a
// no-op on a nil receiver so instrumentation is always optional.
type Registry struct {
	acksReceived      prometheus.Counter
	acksDuplicate     prometheus.Counter
	retransmits       prometheus.Counter
	timeouts          prometheus.Counter
	winnerApplied     prometheus.Counter
	restartsEnqueued  prometheus.Counter
}

// NewRegistry builds and registers a fresh set of counters against reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		acksReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dupres_acks_received_total",
			Help: "Duplicate-resolution acks accepted by the coordinator.",
		}),
		acksDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dupres_acks_duplicate_total",
			Help: "Acks dropped because the peer had already acked.",
		}),
		retransmits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dupres_retransmits_total",
			Help: "DUP_REQ retransmits sent by the sweeper.",
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dupres_timeouts_total",
			Help: "In-flight entries that hit their deadline.",
		}),
		winnerApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dupres_winner_applications_total",
			Help: "Successful local installs of a resolved winner.",
		}),
		restartsEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dupres_restarts_enqueued_total",
			Help: "Transactions restarted from the top due to a retryable ack.",
		}),
	}
	reg.MustRegister(
		r.acksReceived,
		r.acksDuplicate,
		r.retransmits,
		r.timeouts,
		r.winnerApplied,
		r.restartsEnqueued,
	)
	return r
}

func (r *Registry) AckReceived() {
	if r != nil {
		r.acksReceived.Inc()
	}
}

func (r *Registry) AckDuplicate() {
	if r != nil {
		r.acksDuplicate.Inc()
	}
}

func (r *Registry) Retransmit() {
	if r != nil {
		r.retransmits.Inc()
	}
}

func (r *Registry) Timeout() {
	if r != nil {
		r.timeouts.Inc()
	}
}

func (r *Registry) WinnerApplied() {
	if r != nil {
		r.winnerApplied.Inc()
	}
}

func (r *Registry) RestartEnqueued() {
	if r != nil {
		r.restartsEnqueued.Inc()
	}
}
