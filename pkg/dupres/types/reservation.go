package types

// Reservation is a lease on a partition that pins its storage tree
// while a caller reads or writes it. Acquired by digest, released on
// every exit path. The partition-ownership machinery behind it is an
// external collaborator; the core treats it as a scoped resource.
type Reservation interface {
	// Release gives the lease back. Safe to call exactly once; a
	// second call is a bug in the caller, not in the reservation.
	Release()

	// Duplicates lists the peers known to hold a candidate version for
	// the digest this reservation pins.
	Duplicates() []PeerID
}

// ReservationManager acquires Reservations. An external collaborator.
type ReservationManager interface {
	Reserve(digest Digest) (Reservation, error)
}
