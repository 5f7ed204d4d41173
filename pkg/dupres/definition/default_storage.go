package definition

import (
	"sync"

	"github.com/aerospike-community/dupres/pkg/dupres/core"
	"github.com/aerospike-community/dupres/pkg/dupres/types"
)

// DefaultStorage is the in-memory record store used when the caller
// does not wire in a real partition tree. It doubles as the Installer
// collaborator winner application calls into, since both concerns
// boil down to "read/write a record keyed by digest" for this fake.
type DefaultStorage struct {
	mu      sync.Mutex
	records map[types.Digest]types.RecordDescriptor
}

// NewDefaultStorage returns an empty store.
func NewDefaultStorage() *DefaultStorage {
	return &DefaultStorage{records: make(map[types.Digest]types.RecordDescriptor)}
}

// Put seeds the store with a local record, bypassing arbitration. Used
// by tests and by callers priming a node's own copy before duplicate
// resolution runs.
func (s *DefaultStorage) Put(digest types.Digest, rec types.RecordDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[digest] = rec
}

// Get implements types.Storage.
func (s *DefaultStorage) Get(digest types.Digest) (types.RecordDescriptor, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, found := s.records[digest]
	return rec, found, nil
}

// ReplaceIfBetter implements types.Installer. It installs remote only
// if it strictly beats (or there is no) local copy under policy.
func (s *DefaultStorage) ReplaceIfBetter(digest types.Digest, policy types.Policy, remote types.RemoteRecord) (types.ResultCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	local, found := s.records[digest]
	if found {
		switch core.Resolve(policy, remote.Meta, local.Meta) {
		case types.OutcomeEqual:
			return types.RecordExists, nil
		case types.OutcomeRight:
			return types.Generation, nil
		}
	}

	s.records[digest] = types.RecordDescriptor{
		Meta:     remote.Meta,
		Pickle:   remote.Pickle,
		SetName:  remote.SetName,
		Key:      remote.Key,
		VoidTime: remote.VoidTime,
		Info:     remote.Info,
	}
	return types.OK, nil
}
