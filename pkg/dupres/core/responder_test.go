package core

import (
	"errors"
	"testing"

	"github.com/aerospike-community/dupres/pkg/dupres/definition"
	"github.com/aerospike-community/dupres/pkg/dupres/types"
)

type fakeReservation struct {
	released   bool
	duplicates []types.PeerID
}

func (f *fakeReservation) Release()               { f.released = true }
func (f *fakeReservation) Duplicates() []types.PeerID { return f.duplicates }

type fakeReservationManager struct {
	err    error
	issued []*fakeReservation
}

func (f *fakeReservationManager) Reserve(types.Digest) (types.Reservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	r := &fakeReservation{}
	f.issued = append(f.issued, r)
	return r, nil
}

func newTestResponder(storage *definition.DefaultStorage) (*Responder, *fakeReservationManager) {
	mgr := &fakeReservationManager{}
	return NewResponder(1, types.PolicyGenerationThenLUT, mgr, storage, definition.NewDefaultLogger()), mgr
}

func TestHandleRequestNotFound(t *testing.T) {
	storage := definition.NewDefaultStorage()
	r, mgr := newTestResponder(storage)

	req := reqMessage(1, types.Digest{1}, 10)
	ack := r.HandleRequest("peer-a", req)

	result, ok := ack.Result()
	if !ok || result != types.NotFound {
		t.Errorf("Result = %v, %v, want NotFound", result, ok)
	}
	if len(mgr.issued) != 1 || !mgr.issued[0].released {
		t.Error("reservation should be acquired and released on every exit path")
	}
}

func TestHandleRequestReturnsWinningRecord(t *testing.T) {
	storage := definition.NewDefaultStorage()
	digest := types.Digest{2}
	storage.Put(digest, types.RecordDescriptor{
		Meta:   types.RecordMeta{Generation: 5, LastUpdateTime: 100},
		Pickle: []byte("ab"),
	})
	r, _ := newTestResponder(storage)

	req := reqMessage(1, digest, 11)
	ack := r.HandleRequest("peer-a", req)

	result, _ := ack.Result()
	if result != types.OK {
		t.Fatalf("Result = %v, want OK", result)
	}
	gen, _ := ack.Generation()
	if gen != 5 {
		t.Errorf("Generation = %d, want 5", gen)
	}
	pickle, ok := ack.Record()
	if !ok || string(pickle) != "ab" {
		t.Errorf("Record = %q, %v", pickle, ok)
	}
}

func TestHandleRequestPreCheckRecordExists(t *testing.T) {
	storage := definition.NewDefaultStorage()
	digest := types.Digest{3}
	storage.Put(digest, types.RecordDescriptor{Meta: types.RecordMeta{Generation: 5, LastUpdateTime: 100}, Pickle: []byte("ab")})
	r, _ := newTestResponder(storage)

	req := reqMessage(1, digest, 12)
	req.SetGeneration(5)
	req.SetLastUpdateTime(100)
	ack := r.HandleRequest("peer-a", req)

	result, _ := ack.Result()
	if result != types.RecordExists {
		t.Errorf("Result = %v, want RecordExists", result)
	}
	if _, ok := ack.Record(); ok {
		t.Error("no data should be returned when the peer already matches")
	}
}

func TestHandleRequestPreCheckGenerationLoses(t *testing.T) {
	storage := definition.NewDefaultStorage()
	digest := types.Digest{4}
	storage.Put(digest, types.RecordDescriptor{Meta: types.RecordMeta{Generation: 1, LastUpdateTime: 1}, Pickle: []byte("ab")})
	r, _ := newTestResponder(storage)

	req := reqMessage(1, digest, 13)
	req.SetGeneration(9)
	req.SetLastUpdateTime(9)
	ack := r.HandleRequest("peer-a", req)

	result, _ := ack.Result()
	if result != types.Generation {
		t.Errorf("Result = %v, want Generation", result)
	}
}

func TestHandleRequestBadNamespace(t *testing.T) {
	storage := definition.NewDefaultStorage()
	r, _ := newTestResponder(storage)

	req := reqMessage(99, types.Digest{5}, 14)
	ack := r.HandleRequest("peer-a", req)

	result, _ := ack.Result()
	if result != types.UnknownFail {
		t.Errorf("Result = %v, want UnknownFail for a namespace mismatch", result)
	}
}

func TestHandleRequestReservationFailure(t *testing.T) {
	storage := definition.NewDefaultStorage()
	mgr := &fakeReservationManager{err: errors.New("partition moved")}
	r := NewResponder(1, types.PolicyGenerationThenLUT, mgr, storage, definition.NewDefaultLogger())

	req := reqMessage(1, types.Digest{6}, 15)
	ack := r.HandleRequest("peer-a", req)

	result, _ := ack.Result()
	if result != types.Unknown {
		t.Errorf("Result = %v, want Unknown when reservation fails", result)
	}
}
