package core

import (
	"github.com/aerospike-community/dupres/pkg/dupres/metrics"
	"github.com/aerospike-community/dupres/pkg/dupres/types"
	"github.com/aerospike-community/dupres/pkg/dupres/wire"
)

// infoBinlessPickle flags a pickle that carries no bin data (e.g. a
// tombstone marker) and should never be installed, only recorded.
const infoBinlessPickle uint32 = 1 << 0

// applyWinner installs best locally if it beats what's already stored,
// implementing §4.5. It returns the result code to record on the
// entry; RecordExists/Generation are mapped to OK before returning,
// since from the coordinator's perspective both mean "our local copy
// already dominates", a successful no-op for duplicate resolution.
func applyWinner(installer types.Installer, digest types.Digest, policy types.Policy, best *wire.Message, m *metrics.Registry) types.ResultCode {
	pickle, _ := best.Record()
	if !types.Pickle(pickle).Present() {
		return types.Unknown
	}

	info, _ := best.Info()
	if info&infoBinlessPickle != 0 {
		return types.Unknown
	}

	gen, _ := best.Generation()
	lut, _ := best.LastUpdateTime()
	voidTime, _ := best.VoidTime()
	setName, _ := best.SetName()
	key, _ := best.Key()

	remote := types.RemoteRecord{
		Meta:     types.RecordMeta{Generation: gen, LastUpdateTime: lut},
		Pickle:   pickle,
		SetName:  setName,
		Key:      key,
		VoidTime: voidTime,
		Info:     info,
	}

	result, err := installer.ReplaceIfBetter(digest, policy, remote)
	if err != nil {
		return types.Unknown
	}

	if result.Benign() {
		result = types.OK
	}
	if result == types.OK {
		m.WinnerApplied()
	}
	return result
}
