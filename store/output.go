package store

import (
	"github.com/MixinNetwork/kkc/mtg"
	"github.com/MixinNetwork/mixin/common"
	"github.com/dgraph-io/badger/v3"
)

// Outputs are indexed only while the group can still spend them, unspent
// by asset for new payments and signed by the trace of the transaction
// that holds them.
const (
	prefixOutputPayload = "MTG:OUTPUT:"
	prefixOutputUnspent = "MTG:UNSPENT:"
	prefixOutputSigned  = "MTG:SIGNED:"
)

func (bs *BadgerStore) WriteOutput(out *mtg.Output, queue bool) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		err := bs.writeOutput(txn, out)
		if err != nil || !queue {
			return err
		}
		return bs.queueAction(txn, out)
	})
}

func (bs *BadgerStore) WriteOutputs(outs []*mtg.Output) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		for _, out := range outs {
			err := bs.writeOutput(txn, out)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (bs *BadgerStore) ReadOutput(utxoID string) (*mtg.Output, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readOutput(txn, utxoID)
}

func (bs *BadgerStore) ListSignedOutputs(traceId string) ([]*mtg.Output, error) {
	return bs.listOutputs(prefixOutputSigned+traceId+":", 0)
}

func (bs *BadgerStore) ListUnspentOutputs(assetId string, limit int) ([]*mtg.Output, error) {
	return bs.listOutputs(prefixOutputUnspent+assetId+":", limit)
}

// listOutputs reads the outputs of an index whose keys end with the time
// and the utxo id, oldest first.
func (bs *BadgerStore) listOutputs(prefix string, limit int) ([]*mtg.Output, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	var ids []string
	err := bs.iterate(txn, prefix, false, func(key, _ []byte) {
		if limit > 0 && len(ids) == limit {
			return
		}
		ids = append(ids, string(key[8:]))
	})
	if err != nil {
		return nil, err
	}
	outs := make([]*mtg.Output, 0, len(ids))
	for _, id := range ids {
		out, err := bs.readOutput(txn, id)
		if err != nil {
			return nil, err
		}
		if out == nil {
			panic(id)
		}
		outs = append(outs, out)
	}
	return outs, nil
}

func (bs *BadgerStore) writeOutput(txn *badger.Txn, out *mtg.Output) error {
	old, err := bs.readOutput(txn, out.UTXOID)
	if err != nil {
		return err
	}
	if old != nil && old.State == mtg.OutputStateSpent && out.State != mtg.OutputStateSpent {
		return nil
	}
	if key := outputIndexKey(old); key != nil {
		err = txn.Delete(key)
		if err != nil {
			return err
		}
	}

	key := []byte(prefixOutputPayload + out.UTXOID)
	err = txn.Set(key, common.MsgpackMarshalPanic(out))
	if err != nil {
		return err
	}
	if key := outputIndexKey(out); key != nil {
		return txn.Set(key, []byte{1})
	}
	return nil
}

func (bs *BadgerStore) readOutput(txn *badger.Txn, id string) (*mtg.Output, error) {
	val, err := bs.readProperty(txn, []byte(prefixOutputPayload+id))
	if err != nil || val == nil {
		return nil, err
	}
	var out mtg.Output
	err = common.MsgpackUnmarshal(val, &out)
	return &out, err
}

func outputIndexKey(out *mtg.Output) []byte {
	if out == nil {
		return nil
	}
	var prefix string
	switch out.State {
	case mtg.OutputStateUnspent:
		prefix = prefixOutputUnspent + out.AssetID + ":"
	case mtg.OutputStateSigned:
		if out.TraceId == "" {
			return nil
		}
		prefix = prefixOutputSigned + out.TraceId + ":"
	default:
		return nil
	}
	key := append([]byte(prefix), tsToBytes(out.CreatedAt)...)
	return append(key, out.UTXOID...)
}
