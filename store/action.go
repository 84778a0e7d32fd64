package store

import (
	"github.com/MixinNetwork/kkc/mtg"
	"github.com/dgraph-io/badger/v3"
)

// An action key exists while its output waits for the workers, keys sort
// by output time.
const prefixActionPending = "MTG:ACTION:"

func (bs *BadgerStore) ListActions(limit int) ([]*mtg.Output, error) {
	return bs.listOutputs(prefixActionPending, limit)
}

func (bs *BadgerStore) FinishAction(out *mtg.Output) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(actionKey(out))
	})
}

func (bs *BadgerStore) queueAction(txn *badger.Txn, out *mtg.Output) error {
	return txn.Set(actionKey(out), []byte{1})
}

func actionKey(out *mtg.Output) []byte {
	key := append([]byte(prefixActionPending), tsToBytes(out.CreatedAt)...)
	return append(key, out.UTXOID...)
}
