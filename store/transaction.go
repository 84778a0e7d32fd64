package store

import (
	"fmt"

	"github.com/MixinNetwork/kkc/mtg"
	"github.com/MixinNetwork/mixin/common"
	"github.com/dgraph-io/badger/v3"
)

// Transactions are listed per state in the order they last changed.
const (
	prefixTransactionPayload = "MTG:TRANSACTION:"
	prefixTransactionState   = "MTG:TRANSACTIONS:"
)

func (bs *BadgerStore) WriteTransaction(tx *mtg.Transaction) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		old, err := bs.readTransaction(txn, tx.TraceId)
		if err != nil {
			return err
		}
		if old != nil {
			err = txn.Delete(transactionStateKey(old))
			if err != nil {
				return err
			}
		}
		key := []byte(prefixTransactionPayload + tx.TraceId)
		err = txn.Set(key, common.MsgpackMarshalPanic(tx))
		if err != nil {
			return err
		}
		return txn.Set(transactionStateKey(tx), []byte{1})
	})
}

func (bs *BadgerStore) ReadTransaction(traceId string) (*mtg.Transaction, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readTransaction(txn, traceId)
}

func (bs *BadgerStore) ListTransactions(state int, limit int) ([]*mtg.Transaction, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	var ids []string
	err := bs.iterate(txn, transactionStatePrefix(state), false, func(key, _ []byte) {
		if limit > 0 && len(ids) == limit {
			return
		}
		ids = append(ids, string(key[8:]))
	})
	if err != nil {
		return nil, err
	}
	txs := make([]*mtg.Transaction, 0, len(ids))
	for _, id := range ids {
		tx, err := bs.readTransaction(txn, id)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (bs *BadgerStore) readTransaction(txn *badger.Txn, traceId string) (*mtg.Transaction, error) {
	val, err := bs.readProperty(txn, []byte(prefixTransactionPayload+traceId))
	if err != nil || val == nil {
		return nil, err
	}
	var tx mtg.Transaction
	err = common.MsgpackUnmarshal(val, &tx)
	return &tx, err
}

func transactionStateKey(tx *mtg.Transaction) []byte {
	key := append([]byte(transactionStatePrefix(tx.State)), tsToBytes(tx.UpdatedAt)...)
	return append(key, tx.TraceId...)
}

func transactionStatePrefix(state int) string {
	switch state {
	case mtg.TransactionStateInitial, mtg.TransactionStateSigned, mtg.TransactionStateSnapshot:
		return fmt.Sprintf("%s%d:", prefixTransactionState, state)
	}
	panic(state)
}
