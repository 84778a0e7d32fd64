package store

import (
	"github.com/MixinNetwork/kkc/kkc"
	"github.com/MixinNetwork/mixin/common"
	"github.com/dgraph-io/badger/v3"
	"github.com/shopspring/decimal"
)

const (
	keyContractState    = "KKC:CONTRACT:STATE"
	keyHolderSequence   = "KKC:SEQUENCE:HOLDER"
	prefixTokenOwner    = "KKC:TOKEN:OWNER:"
	prefixTokenSlot     = "KKC:TOKEN:SLOT:"
	prefixTokenIndex    = "KKC:INDEX:"
	prefixHolderTokens  = "KKC:HOLDER:"
	prefixTokenApproval = "KKC:APPROVAL:"
	prefixOperator      = "KKC:OPERATOR:"
	prefixReceipt       = "KKC:RECEIPT:"
)

type contractState struct {
	Owner           string
	BaseURI         string
	UnrevealBaseURI string
	Price           string
	Reveal          bool
	Paused          bool
	LastTokenId     uint64
}

type paymentReceipt struct {
	Recipient string
	TokenIds  []uint64
	Price     string
	Paid      string
	Owner     string
}

func (bs *BadgerStore) WriteState(s *kkc.State) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return bs.writeState(txn, s)
	})
}

func (bs *BadgerStore) WriteMint(s *kkc.State, recipient string, ids []uint64, receipt *kkc.Receipt) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		old, err := bs.readState(txn)
		if err != nil {
			return err
		}
		if old == nil || old.LastTokenId+uint64(len(ids)) != s.LastTokenId {
			panic(s.LastTokenId)
		}
		err = bs.writeState(txn, s)
		if err != nil {
			return err
		}
		if receipt != nil && receipt.PaymentId != "" {
			err = bs.writeReceipt(txn, receipt)
			if err != nil {
				return err
			}
		}
		for _, id := range ids {
			key := append([]byte(prefixTokenOwner), uint64ToBytes(id)...)
			_, err = txn.Get(key)
			if err == nil {
				panic(id)
			} else if err != badger.ErrKeyNotFound {
				return err
			}
			err = txn.Set(key, []byte(recipient))
			if err != nil {
				return err
			}
			key = append([]byte(prefixTokenIndex), uint64ToBytes(id)...)
			err = txn.Set(key, []byte{1})
			if err != nil {
				return err
			}
			err = bs.appendHolderToken(txn, recipient, id)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (bs *BadgerStore) ReadReceipt(paymentId string) (*kkc.Receipt, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	val, err := bs.readProperty(txn, []byte(prefixReceipt+paymentId))
	if err != nil || val == nil {
		return nil, err
	}
	var pr paymentReceipt
	err = common.MsgpackUnmarshal(val, &pr)
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(pr.Price)
	if err != nil {
		return nil, err
	}
	paid, err := decimal.NewFromString(pr.Paid)
	if err != nil {
		return nil, err
	}
	return &kkc.Receipt{
		PaymentId: paymentId,
		Recipient: pr.Recipient,
		TokenIds:  pr.TokenIds,
		Price:     price,
		Paid:      paid,
		Owner:     pr.Owner,
	}, nil
}

func (bs *BadgerStore) writeReceipt(txn *badger.Txn, r *kkc.Receipt) error {
	key := []byte(prefixReceipt + r.PaymentId)
	_, err := txn.Get(key)
	if err == nil {
		panic(r.PaymentId)
	} else if err != badger.ErrKeyNotFound {
		return err
	}
	pr := &paymentReceipt{
		Recipient: r.Recipient,
		TokenIds:  r.TokenIds,
		Price:     r.Price.String(),
		Paid:      r.Paid.String(),
		Owner:     r.Owner,
	}
	return txn.Set(key, common.MsgpackMarshalPanic(pr))
}

func (bs *BadgerStore) WriteTransfer(from, to string, id uint64) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		key := append([]byte(prefixTokenOwner), uint64ToBytes(id)...)
		owner, err := bs.readProperty(txn, key)
		if err != nil {
			return err
		}
		if string(owner) != from {
			panic(id)
		}
		err = bs.removeHolderToken(txn, from, id)
		if err != nil {
			return err
		}
		err = bs.appendHolderToken(txn, to, id)
		if err != nil {
			return err
		}
		err = txn.Set(key, []byte(to))
		if err != nil {
			return err
		}
		key = append([]byte(prefixTokenApproval), uint64ToBytes(id)...)
		return txn.Delete(key)
	})
}

func (bs *BadgerStore) WriteApproval(id uint64, spender string) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		key := append([]byte(prefixTokenApproval), uint64ToBytes(id)...)
		if spender == kkc.ZeroAccount {
			return txn.Delete(key)
		}
		return txn.Set(key, []byte(spender))
	})
}

func (bs *BadgerStore) WriteOperator(owner, operator string, approved bool) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		key := []byte(prefixOperator + owner + operator)
		if !approved {
			return txn.Delete(key)
		}
		return txn.Set(key, []byte{1})
	})
}

func (bs *BadgerStore) ReadSnapshot() (*kkc.Snapshot, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	state, err := bs.readState(txn)
	if err != nil || state == nil {
		return nil, err
	}
	snap := &kkc.Snapshot{
		State:     state,
		Holdings:  make(map[string][]uint64),
		Approvals: make(map[uint64]string),
		Operators: make(map[string][]string),
	}

	err = bs.iterate(txn, prefixTokenIndex, false, func(key, _ []byte) {
		snap.Tokens = append(snap.Tokens, bytesToUint64(key))
	})
	if err != nil {
		return nil, err
	}
	err = bs.iterate(txn, prefixHolderTokens, true, func(key, val []byte) {
		holder := string(key[:len(key)-8])
		snap.Holdings[holder] = append(snap.Holdings[holder], bytesToUint64(val))
	})
	if err != nil {
		return nil, err
	}
	err = bs.iterate(txn, prefixTokenApproval, true, func(key, val []byte) {
		snap.Approvals[bytesToUint64(key)] = string(val)
	})
	if err != nil {
		return nil, err
	}
	err = bs.iterate(txn, prefixOperator, false, func(key, _ []byte) {
		owner, operator := string(key[:len(key)/2]), string(key[len(key)/2:])
		snap.Operators[owner] = append(snap.Operators[owner], operator)
	})
	return snap, err
}

// iterate calls fn with every key under prefix, prefix stripped, in key order.
func (bs *BadgerStore) iterate(txn *badger.Txn, prefix string, values bool, fn func(key, val []byte)) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = values
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)[len(opts.Prefix):]
		var val []byte
		if values {
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			val = v
		}
		fn(key, val)
	}
	return nil
}

// appendHolderToken files id at the end of the holder's list, the slot
// sequence only grows so key order is receipt order.
func (bs *BadgerStore) appendHolderToken(txn *badger.Txn, holder string, id uint64) error {
	val, err := bs.readProperty(txn, []byte(keyHolderSequence))
	if err != nil {
		return err
	}
	var seq uint64
	if len(val) > 0 {
		seq = bytesToUint64(val)
	}
	seq = seq + 1
	slot := uint64ToBytes(seq)
	err = txn.Set([]byte(keyHolderSequence), slot)
	if err != nil {
		return err
	}

	key := append([]byte(prefixHolderTokens+holder), slot...)
	err = txn.Set(key, uint64ToBytes(id))
	if err != nil {
		return err
	}
	key = append([]byte(prefixTokenSlot), uint64ToBytes(id)...)
	return txn.Set(key, slot)
}

func (bs *BadgerStore) removeHolderToken(txn *badger.Txn, holder string, id uint64) error {
	key := append([]byte(prefixTokenSlot), uint64ToBytes(id)...)
	slot, err := bs.readProperty(txn, key)
	if err != nil {
		return err
	}
	if len(slot) != 8 {
		panic(id)
	}
	key = append([]byte(prefixHolderTokens+holder), slot...)
	return txn.Delete(key)
}

func (bs *BadgerStore) writeState(txn *badger.Txn, s *kkc.State) error {
	cs := &contractState{
		Owner:           s.Owner,
		BaseURI:         s.BaseURI,
		UnrevealBaseURI: s.UnrevealBaseURI,
		Price:           s.Price.String(),
		Reveal:          s.Reveal,
		Paused:          s.Paused,
		LastTokenId:     s.LastTokenId,
	}
	return txn.Set([]byte(keyContractState), common.MsgpackMarshalPanic(cs))
}

func (bs *BadgerStore) readState(txn *badger.Txn) (*kkc.State, error) {
	val, err := bs.readProperty(txn, []byte(keyContractState))
	if err != nil || val == nil {
		return nil, err
	}
	var cs contractState
	err = common.MsgpackUnmarshal(val, &cs)
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(cs.Price)
	if err != nil {
		return nil, err
	}
	return &kkc.State{
		Owner:           cs.Owner,
		BaseURI:         cs.BaseURI,
		UnrevealBaseURI: cs.UnrevealBaseURI,
		Price:           price,
		Reveal:          cs.Reveal,
		Paused:          cs.Paused,
		LastTokenId:     cs.LastTokenId,
	}, nil
}
