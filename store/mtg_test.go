package store

import (
	"testing"
	"time"

	"github.com/MixinNetwork/kkc/mtg"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testAssetId = "43d61dcd-e413-450d-80b8-101d5e903357"

func TestOutputActions(t *testing.T) {
	require := require.New(t)
	bs := testOpenBadger(t, t.TempDir())
	defer bs.Close()

	now := time.Now()
	var outs []*mtg.Output
	for i := 0; i < 3; i++ {
		out := &mtg.Output{
			UTXOID:    newAccount(),
			AssetID:   testAssetId,
			Sender:    newAccount(),
			Amount:    decimal.RequireFromString("0.075"),
			State:     mtg.OutputStateUnspent,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
			UpdatedAt: now,
		}
		require.Nil(bs.WriteOutput(out, true))
		outs = append(outs, out)
	}
	other := &mtg.Output{
		UTXOID:    newAccount(),
		AssetID:   newAccount(),
		Amount:    decimal.RequireFromString("1"),
		State:     mtg.OutputStateUnspent,
		CreatedAt: now,
	}
	require.Nil(bs.WriteOutput(other, false))

	old, err := bs.ReadOutput(outs[0].UTXOID)
	require.Nil(err)
	require.Equal(outs[0].Sender, old.Sender)
	require.True(outs[0].Amount.Equal(old.Amount))
	missing, err := bs.ReadOutput(newAccount())
	require.Nil(err)
	require.Nil(missing)

	pending, err := bs.ListActions(10)
	require.Nil(err)
	require.Len(pending, 3)
	require.Equal(outs[0].UTXOID, pending[0].UTXOID)
	require.Equal(outs[2].UTXOID, pending[2].UTXOID)
	pending, err = bs.ListActions(2)
	require.Nil(err)
	require.Len(pending, 2)

	require.Nil(bs.FinishAction(outs[1]))
	pending, err = bs.ListActions(10)
	require.Nil(err)
	require.Len(pending, 2)
	require.Equal(outs[2].UTXOID, pending[1].UTXOID)

	unspent, err := bs.ListUnspentOutputs(testAssetId, 0)
	require.Nil(err)
	require.Len(unspent, 3)
	unspent, err = bs.ListUnspentOutputs(other.AssetID, 0)
	require.Nil(err)
	require.Len(unspent, 1)
	require.Equal(other.UTXOID, unspent[0].UTXOID)
}

func TestOutputStates(t *testing.T) {
	require := require.New(t)
	bs := testOpenBadger(t, t.TempDir())
	defer bs.Close()

	traceId := newAccount()
	now := time.Now()
	a := &mtg.Output{UTXOID: newAccount(), AssetID: testAssetId, Amount: decimal.RequireFromString("1"), State: mtg.OutputStateUnspent, CreatedAt: now}
	b := &mtg.Output{UTXOID: newAccount(), AssetID: testAssetId, Amount: decimal.RequireFromString("2"), State: mtg.OutputStateUnspent, CreatedAt: now.Add(time.Second)}
	require.Nil(bs.WriteOutputs([]*mtg.Output{a, b}))

	a.State, a.TraceId, a.SignedBy = mtg.OutputStateSigned, traceId, "hash"
	require.Nil(bs.WriteOutputs([]*mtg.Output{a}))
	unspent, err := bs.ListUnspentOutputs(testAssetId, 0)
	require.Nil(err)
	require.Len(unspent, 1)
	require.Equal(b.UTXOID, unspent[0].UTXOID)
	signed, err := bs.ListSignedOutputs(traceId)
	require.Nil(err)
	require.Len(signed, 1)
	require.Equal(a.UTXOID, signed[0].UTXOID)
	require.Equal("hash", signed[0].SignedBy)

	a.State = mtg.OutputStateSpent
	require.Nil(bs.WriteOutput(a, false))
	signed, err = bs.ListSignedOutputs(traceId)
	require.Nil(err)
	require.Len(signed, 0)

	a.State = mtg.OutputStateUnspent
	require.Nil(bs.WriteOutput(a, false))
	old, err := bs.ReadOutput(a.UTXOID)
	require.Nil(err)
	require.Equal(mtg.OutputStateSpent, old.State)
	unspent, err = bs.ListUnspentOutputs(testAssetId, 0)
	require.Nil(err)
	require.Len(unspent, 1)
}

func TestTransactionStates(t *testing.T) {
	require := require.New(t)
	bs := testOpenBadger(t, t.TempDir())
	defer bs.Close()

	tx := &mtg.Transaction{
		TraceId:   newAccount(),
		State:     mtg.TransactionStateInitial,
		AssetId:   testAssetId,
		Receivers: []string{newAccount()},
		Threshold: 1,
		Amount:    "1.5",
		Memo:      "KKC",
		UpdatedAt: time.Now(),
	}
	require.Nil(bs.WriteTransaction(tx))
	txs, err := bs.ListTransactions(mtg.TransactionStateInitial, 0)
	require.Nil(err)
	require.Len(txs, 1)
	require.Equal(tx.Receivers, txs[0].Receivers)

	tx.State = mtg.TransactionStateSigned
	tx.Raw = []byte{1, 2, 3}
	tx.UpdatedAt = tx.UpdatedAt.Add(time.Second)
	require.Nil(bs.WriteTransaction(tx))
	txs, err = bs.ListTransactions(mtg.TransactionStateInitial, 0)
	require.Nil(err)
	require.Len(txs, 0)
	txs, err = bs.ListTransactions(mtg.TransactionStateSigned, 0)
	require.Nil(err)
	require.Len(txs, 1)
	require.Equal([]byte{1, 2, 3}, txs[0].Raw)

	old, err := bs.ReadTransaction(tx.TraceId)
	require.Nil(err)
	require.Equal(mtg.TransactionStateSigned, old.State)
	missing, err := bs.ReadTransaction(newAccount())
	require.Nil(err)
	require.Nil(missing)
}
