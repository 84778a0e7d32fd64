package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MixinNetwork/kkc/kkc"
	"github.com/MixinNetwork/kkc/mtg"
	"github.com/MixinNetwork/kkc/store"
	"github.com/fox-one/mixin-sdk-go"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testPriceAssetId = "43d61dcd-e413-450d-80b8-101d5e903357"

func TestPresaleMemo(t *testing.T) {
	require := require.New(t)

	recipient := uuid.Must(uuid.NewV4()).String()
	memo, err := encodePresaleMemo(recipient, 3)
	require.Nil(err)
	r, n, err := decodePresaleMemo(memo)
	require.Nil(err)
	require.Equal(recipient, r)
	require.Equal(3, n)

	memo, err = encodePresaleMemo("", 20)
	require.Nil(err)
	r, n, err = decodePresaleMemo(memo)
	require.Nil(err)
	require.Equal("", r)
	require.Equal(20, n)

	_, err = encodePresaleMemo("recipient", 1)
	require.NotNil(err)
	_, _, err = decodePresaleMemo("")
	require.NotNil(err)
	_, _, err = decodePresaleMemo("!!not-base64!!")
	require.NotNil(err)
}

func TestReadPriceAsset(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "config.toml")
	err := os.WriteFile(path, []byte("[kkc]\nprice-asset-id = \"43d61dcd-e413-450d-80b8-101d5e903357\"\n"), 0600)
	require.Nil(err)
	id, err := readPriceAsset(path)
	require.Nil(err)
	require.Equal("43d61dcd-e413-450d-80b8-101d5e903357", id)

	path = filepath.Join(dir, "empty.toml")
	err = os.WriteFile(path, []byte("[app]\npin = \"123456\"\n"), 0600)
	require.Nil(err)
	_, err = readPriceAsset(path)
	require.NotNil(err)
}

type presaleFixture struct {
	db       *store.BadgerStore
	contract *kkc.Contract
	worker   *PresaleWorker
	owner    string
}

func testPresaleWorker(t *testing.T, require *require.Assertions) *presaleFixture {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	db, err := store.OpenBadger(ctx, t.TempDir())
	require.Nil(err)
	t.Cleanup(func() { db.Close() })

	owner := uuid.Must(uuid.NewV4()).String()
	contract, _, err := kkc.Deploy(db, owner)
	require.Nil(err)
	require.Nil(contract.SetPricePerToken(owner, decimal.RequireFromString("0.075")))
	members := []string{uuid.Must(uuid.NewV4()).String(), uuid.Must(uuid.NewV4()).String()}
	grp, err := mtg.NewGroup(db, members, 1)
	require.Nil(err)
	return &presaleFixture{
		db:       db,
		contract: contract,
		worker:   NewPresaleWorker(grp, contract, testPriceAssetId),
		owner:    owner,
	}
}

func testPayment(require *require.Assertions, sender, recipient string, count int, amount string) *mtg.Output {
	memo, err := encodePresaleMemo(recipient, count)
	require.Nil(err)
	return &mtg.Output{
		UTXOID:    uuid.Must(uuid.NewV4()).String(),
		AssetID:   testPriceAssetId,
		Sender:    sender,
		Amount:    decimal.RequireFromString(amount),
		Memo:      memo,
		State:     mtg.OutputStateUnspent,
		CreatedAt: time.Now(),
	}
}

func (f *presaleFixture) settlement(require *require.Assertions, out *mtg.Output) *mtg.Transaction {
	tx, err := f.db.ReadTransaction(mixin.UniqueConversationID(out.UTXOID, "settle"))
	require.Nil(err)
	return tx
}

func (f *presaleFixture) refund(require *require.Assertions, out *mtg.Output) *mtg.Transaction {
	tx, err := f.db.ReadTransaction(mixin.UniqueConversationID(out.UTXOID, "refund"))
	require.Nil(err)
	return tx
}

func TestPresaleWorkerSettle(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := testPresaleWorker(t, require)
	buyer := uuid.Must(uuid.NewV4()).String()
	friend := uuid.Must(uuid.NewV4()).String()

	out := testPayment(require, buyer, "", 2, "0.2")
	f.worker.ProcessOutput(ctx, out)
	require.Equal([]uint64{1, 2}, f.contract.TokensOwnedBy(buyer))
	tx := f.settlement(require, out)
	require.NotNil(tx)
	require.Equal(mtg.TransactionStateInitial, tx.State)
	require.Equal(testPriceAssetId, tx.AssetId)
	require.Equal([]string{f.owner}, tx.Receivers)
	require.Equal(1, tx.Threshold)
	require.Equal("0.2", tx.Amount)
	require.Equal("KKC#PRESALE#1-2", tx.Memo)
	require.Nil(f.refund(require, out))

	f.worker.ProcessOutput(ctx, out)
	require.Equal(2, f.contract.TotalSupply())
	txs, err := f.db.ListTransactions(mtg.TransactionStateInitial, 0)
	require.Nil(err)
	require.Len(txs, 1)

	gift := testPayment(require, buyer, friend, 3, "0.225")
	f.worker.ProcessOutput(ctx, gift)
	require.Equal([]uint64{3, 4, 5}, f.contract.TokensOwnedBy(friend))
	tx = f.settlement(require, gift)
	require.Equal("0.225", tx.Amount)
	require.Equal("KKC#PRESALE#3-5", tx.Memo)
	require.Equal([]string{f.owner}, tx.Receivers)
}

func TestPresaleWorkerRefund(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := testPresaleWorker(t, require)
	buyer := uuid.Must(uuid.NewV4()).String()

	short := testPayment(require, buyer, "", 2, "0.1")
	over := testPayment(require, buyer, "", 21, "10")
	zero := testPayment(require, buyer, "", 0, "1")
	garbled := testPayment(require, buyer, "", 1, "1")
	garbled.Memo = "KKC#BUY"
	cases := map[*mtg.Output]string{
		short:   "Insufficient payment received",
		over:    "Can't buy over 20 NFTs",
		zero:    "Should be the positive value",
		garbled: "invalid presale memo",
	}
	for out, reason := range cases {
		f.worker.ProcessOutput(ctx, out)
		tx := f.refund(require, out)
		require.NotNil(tx)
		require.Equal([]string{buyer}, tx.Receivers)
		require.Equal(out.Amount.String(), tx.Amount)
		require.Equal(testPriceAssetId, tx.AssetId)
		require.Equal("KKC#REFUND#"+reason, tx.Memo)
		require.Nil(f.settlement(require, out))
	}

	require.Nil(f.contract.Pause(f.owner))
	paused := testPayment(require, buyer, "", 1, "0.075")
	f.worker.ProcessOutput(ctx, paused)
	require.Equal("KKC#REFUND#Pausable: paused", f.refund(require, paused).Memo)
	require.Nil(f.contract.Unpause(f.owner))
	f.worker.ProcessOutput(ctx, paused)
	require.Nil(f.settlement(require, paused))
	require.Equal(0, f.contract.TotalSupply())

	anonymous := testPayment(require, "", "", 1, "0.01")
	f.worker.ProcessOutput(ctx, anonymous)
	require.Nil(f.refund(require, anonymous))

	foreign := testPayment(require, buyer, "", 1, "1")
	foreign.AssetID = uuid.Must(uuid.NewV4()).String()
	f.worker.ProcessOutput(ctx, foreign)
	require.Nil(f.refund(require, foreign))
	require.Nil(f.settlement(require, foreign))
	require.Equal(0, f.contract.TotalSupply())

	txs, err := f.db.ListTransactions(mtg.TransactionStateInitial, 0)
	require.Nil(err)
	require.Len(txs, 5)
}
