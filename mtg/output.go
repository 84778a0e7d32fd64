package mtg

import (
	"time"

	"github.com/MixinNetwork/mixin/crypto"
	"github.com/fox-one/mixin-sdk-go"
	"github.com/shopspring/decimal"
)

const (
	OutputStateUnspent = 10
	OutputStateSigned  = 11
	OutputStateSpent   = 12
)

// Output is a multisig UTXO owned by the group. Presale payments arrive as
// outputs, settlements and refunds spend them. TraceId names the group
// transaction that signed or spent the output.
type Output struct {
	UTXOID          string
	AssetID         string
	TransactionHash crypto.Hash
	OutputIndex     int
	Sender          string
	Amount          decimal.Decimal
	Threshold       uint8
	Memo            string
	State           int
	TraceId         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	SignedBy        string
	SignedTx        string
}

func newOutput(utxo *mixin.MultisigUTXO) *Output {
	out := &Output{
		UTXOID:          utxo.UTXOID,
		AssetID:         utxo.AssetID,
		TransactionHash: crypto.Hash(utxo.TransactionHash),
		OutputIndex:     utxo.OutputIndex,
		Sender:          utxo.Sender,
		Amount:          utxo.Amount,
		Threshold:       utxo.Threshold,
		Memo:            utxo.Memo,
		CreatedAt:       utxo.CreatedAt,
		UpdatedAt:       utxo.UpdatedAt,
		SignedBy:        utxo.SignedBy,
		SignedTx:        utxo.SignedTx,
	}
	switch utxo.State {
	case mixin.UTXOStateUnspent:
		out.State = OutputStateUnspent
	case mixin.UTXOStateSigned:
		out.State = OutputStateSigned
	case mixin.UTXOStateSpent:
		out.State = OutputStateSpent
	}
	return out
}
