package mtg

import (
	"context"
)

type Store interface {
	WriteProperty(key, val []byte) error
	ReadProperty(key []byte) ([]byte, error)

	// WriteOutput saves the output and, with queue set, puts it in the
	// action queue in the same write.
	WriteOutput(out *Output, queue bool) error
	WriteOutputs(outs []*Output) error
	ReadOutput(utxoID string) (*Output, error)
	ListSignedOutputs(traceId string) ([]*Output, error)
	ListUnspentOutputs(assetId string, limit int) ([]*Output, error)

	ListActions(limit int) ([]*Output, error)
	FinishAction(out *Output) error

	WriteTransaction(tx *Transaction) error
	ReadTransaction(traceId string) (*Transaction, error)
	ListTransactions(state int, limit int) ([]*Transaction, error)
}

type Worker interface {
	ProcessOutput(context.Context, *Output)
}
