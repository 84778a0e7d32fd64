package mtg

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/fox-one/mixin-sdk-go"
)

const outputsDrainingKey = "MTG:OUTPUTS:DRAINING:CHECKPOINT"

func (grp *Group) drainOutputs(ctx context.Context, batch int) {
	for ctx.Err() == nil {
		checkpoint, err := grp.readOutputsDrainingCheckpoint()
		if err != nil {
			time.Sleep(3 * time.Second)
			continue
		}
		outputs, err := grp.mixin.ReadMultisigOutputs(ctx, grp.members, uint8(grp.threshold), checkpoint, batch)
		if err != nil {
			logger.Verbosef("ReadMultisigOutputs(%s) => %v\n", checkpoint, err)
			time.Sleep(3 * time.Second)
			continue
		}

		for _, utxo := range outputs {
			out := newOutput(utxo)
			switch utxo.State {
			case mixin.UTXOStateSpent:
				_, extra := decodeTransactionWithExtra(out.SignedTx)
				err = grp.spendOutput(out, extra)
			case mixin.UTXOStateSigned:
				tx, extra := decodeTransactionWithExtra(out.SignedTx)
				if tx != nil && tx.AggregatedSignature != nil && len(tx.AggregatedSignature.Signers) >= int(out.Threshold) {
					err = grp.spendOutput(out, extra)
				} else {
					out.SignedBy = ""
					out.SignedTx = ""
					out.State = OutputStateUnspent
					err = grp.saveOutput(out)
				}
			case mixin.UTXOStateUnspent:
				err = grp.saveOutput(out)
			}
			if err != nil {
				break
			}
			checkpoint = utxo.UpdatedAt
		}

		err = grp.writeOutputsDrainingCheckpoint(checkpoint)
		if err != nil {
			logger.Printf("writeOutputsDrainingCheckpoint(%s) => %v\n", checkpoint, err)
		}
		if len(outputs) < batch/2 {
			break
		}
	}
}

// saveOutput keeps an unspent output and queues it for the workers the
// first time it shows up.
func (grp *Group) saveOutput(out *Output) error {
	old, err := grp.store.ReadOutput(out.UTXOID)
	if err != nil {
		return err
	}
	if old != nil && old.State > OutputStateUnspent {
		return nil
	}
	return grp.store.WriteOutput(out, old == nil)
}

// spendOutput marks the output spent by the transaction in extra. An
// output first seen already spent is still queued for the workers.
func (grp *Group) spendOutput(out *Output, extra *mixinExtraPack) error {
	out.State = OutputStateSpent
	if extra != nil {
		out.TraceId = extra.T.String()
	}
	old, err := grp.store.ReadOutput(out.UTXOID)
	if err != nil {
		return err
	}
	return grp.store.WriteOutput(out, old == nil)
}

func (grp *Group) readOutputsDrainingCheckpoint() (time.Time, error) {
	key := []byte(outputsDrainingKey)
	val, err := grp.store.ReadProperty(key)
	if err != nil || len(val) != 8 {
		return time.Time{}, err
	}
	ts := int64(binary.BigEndian.Uint64(val))
	return time.Unix(0, ts), nil
}

func (grp *Group) writeOutputsDrainingCheckpoint(ckpt time.Time) error {
	val := make([]byte, 8)
	key := []byte(outputsDrainingKey)
	binary.BigEndian.PutUint64(val, uint64(ckpt.UnixNano()))
	return grp.store.WriteProperty(key, val)
}
