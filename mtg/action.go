package mtg

import (
	"context"

	"github.com/MixinNetwork/mixin/logger"
)

// handleActions hands every newly seen output to the workers once. The
// change of the group's own transactions carries the group extra as memo
// and is not a payment.
func (grp *Group) handleActions(ctx context.Context, limit int) error {
	outputs, err := grp.store.ListActions(limit)
	if err != nil {
		return err
	}
	for _, out := range outputs {
		if decodeMixinExtra(out.Memo) == nil {
			for _, wkr := range grp.workers {
				wkr.ProcessOutput(ctx, out)
			}
		} else {
			logger.Verbosef("Group.handleActions(%s) change %s\n", out.UTXOID, out.Amount)
		}
		err = grp.store.FinishAction(out)
		if err != nil {
			return err
		}
	}
	return nil
}
