package main

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/MixinNetwork/kkc/kkc"
	"github.com/MixinNetwork/kkc/mtg"
	"github.com/MixinNetwork/mixin/common"
	"github.com/MixinNetwork/mixin/logger"
	"github.com/fox-one/mixin-sdk-go"
	"github.com/gofrs/uuid"
)

// PresaleWorker turns payments in the price asset into presale mints. The
// payment is forwarded to the contract owner when the mint succeeds and
// refunded to the sender with the failure reason otherwise. Both are keyed
// by the payment output, so replaying an output never mints or pays twice.
type PresaleWorker struct {
	grp      *mtg.Group
	contract *kkc.Contract
	assetId  string
}

// presaleRequest is the memo of a presale payment, base64(msgpack(pr)).
// An empty recipient mints to the sender of the payment.
type presaleRequest struct {
	R uuid.UUID
	N int
}

func NewPresaleWorker(grp *mtg.Group, contract *kkc.Contract, assetId string) *PresaleWorker {
	return &PresaleWorker{
		grp:      grp,
		contract: contract,
		assetId:  assetId,
	}
}

func (pw *PresaleWorker) ProcessOutput(ctx context.Context, out *mtg.Output) {
	if out.AssetID != pw.assetId {
		return
	}
	refunded, err := pw.grp.Queued(refundTraceId(out))
	if err != nil {
		panic(err)
	} else if refunded {
		return
	}
	recipient, count, err := decodePresaleMemo(out.Memo)
	if err != nil {
		pw.refund(ctx, out, err.Error())
		return
	}
	if recipient == "" {
		recipient = out.Sender
	}

	receipt, err := pw.contract.Purchase(out.UTXOID, recipient, count, out.Amount)
	if err != nil {
		logger.Printf("PresaleWorker.Purchase(%s, %s, %d, %s) => %v\n", out.UTXOID, recipient, count, out.Amount, err)
		pw.refund(ctx, out, err.Error())
		return
	}
	ids := receipt.TokenIds
	logger.Printf("PresaleWorker.Purchase(%s, %s, %d, %s) => %d-%d\n", out.UTXOID, recipient, count, out.Amount, ids[0], ids[len(ids)-1])

	memo := fmt.Sprintf("KKC#PRESALE#%d-%d", ids[0], ids[len(ids)-1])
	traceId := mixin.UniqueConversationID(out.UTXOID, "settle")
	err = pw.grp.BuildTransaction(ctx, out.AssetID, []string{receipt.Owner}, 1, receipt.Paid.String(), memo, traceId)
	if err != nil {
		panic(err)
	}
}

func (pw *PresaleWorker) refund(ctx context.Context, out *mtg.Output, reason string) {
	if out.Sender == "" {
		logger.Printf("PresaleWorker.refund(%s) anonymous sender %s\n", out.UTXOID, reason)
		return
	}
	traceId := refundTraceId(out)
	memo := "KKC#REFUND#" + reason
	err := pw.grp.BuildTransaction(ctx, out.AssetID, []string{out.Sender}, 1, out.Amount.String(), memo, traceId)
	if err != nil {
		panic(err)
	}
}

func refundTraceId(out *mtg.Output) string {
	return mixin.UniqueConversationID(out.UTXOID, "refund")
}

func encodePresaleMemo(recipient string, count int) (string, error) {
	pr := &presaleRequest{N: count}
	if recipient != "" {
		id, err := uuid.FromString(recipient)
		if err != nil {
			return "", fmt.Errorf("invalid recipient %s", recipient)
		}
		pr.R = id
	}
	b := common.MsgpackMarshalPanic(pr)
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func decodePresaleMemo(memo string) (string, int, error) {
	b, err := base64.RawURLEncoding.DecodeString(memo)
	if err != nil {
		return "", 0, fmt.Errorf("invalid presale memo")
	}
	var pr presaleRequest
	err = common.MsgpackUnmarshal(b, &pr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid presale memo")
	}
	if pr.R == uuid.Nil {
		return "", pr.N, nil
	}
	return pr.R.String(), pr.N, nil
}
