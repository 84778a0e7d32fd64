package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MixinNetwork/kkc/kkc"
	"github.com/MixinNetwork/kkc/mtg"
	"github.com/MixinNetwork/mixin/logger"
	"github.com/fox-one/mixin-sdk-go"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// MessengerWorker executes plain text commands sent to the app, the user
// who sent the message is the caller of the contract operation.
type MessengerWorker struct {
	client   *mixin.Client
	grp      *mtg.Group
	contract *kkc.Contract
	assetId  string
}

func NewMessengerWorker(ctx context.Context, grp *mtg.Group, conf *mtg.Configuration, contract *kkc.Contract, assetId string) *MessengerWorker {
	s := &mixin.Keystore{
		ClientID:   conf.App.ClientId,
		SessionID:  conf.App.SessionId,
		PrivateKey: conf.App.PrivateKey,
		PinToken:   conf.App.PinToken,
	}
	client, err := mixin.NewFromKeystore(s)
	if err != nil {
		panic(err)
	}
	mw := &MessengerWorker{
		client:   client,
		grp:      grp,
		contract: contract,
		assetId:  assetId,
	}
	go mw.loop(ctx)
	return mw
}

func (mw *MessengerWorker) loop(ctx context.Context) {
	for {
		err := mw.client.LoopBlaze(ctx, mw)
		logger.Printf("LoopBlaze() => %v\n", err)
		if ctx.Err() != nil {
			break
		}
		time.Sleep(3 * time.Second)
	}
}

func (mw *MessengerWorker) OnMessage(ctx context.Context, msg *mixin.MessageView, userId string) error {
	if msg.Category != mixin.MessageCategoryPlainText {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(msg.Data)
	if err != nil {
		data, err = base64.RawURLEncoding.DecodeString(msg.Data)
	}
	if err != nil {
		return nil
	}
	logger.Verbosef("MessengerWorker.OnMessage(%s, %s)\n", userId, string(data))

	reply := mw.execute(ctx, userId, string(data))
	mr := &mixin.MessageRequest{
		ConversationID: msg.ConversationID,
		RecipientID:    userId,
		Category:       mixin.MessageCategoryPlainText,
		MessageID:      mixin.UniqueConversationID(msg.MessageID, "reply"),
		Data:           base64.RawURLEncoding.EncodeToString([]byte(reply)),
	}
	return mw.client.SendMessage(ctx, mr)
}

func (mw *MessengerWorker) OnAckReceipt(ctx context.Context, msg *mixin.MessageView, userId string) error {
	return nil
}

func (mw *MessengerWorker) execute(ctx context.Context, userId, text string) string {
	args := strings.Fields(text)
	if len(args) == 0 {
		return commandUsage
	}
	c := mw.contract
	switch cmd, args := strings.ToLower(args[0]), args[1:]; {
	case cmd == "mint" && len(args) == 2:
		count, err := strconv.Atoi(args[1])
		if err != nil {
			return kkc.ErrInvalidAmount.Error()
		}
		return replyMint(c.BatchMint(userId, args[0], count))
	case cmd == "baseuri" && len(args) == 1:
		return replyDone(c.SetBaseURI(userId, args[0]))
	case cmd == "unrevealuri" && len(args) == 1:
		return replyDone(c.SetUnrevealBaseURI(userId, args[0]))
	case cmd == "price" && len(args) == 1:
		price, err := decimal.NewFromString(args[0])
		if err != nil {
			return kkc.ErrInvalidPrice.Error()
		}
		return replyDone(c.SetPricePerToken(userId, price))
	case cmd == "reveal" && len(args) == 1:
		on, err := parseSwitch(args[0])
		if err != nil {
			return err.Error()
		}
		return replyDone(c.SetReveal(userId, on))
	case cmd == "pause" && len(args) == 0:
		return replyDone(c.Pause(userId))
	case cmd == "unpause" && len(args) == 0:
		return replyDone(c.Unpause(userId))
	case cmd == "transfer" && len(args) == 2:
		id, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return kkc.ErrNonexistentToken.Error()
		}
		return replyDone(c.TransferFrom(userId, userId, args[0], id))
	case cmd == "approve" && len(args) == 2:
		id, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return kkc.ErrNonexistentToken.Error()
		}
		return replyDone(c.Approve(userId, args[0], id))
	case cmd == "operator" && len(args) == 2:
		on, err := parseSwitch(args[1])
		if err != nil {
			return err.Error()
		}
		return replyDone(c.SetApprovalForAll(userId, args[0], on))
	case cmd == "tokens" && len(args) <= 1:
		account := userId
		if len(args) == 1 {
			account = args[0]
		}
		ids := c.TokensOwnedBy(account)
		return fmt.Sprintf("%s holds %d: %s", account, len(ids), formatTokenIds(ids))
	case cmd == "uri" && len(args) == 1:
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return kkc.ErrNotFound.Error()
		}
		uri, err := c.TokenURI(id)
		if err != nil {
			return err.Error()
		}
		return uri
	case cmd == "owner" && len(args) == 1:
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return kkc.ErrNonexistentToken.Error()
		}
		owner, err := c.OwnerOf(id)
		if err != nil {
			return err.Error()
		}
		return owner
	case cmd == "supply" && len(args) == 0:
		return fmt.Sprintf("%s total supply %d last token id %d price %s paused %t reveal %t",
			c.Name(), c.TotalSupply(), c.LastTokenId(), c.PricePerToken(), c.Paused(), c.Revealed())
	case cmd == "buy" && len(args) >= 1 && len(args) <= 2:
		count, err := strconv.Atoi(args[0])
		if err != nil {
			return kkc.ErrInvalidAmount.Error()
		}
		recipient := ""
		if len(args) == 2 {
			recipient = args[1]
		}
		code, err := mw.presaleCode(ctx, recipient, count)
		if err != nil {
			return err.Error()
		}
		return "mixin://codes/" + code
	}
	return commandUsage
}

// presaleCode prepares a payment of the exact presale cost to the group
// with the presale request as memo. Validation happens again when the
// payment arrives, the contract may change in between.
func (mw *MessengerWorker) presaleCode(ctx context.Context, recipient string, count int) (string, error) {
	if mw.contract.Paused() {
		return "", kkc.ErrPaused
	}
	if count <= 0 {
		return "", kkc.ErrInvalidAmount
	}
	if count > kkc.PresaleQuantityLimit {
		return "", kkc.ErrQuantityExceeded
	}
	memo, err := encodePresaleMemo(recipient, count)
	if err != nil {
		return "", err
	}
	amount := kkc.PresaleCost(mw.contract.PricePerToken(), count)
	pr := mixin.TransferInput{
		AssetID: mw.assetId,
		Amount:  amount,
		TraceID: uuid.Must(uuid.NewV4()).String(),
		Memo:    memo,
	}
	pr.OpponentMultisig.Receivers = mw.grp.GetMembers()
	pr.OpponentMultisig.Threshold = uint8(mw.grp.GetThreshold())
	payment, err := mw.client.VerifyPayment(ctx, pr)
	if err != nil {
		return "", err
	}
	return payment.CodeID, nil
}

const commandUsage = `mint <recipient> <count>
baseuri <uri>
unrevealuri <uri>
price <amount>
reveal on|off
pause
unpause
transfer <to> <id>
approve <spender> <id>
operator <operator> on|off
tokens [account]
uri <id>
owner <id>
supply
buy <count> [recipient]`

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid switch %s", s)
}

func replyDone(err error) string {
	if err != nil {
		return err.Error()
	}
	return "done"
}

func replyMint(ids []uint64, err error) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("minted %s", formatTokenIds(ids))
}

func formatTokenIds(ids []uint64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return strings.Join(parts, ",")
}
