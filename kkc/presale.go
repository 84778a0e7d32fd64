package kkc

import "github.com/shopspring/decimal"

// PresaleMint sells count tokens to recipient for payment. Anyone may call
// it while the contract is active. The whole payment goes to the owner,
// overpayment included.
func (c *Contract) PresaleMint(recipient string, count int, payment decimal.Decimal) (*Receipt, error) {
	return c.Purchase("", recipient, count, payment)
}

// Purchase is PresaleMint for the payment identified by paymentId. The
// receipt is stored together with the minted tokens, so a payment seen
// again returns its first receipt and mints nothing.
func (c *Contract) Purchase(paymentId, recipient string, count int, payment decimal.Decimal) (*Receipt, error) {
	c.Lock()
	defer c.Unlock()

	if paymentId != "" {
		old, err := c.store.ReadReceipt(paymentId)
		if err != nil || old != nil {
			return old, err
		}
	}

	if c.state.Paused {
		return nil, ErrPaused
	}
	if count <= 0 {
		return nil, ErrInvalidAmount
	}
	if count > PresaleQuantityLimit {
		return nil, ErrQuantityExceeded
	}
	price := PresaleCost(c.state.Price, count)
	if payment.LessThan(price) {
		return nil, ErrInsufficientPayment
	}

	receipt := &Receipt{
		PaymentId: paymentId,
		Price:     price,
		Paid:      payment,
		Owner:     c.state.Owner,
	}
	_, err := c.mint(recipient, count, receipt)
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func PresaleCost(price decimal.Decimal, count int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(count)))
}
