package kkc

import "github.com/shopspring/decimal"

const (
	Name   = "KKC"
	Symbol = "KKC"

	PresaleQuantityLimit = 20
	MintQuantityLimit    = 500
)

type Store interface {
	ReadSnapshot() (*Snapshot, error)
	WriteState(s *State) error
	WriteMint(s *State, recipient string, ids []uint64, receipt *Receipt) error
	ReadReceipt(paymentId string) (*Receipt, error)
	WriteTransfer(from, to string, id uint64) error
	WriteApproval(id uint64, spender string) error
	WriteOperator(owner, operator string, approved bool) error
}

// State is the configuration record of the contract, mutated only by the
// owner through the administrative operations and by mints advancing
// LastTokenId.
type State struct {
	Owner           string
	BaseURI         string
	UnrevealBaseURI string
	Price           decimal.Decimal
	Reveal          bool
	Paused          bool
	LastTokenId     uint64
}

// Snapshot is everything a store persisted for the contract. Holdings list
// each holder's ids in receipt order, Tokens in mint order.
type Snapshot struct {
	State     *State
	Tokens    []uint64
	Holdings  map[string][]uint64
	Approvals map[uint64]string
	Operators map[string][]string
}

// Receipt describes a successful presale, the payment belongs to the owner.
// A receipt with a PaymentId is stored with the mint it paid for.
type Receipt struct {
	PaymentId string
	Recipient string
	TokenIds  []uint64
	Price     decimal.Decimal
	Paid      decimal.Decimal
	Owner     string
}
