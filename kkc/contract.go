package kkc

import (
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
)

// Contract is the KKC collection. Every operation runs under the contract
// lock, validates completely, persists through the store and only then
// updates the in memory state, so a failed call leaves nothing behind.
type Contract struct {
	sync.RWMutex
	store     Store
	state     State
	ledger    *Ledger
	approvals map[uint64]string
	operators map[string]map[string]bool
}

// Deploy initialises a contract owned by owner, or loads the existing one
// if the store already holds a deployment. The boolean reports whether a
// new deployment happened.
func Deploy(store Store, owner string) (*Contract, bool, error) {
	err := checkAccount(owner, ErrOwnerZeroAccount)
	if err != nil {
		return nil, false, err
	}
	c, err := Load(store)
	if err == nil {
		return c, false, nil
	} else if err != ErrNotDeployed {
		return nil, false, err
	}

	state := &State{Owner: canonical(owner), Price: decimal.Zero}
	err = store.WriteState(state)
	if err != nil {
		return nil, false, err
	}
	c = newContract(store)
	c.state = *state
	return c, true, nil
}

func Load(store Store) (*Contract, error) {
	snap, err := store.ReadSnapshot()
	if err != nil {
		return nil, err
	}
	if snap == nil || snap.State == nil {
		return nil, ErrNotDeployed
	}
	c := newContract(store)
	c.state = *snap.State
	c.ledger.restore(snap.State.LastTokenId, snap.Tokens, snap.Holdings)
	for id, spender := range snap.Approvals {
		c.approvals[id] = spender
	}
	for owner, operators := range snap.Operators {
		for _, op := range operators {
			c.setOperator(owner, op, true)
		}
	}
	return c, nil
}

func newContract(store Store) *Contract {
	return &Contract{
		store:     store,
		ledger:    NewLedger(),
		approvals: make(map[uint64]string),
		operators: make(map[string]map[string]bool),
	}
}

func (c *Contract) Name() string {
	return Name
}

func (c *Contract) Symbol() string {
	return Symbol
}

func (c *Contract) Owner() string {
	c.RLock()
	defer c.RUnlock()
	return c.state.Owner
}

func (c *Contract) Paused() bool {
	c.RLock()
	defer c.RUnlock()
	return c.state.Paused
}

func (c *Contract) Revealed() bool {
	c.RLock()
	defer c.RUnlock()
	return c.state.Reveal
}

func (c *Contract) PricePerToken() decimal.Decimal {
	c.RLock()
	defer c.RUnlock()
	return c.state.Price
}

func (c *Contract) BaseURI() string {
	c.RLock()
	defer c.RUnlock()
	return c.state.BaseURI
}

func (c *Contract) UnrevealBaseURI() string {
	c.RLock()
	defer c.RUnlock()
	return c.state.UnrevealBaseURI
}

func (c *Contract) LastTokenId() uint64 {
	c.RLock()
	defer c.RUnlock()
	return c.ledger.LastTokenId()
}

func (c *Contract) TotalSupply() int {
	c.RLock()
	defer c.RUnlock()
	return c.ledger.TotalSupply()
}

func (c *Contract) BalanceOf(account string) int {
	c.RLock()
	defer c.RUnlock()
	return c.ledger.BalanceOf(canonical(account))
}

func (c *Contract) TokensOwnedBy(account string) []uint64 {
	c.RLock()
	defer c.RUnlock()
	return c.ledger.TokensOwnedBy(canonical(account))
}

func (c *Contract) AllTokens() []uint64 {
	c.RLock()
	defer c.RUnlock()
	return c.ledger.AllTokens()
}

func (c *Contract) OwnerOf(id uint64) (string, error) {
	c.RLock()
	defer c.RUnlock()
	owner, found := c.ledger.OwnerOf(id)
	if !found {
		return "", ErrNonexistentToken
	}
	return owner, nil
}

func (c *Contract) TokenURI(id uint64) (string, error) {
	c.RLock()
	defer c.RUnlock()
	if _, found := c.ledger.OwnerOf(id); !found {
		return "", ErrNotFound
	}
	base := c.state.UnrevealBaseURI
	if c.state.Reveal {
		base = c.state.BaseURI
	}
	return base + strconv.FormatUint(id, 10), nil
}

// mint assigns count fresh ids to recipient. Callers hold the write lock
// and have done their own authorization and pause checks. A receipt is
// completed with the ids and persisted in the same write.
func (c *Contract) mint(recipient string, count int, receipt *Receipt) ([]uint64, error) {
	err := checkAccount(recipient, ErrMintToZeroAccount)
	if err != nil {
		return nil, err
	}
	recipient = canonical(recipient)
	ids, err := c.ledger.NextTokenIds(count)
	if err != nil {
		return nil, err
	}

	state := c.state
	state.LastTokenId = ids[len(ids)-1]
	if receipt != nil {
		receipt.Recipient = recipient
		receipt.TokenIds = ids
	}
	err = c.store.WriteMint(&state, recipient, ids, receipt)
	if err != nil {
		return nil, err
	}
	c.state = state
	return c.ledger.Mint(recipient, count)
}
