package kkc

// Ledger tracks who holds every minted token. Each holder keeps the ids in
// the order they were minted to or received by it, and the global index
// keeps every id in mint order. Ids start at 1 and are never reused.
type Ledger struct {
	lastTokenId uint64
	owners      map[uint64]string
	holdings    map[string][]uint64
	tokens      []uint64
}

func NewLedger() *Ledger {
	return &Ledger{
		owners:   make(map[uint64]string),
		holdings: make(map[string][]uint64),
	}
}

// NextTokenIds returns the ids the next mint of count tokens would assign
// without changing the ledger. A single mint is capped at MintQuantityLimit
// so every mint fits in one store transaction.
func (l *Ledger) NextTokenIds(count int) ([]uint64, error) {
	if count <= 0 {
		return nil, ErrInvalidAmount
	}
	if count > MintQuantityLimit {
		return nil, ErrMintLimitExceeded
	}
	ids := make([]uint64, count)
	for i := range ids {
		ids[i] = l.lastTokenId + uint64(i) + 1
	}
	return ids, nil
}

func (l *Ledger) Mint(recipient string, count int) ([]uint64, error) {
	ids, err := l.NextTokenIds(count)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		l.owners[id] = recipient
		l.holdings[recipient] = append(l.holdings[recipient], id)
		l.tokens = append(l.tokens, id)
		l.lastTokenId = id
	}
	return ids, nil
}

func (l *Ledger) Transfer(from, to string, id uint64) error {
	owner, found := l.owners[id]
	if !found {
		return ErrNonexistentToken
	}
	if owner != from {
		return ErrIncorrectOwner
	}
	l.holdings[from] = removeTokenId(l.holdings[from], id)
	if len(l.holdings[from]) == 0 {
		delete(l.holdings, from)
	}
	l.holdings[to] = append(l.holdings[to], id)
	l.owners[id] = to
	return nil
}

func (l *Ledger) OwnerOf(id uint64) (string, bool) {
	owner, found := l.owners[id]
	return owner, found
}

func (l *Ledger) BalanceOf(account string) int {
	return len(l.holdings[account])
}

func (l *Ledger) TokensOwnedBy(account string) []uint64 {
	return append([]uint64{}, l.holdings[account]...)
}

func (l *Ledger) AllTokens() []uint64 {
	return append([]uint64{}, l.tokens...)
}

func (l *Ledger) TotalSupply() int {
	return len(l.tokens)
}

func (l *Ledger) LastTokenId() uint64 {
	return l.lastTokenId
}

// restore rebuilds the ledger from persisted holdings and global index.
func (l *Ledger) restore(last uint64, tokens []uint64, holdings map[string][]uint64) {
	l.lastTokenId = last
	l.tokens = append([]uint64{}, tokens...)
	for holder, ids := range holdings {
		if len(ids) == 0 {
			continue
		}
		l.holdings[holder] = append([]uint64{}, ids...)
		for _, id := range ids {
			l.owners[id] = holder
		}
	}
}

// removeTokenId drops id from ids keeping the order of the rest.
func removeTokenId(ids []uint64, id uint64) []uint64 {
	for i, t := range ids {
		if t != id {
			continue
		}
		rest := make([]uint64, 0, len(ids)-1)
		rest = append(rest, ids[:i]...)
		return append(rest, ids[i+1:]...)
	}
	return ids
}
