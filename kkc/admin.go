package kkc

import "github.com/shopspring/decimal"

func (c *Contract) onlyOwner(caller string) error {
	if canonical(caller) != c.state.Owner {
		return ErrUnauthorized
	}
	return nil
}

// BatchMint mints count tokens to recipient for free. Only the owner may
// call it and only while the contract is active.
func (c *Contract) BatchMint(caller, recipient string, count int) ([]uint64, error) {
	c.Lock()
	defer c.Unlock()

	if err := c.onlyOwner(caller); err != nil {
		return nil, err
	}
	if c.state.Paused {
		return nil, ErrPaused
	}
	return c.mint(recipient, count, nil)
}

func (c *Contract) SetBaseURI(caller, uri string) error {
	return c.updateState(caller, func(s *State) error {
		s.BaseURI = uri
		return nil
	})
}

func (c *Contract) SetUnrevealBaseURI(caller, uri string) error {
	return c.updateState(caller, func(s *State) error {
		s.UnrevealBaseURI = uri
		return nil
	})
}

func (c *Contract) SetPricePerToken(caller string, price decimal.Decimal) error {
	return c.updateState(caller, func(s *State) error {
		if price.IsNegative() {
			return ErrInvalidPrice
		}
		s.Price = price
		return nil
	})
}

func (c *Contract) SetReveal(caller string, reveal bool) error {
	return c.updateState(caller, func(s *State) error {
		s.Reveal = reveal
		return nil
	})
}

func (c *Contract) Pause(caller string) error {
	return c.updateState(caller, func(s *State) error {
		if s.Paused {
			return ErrAlreadyPaused
		}
		s.Paused = true
		return nil
	})
}

func (c *Contract) Unpause(caller string) error {
	return c.updateState(caller, func(s *State) error {
		if !s.Paused {
			return ErrNotPaused
		}
		s.Paused = false
		return nil
	})
}

// updateState applies fn to a copy of the configuration record and keeps
// the copy only after the store accepted it.
func (c *Contract) updateState(caller string, fn func(s *State) error) error {
	c.Lock()
	defer c.Unlock()

	if err := c.onlyOwner(caller); err != nil {
		return err
	}
	state := c.state
	err := fn(&state)
	if err != nil {
		return err
	}
	err = c.store.WriteState(&state)
	if err != nil {
		return err
	}
	c.state = state
	return nil
}
