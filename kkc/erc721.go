package kkc

func (c *Contract) GetApproved(id uint64) (string, error) {
	c.RLock()
	defer c.RUnlock()
	if _, found := c.ledger.OwnerOf(id); !found {
		return "", ErrNonexistentToken
	}
	return c.approvals[id], nil
}

func (c *Contract) IsApprovedForAll(owner, operator string) bool {
	c.RLock()
	defer c.RUnlock()
	return c.operators[canonical(owner)][canonical(operator)]
}

// Approve lets spender transfer the token once. An empty spender or the
// zero account clears the approval.
func (c *Contract) Approve(caller, spender string, id uint64) error {
	c.Lock()
	defer c.Unlock()

	if err := checkAccount(caller, ErrInvalidAccount); err != nil {
		return err
	}
	caller = canonical(caller)
	owner, found := c.ledger.OwnerOf(id)
	if !found {
		return ErrNonexistentToken
	}
	if spender == "" {
		spender = ZeroAccount
	} else if err := checkAccount(spender, nil); err != nil {
		return err
	}
	spender = canonical(spender)
	if spender == owner {
		return ErrApproveToOwner
	}
	if caller != owner && !c.operators[owner][caller] {
		return ErrApproveCaller
	}

	err := c.store.WriteApproval(id, spender)
	if err != nil {
		return err
	}
	if spender == ZeroAccount {
		delete(c.approvals, id)
	} else {
		c.approvals[id] = spender
	}
	return nil
}

func (c *Contract) SetApprovalForAll(caller, operator string, approved bool) error {
	c.Lock()
	defer c.Unlock()

	if err := checkAccount(caller, ErrInvalidAccount); err != nil {
		return err
	}
	if err := checkAccount(operator, ErrInvalidAccount); err != nil {
		return err
	}
	caller, operator = canonical(caller), canonical(operator)
	if caller == operator {
		return ErrApproveToCaller
	}
	err := c.store.WriteOperator(caller, operator, approved)
	if err != nil {
		return err
	}
	c.setOperator(caller, operator, approved)
	return nil
}

// TransferFrom moves the token from its owner to another account. The
// caller must be the owner, the approved account of the token, or an
// operator of the owner. Transfers are not affected by the pause state.
func (c *Contract) TransferFrom(caller, from, to string, id uint64) error {
	c.Lock()
	defer c.Unlock()

	if err := checkAccount(caller, ErrInvalidAccount); err != nil {
		return err
	}
	caller, from = canonical(caller), canonical(from)
	owner, found := c.ledger.OwnerOf(id)
	if !found {
		return ErrNonexistentToken
	}
	if caller != owner && c.approvals[id] != caller && !c.operators[owner][caller] {
		return ErrNotApproved
	}
	if owner != from {
		return ErrIncorrectOwner
	}
	if err := checkAccount(to, ErrTransferToZeroAccount); err != nil {
		return err
	}
	to = canonical(to)

	err := c.store.WriteTransfer(from, to, id)
	if err != nil {
		return err
	}
	delete(c.approvals, id)
	return c.ledger.Transfer(from, to, id)
}

func (c *Contract) setOperator(owner, operator string, approved bool) {
	if !approved {
		delete(c.operators[owner], operator)
		if len(c.operators[owner]) == 0 {
			delete(c.operators, owner)
		}
		return
	}
	if c.operators[owner] == nil {
		c.operators[owner] = make(map[string]bool)
	}
	c.operators[owner][operator] = true
}
