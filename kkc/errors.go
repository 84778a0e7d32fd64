package kkc

import "errors"

var (
	ErrUnauthorized          = errors.New("Ownable: caller is not the owner")
	ErrInvalidAmount         = errors.New("Should be the positive value")
	ErrQuantityExceeded      = errors.New("Can't buy over 20 NFTs")
	ErrInsufficientPayment   = errors.New("Insufficient payment received")
	ErrPaused                = errors.New("Pausable: paused")
	ErrAlreadyPaused         = errors.New("Pausable: paused")
	ErrNotPaused             = errors.New("Pausable: not paused")
	ErrNotFound              = errors.New("ERC721URIStorage: URI query for nonexistent token")
	ErrNonexistentToken      = errors.New("ERC721: owner query for nonexistent token")
	ErrIncorrectOwner        = errors.New("ERC721: transfer from incorrect owner")
	ErrNotApproved           = errors.New("ERC721: transfer caller is not owner nor approved")
	ErrApproveCaller         = errors.New("ERC721: approve caller is not owner nor approved for all")
	ErrApproveToOwner        = errors.New("ERC721: approval to current owner")
	ErrApproveToCaller       = errors.New("ERC721: approve to caller")
	ErrMintToZeroAccount     = errors.New("ERC721: mint to the zero address")
	ErrTransferToZeroAccount = errors.New("ERC721: transfer to the zero address")
	ErrOwnerZeroAccount      = errors.New("Ownable: new owner is the zero address")
	ErrMintLimitExceeded     = errors.New("Can't mint over 500 NFTs at once")
	ErrInvalidAccount        = errors.New("invalid account")
	ErrInvalidPrice          = errors.New("price should not be negative")
	ErrNotDeployed           = errors.New("contract not deployed")
)
