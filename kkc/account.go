package kkc

import (
	"github.com/gofrs/uuid"
)

// ZeroAccount is the account nobody controls, the ERC721 zero address.
var ZeroAccount = uuid.Nil.String()

// checkAccount rejects anything but a user id. The zero account yields
// zero, a nil zero lets it through.
func checkAccount(id string, zero error) error {
	uid, err := uuid.FromString(id)
	if err != nil {
		return ErrInvalidAccount
	}
	if uid == uuid.Nil {
		return zero
	}
	return nil
}

// canonical keeps ledger keys stable regardless of the caller's casing.
func canonical(id string) string {
	uid, err := uuid.FromString(id)
	if err != nil {
		return id
	}
	return uid.String()
}
