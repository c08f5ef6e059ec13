package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidRecipient   = errors.New("recipient key is not a valid national id")
	ErrSelfTransfer       = errors.New("cannot transfer to same account")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrStoreIO            = errors.New("store i/o failure")
	ErrPartialCommit      = errors.New("balances persisted but transaction log incomplete")
	ErrAccountExists      = errors.New("account already exists for this national id")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidNationalID  = errors.New("invalid national id")
	ErrInvalidRequest     = errors.New("invalid request")
)
