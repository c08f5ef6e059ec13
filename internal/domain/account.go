package domain

import "time"

const (
	DefaultBranchCode      = "0001"
	DefaultStartingBalance = int64(500_000)
	AccountNumberDigits    = 6
)

// Account is a customer account keyed by the holder's national ID.
// Balance is held in minor units (centavos) and is never negative at rest.
type Account struct {
	ID               string
	DisplayName      string
	CredentialSecret string
	Balance          int64
	AccountNumber    string
	BranchCode       string
	CreatedAt        time.Time
}

func FindAccount(accounts []Account, id string) int {
	for i := range accounts {
		if accounts[i].ID == id {
			return i
		}
	}
	return -1
}
