package domain

import "fmt"

// Account holds the balance of one address within one partition. The empty
// partition is the plain fungible balance.
type Account struct {
	Address   string
	Partition string
	Balance   uint64
}

func (a Account) Key() string {
	return fmt.Sprintf("%s/%s", a.Address, a.Partition)
}
