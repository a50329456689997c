package sqlite

import (
	"strings"

	"github.com/guilherme-santos/syncstatus"
)

type Account struct {
	ID   string `db:"id"`
	Auth string `db:"auth"`
}

func (a Account) Convert() *syncstatus.Account {
	acc := syncstatus.Account{
		Auth: a.Auth,
	}
	acc.Platform, acc.Name, _ = strings.Cut(a.ID, "/")
	return &acc
}
