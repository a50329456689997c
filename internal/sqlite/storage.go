package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/guilherme-santos/syncstatus"
)

const DriverName = "sqlite3"

var ErrAccountNotFound = errors.New("sqlite: account not found")

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sql.DB) *Storage {
	s := &Storage{
		db: sqlx.NewDb(db, DriverName),
	}
	err := s.RunMigrations()
	if err != nil {
		panic(fmt.Sprintf("sqlite: running migrations: %v", err))
	}
	return s
}

func (s Storage) AddAccount(ctx context.Context, account *syncstatus.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, auth) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET auth=?;
	`, account.ID(), account.Auth, account.Auth)
	return err
}

func (s Storage) Account(ctx context.Context, id string) (*syncstatus.Account, error) {
	var acc Account
	err := s.db.GetContext(ctx, &acc, `
		SELECT id, auth FROM accounts WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return acc.Convert(), nil
}

func (s Storage) Accounts(ctx context.Context) ([]*syncstatus.Account, error) {
	var accs []Account
	err := s.db.SelectContext(ctx, &accs, `
		SELECT id, auth FROM accounts ORDER BY id
	`)
	if err != nil {
		return nil, err
	}

	res := make([]*syncstatus.Account, len(accs))
	for i, a := range accs {
		res[i] = a.Convert()
	}
	return res, nil
}

// SaveAuth updates the auth blob of an existing account, e.g. after an
// OAuth token refresh.
func (s Storage) SaveAuth(ctx context.Context, account *syncstatus.Account) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET auth = ? WHERE id = ?
	`, account.Auth, account.ID())
	return err
}
