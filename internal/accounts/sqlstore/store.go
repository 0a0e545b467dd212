// Package sqlstore keeps the chart of accounts in a Postgres table.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerdesk/internal/accounts"
	"github.com/cleared-dev/ledgerdesk/internal/model"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

const selectAccounts = `SELECT id, code, name, name_en, account_type, parent_id, level, nature, balance
FROM accounts ORDER BY code`

const insertAccount = `INSERT INTO accounts (id, code, name, name_en, account_type, parent_id, level, nature, balance)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// Schema creates the accounts table. The unique index on code is what
// rejects colliding codes from concurrent writers.
const Schema = `CREATE TABLE IF NOT EXISTS accounts (
	id           TEXT PRIMARY KEY,
	code         TEXT NOT NULL UNIQUE,
	name         TEXT NOT NULL,
	name_en      TEXT NOT NULL DEFAULT '',
	account_type TEXT NOT NULL,
	parent_id    TEXT REFERENCES accounts (id),
	level        INTEGER NOT NULL DEFAULT 1,
	nature       TEXT NOT NULL,
	balance      NUMERIC(20, 2) NOT NULL DEFAULT 0
)`

type accountRow struct {
	ID       string          `db:"id"`
	Code     string          `db:"code"`
	Name     string          `db:"name"`
	NameEn   string          `db:"name_en"`
	Type     string          `db:"account_type"`
	ParentID sql.NullString  `db:"parent_id"`
	Level    int             `db:"level"`
	Nature   string          `db:"nature"`
	Balance  decimal.Decimal `db:"balance"`
}

// Store reads and writes accounts through sqlx.
type Store struct {
	db *sqlx.DB
}

// New wraps an open database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Connect opens a Postgres connection pool.
func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to accounts database: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetMaxIdleConns(2)
	db.SetMaxOpenConns(10)
	return db, nil
}

// Migrate creates the accounts table if it is missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("creating accounts table: %w", err)
	}
	return nil
}

// List returns every account ordered by code. Unknown types or natures
// in the table are an error.
func (s *Store) List(ctx context.Context) ([]model.Account, error) {
	var rows []accountRow
	if err := s.db.SelectContext(ctx, &rows, selectAccounts); err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	out := make([]model.Account, 0, len(rows))
	for _, r := range rows {
		acct, err := r.toModel()
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", r.ID, err)
		}
		out = append(out, acct)
	}
	return out, nil
}

// Insert stores one account. A duplicate code is reported as
// accounts.ErrCodeExists.
func (s *Store) Insert(ctx context.Context, acct model.Account) error {
	var parent sql.NullString
	if acct.ParentID != "" {
		parent = sql.NullString{String: acct.ParentID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, insertAccount,
		acct.ID, acct.Code, acct.Name, acct.NameEn, string(acct.Type),
		parent, acct.Level, string(acct.Nature), acct.Balance)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", accounts.ErrCodeExists, acct.Code)
		}
		return fmt.Errorf("inserting account %s: %w", acct.Code, err)
	}
	return nil
}

// Service loads the table into an in-memory accounts.Service.
func (s *Store) Service(ctx context.Context, opts ...accounts.Option) (*accounts.Service, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return accounts.NewService(list, opts...), nil
}

// Create suggests a code under parentID, validates the draft against
// svc and inserts it. svc is updated only when the insert succeeds.
func (s *Store) Create(ctx context.Context, svc *accounts.Service, parentID string, params accounts.DraftParams) (model.Account, error) {
	draft, err := svc.Suggest(parentID, params)
	if err != nil {
		return model.Account{}, err
	}
	if err := svc.Check(draft); err != nil {
		return model.Account{}, err
	}
	if draft.ID == "" {
		draft.ID = accounts.NewID()
	}
	if err := s.Insert(ctx, draft); err != nil {
		return model.Account{}, err
	}
	return svc.Create(draft)
}

func (r accountRow) toModel() (model.Account, error) {
	typ, err := model.ParseAccountType(r.Type)
	if err != nil {
		return model.Account{}, err
	}
	nature, err := model.ParseNature(r.Nature)
	if err != nil {
		return model.Account{}, err
	}
	return model.Account{
		ID:       r.ID,
		Code:     r.Code,
		Name:     r.Name,
		NameEn:   r.NameEn,
		Type:     typ,
		ParentID: r.ParentID.String,
		Level:    r.Level,
		Nature:   nature,
		Balance:  r.Balance,
	}, nil
}
