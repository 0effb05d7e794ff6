package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/lancehub/wallet-sso/pkg/user"
)

// pgUniqueViolation is the PostgreSQL error code for unique-constraint failures.
const pgUniqueViolation = "23505"

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the account store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateAccount(ctx context.Context, acct *user.Account) error {
	dao := toAccountDao(acct)

	_, err := s.db.NewInsert().
		Model(dao).
		Returning("id, created_at, updated_at").
		Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation {
			return ErrDuplicateAccount
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	acct.ID = dao.ID
	acct.CreatedAt = dao.CreatedAt
	acct.UpdatedAt = dao.UpdatedAt
	return nil
}

func (s *pgStore) GetAccount(ctx context.Context, opts ...QueryOption) (*user.Account, error) {
	options := &QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	dao := new(AccountDao)
	query := s.db.NewSelect().Model(dao)

	if options.ID != nil {
		query = query.Where("id = ?", *options.ID)
	}
	if options.WalletAddress != nil {
		query = query.Where("wallet_address = ?", *options.WalletAddress)
	}
	if options.Email != nil {
		query = query.Where("email = ?", *options.Email)
	}

	err := query.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return toAccount(dao), nil
}

func (s *pgStore) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	res, err := s.db.NewUpdate().
		Model((*AccountDao)(nil)).
		Set("last_login_at = ?", at).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
