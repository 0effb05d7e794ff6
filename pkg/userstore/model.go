package userstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/lancehub/wallet-sso/pkg/user"
)

// AccountDao is a data access object that maps directly to the 'users' table in PostgreSQL.
type AccountDao struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	ID            int64      `bun:"id,pk,autoincrement"`
	WalletAddress string     `bun:"wallet_address,unique,notnull,type:varchar(42)"`
	Email         string     `bun:"email,unique,notnull,type:varchar(255)"`
	FullName      string     `bun:"full_name,notnull,type:varchar(255)"`
	UserType      string     `bun:"user_type,notnull,type:varchar(32)"`
	AvatarURL     *string    `bun:"avatar_url,type:varchar(500)"`
	PasswordHash  string     `bun:"password_hash,notnull,type:varchar(100)"`
	IsActive      bool       `bun:"is_active,notnull,default:true"`
	LastLoginAt   *time.Time `bun:"last_login_at"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero,default:current_timestamp"`
}

// toAccountDao converts a user.Account to AccountDao.
func toAccountDao(acct *user.Account) *AccountDao {
	dao := &AccountDao{
		ID:            acct.ID,
		WalletAddress: acct.WalletAddress,
		Email:         acct.Email,
		FullName:      acct.FullName,
		UserType:      string(acct.UserType),
		PasswordHash:  acct.PasswordHash,
		IsActive:      acct.IsActive,
		CreatedAt:     acct.CreatedAt,
		UpdatedAt:     acct.UpdatedAt,
	}

	if acct.AvatarURL != "" {
		dao.AvatarURL = &acct.AvatarURL
	}
	if acct.LastLoginAt != nil {
		dao.LastLoginAt = acct.LastLoginAt
	}

	return dao
}

// toAccount converts an AccountDao to user.Account.
func toAccount(dao *AccountDao) *user.Account {
	acct := &user.Account{
		ID:            dao.ID,
		WalletAddress: dao.WalletAddress,
		Email:         dao.Email,
		FullName:      dao.FullName,
		UserType:      user.Type(dao.UserType),
		PasswordHash:  dao.PasswordHash,
		IsActive:      dao.IsActive,
		CreatedAt:     dao.CreatedAt,
		UpdatedAt:     dao.UpdatedAt,
	}

	if dao.AvatarURL != nil {
		acct.AvatarURL = *dao.AvatarURL
	}
	if dao.LastLoginAt != nil {
		acct.LastLoginAt = dao.LastLoginAt
	}

	return acct
}
