// Package user holds the domain model for marketplace accounts.
package user

import (
	"fmt"
	"strings"
	"time"
)

// Type classifies an account's role on the marketplace.
type Type string

const (
	TypeFreelancer Type = "freelancer"
	TypeClient     Type = "client"
	TypeAdmin      Type = "admin"
)

// WalletOnlyCredential is the password-hash sentinel stored for accounts
// provisioned through wallet login. It can never match a bcrypt digest, so
// these accounts are locked out of password authentication.
const WalletOnlyCredential = "$wallet-only$"

// Account represents the domain model for a registered account.
type Account struct {
	ID            int64
	WalletAddress string
	Email         string
	FullName      string
	UserType      Type
	AvatarURL     string
	PasswordHash  string
	IsActive      bool
	LastLoginAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsWalletOnly reports whether the account has no usable password.
func (a *Account) IsWalletOnly() bool {
	return a.PasswordHash == WalletOnlyCredential
}

// NormalizeType maps a requested user type onto the closed set of roles.
// Unknown or empty values fall back to freelancer.
func NormalizeType(requested string) Type {
	switch Type(strings.ToLower(strings.TrimSpace(requested))) {
	case TypeClient:
		return TypeClient
	case TypeAdmin:
		return TypeAdmin
	default:
		return TypeFreelancer
	}
}

// PlaceholderEmail derives the deterministic placeholder email for a
// wallet-provisioned account from its normalized address.
func PlaceholderEmail(walletAddress string) string {
	return fmt.Sprintf("wallet_%s@wallet.lancehub.io", strings.TrimPrefix(walletAddress, "0x"))
}

// ShortName derives a display name from a wallet address, e.g. "0xf39F...2266".
func ShortName(walletAddress string) string {
	if len(walletAddress) < 10 {
		return walletAddress
	}
	return walletAddress[:6] + "..." + walletAddress[len(walletAddress)-4:]
}

// NewWalletAccount creates an Account provisioned from a wallet login.
func NewWalletAccount(walletAddress string, userType Type) *Account {
	return &Account{
		WalletAddress: walletAddress,
		Email:         PlaceholderEmail(walletAddress),
		FullName:      ShortName(walletAddress),
		UserType:      userType,
		PasswordHash:  WalletOnlyCredential,
		IsActive:      true,
	}
}
