// Package auth provides the cryptographic primitives for wallet-based
// authentication: EIP-191 signature recovery and wallet address handling.
package auth

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// RecoverAddress recovers the signer address from an EIP-191 personal_sign
// signature over message. It returns an error for malformed signatures so the
// caller can surface a clean authentication failure.
func RecoverAddress(message, signature string) (common.Address, error) {
	sigBytes, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature hex: %w", err)
	}

	if len(sigBytes) != 65 {
		return common.Address{}, fmt.Errorf("invalid signature length: expected 65, got %d", len(sigBytes))
	}

	// Recovery id (v) may be 0, 1, 27 or 28 - normalize to 0 or 1
	if sigBytes[64] >= 27 {
		sigBytes[64] -= 27
	}

	prefixedMsg := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	msgHash := crypto.Keccak256Hash([]byte(prefixedMsg))

	pubKey, err := crypto.SigToPub(msgHash.Bytes(), sigBytes)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}

// ValidWalletAddress checks if a string is structurally a valid wallet address
// (0x prefix plus 40 hex characters). It says nothing about existence.
func ValidWalletAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") {
		return false
	}
	if len(address) != 42 {
		return false
	}
	_, err := hex.DecodeString(address[2:])
	return err == nil
}

// NormalizeAddress lowercases a wallet address. All stores key accounts and
// challenges by the normalized form, so a checksummed and a lowercase
// rendering of the same address always resolve to the same records.
func NormalizeAddress(address string) string {
	return strings.ToLower(address)
}
